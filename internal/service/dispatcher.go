package service

import (
	"context"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/tasks"

	"github.com/hibiken/asynq"
)

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type queueDispatcher struct {
	client TaskEnqueuer
}

// NewQueueDispatcher publishes events to the task queue; cmd/worker delivers them.
func NewQueueDispatcher(client TaskEnqueuer) EventDispatcher {
	return &queueDispatcher{client: client}
}

func (d *queueDispatcher) Dispatch(ctx context.Context, event domain.BookingEvent) {
	task, opts, err := tasks.NewBookingEventTask(event)
	if err != nil {
		logger.Error("Failed to build booking event task", "type", event.Type, "bookingID", event.BookingID, "error", err)
		return
	}
	logger.ExternalServiceCall("asynq", "Enqueue", "type", event.Type, "bookingID", event.BookingID)
	info, err := d.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		logger.ExternalServiceResult("asynq", "Enqueue", err, "type", event.Type, "bookingID", event.BookingID)
		return
	}
	logger.ExternalServiceResult("asynq", "Enqueue", nil, "taskID", info.ID, "queue", info.Queue)
}

type inlineDispatcher struct {
	deliverer tasks.EventDeliverer
}

// NewInlineDispatcher delivers events synchronously. Used when no queue is
// configured.
func NewInlineDispatcher(deliverer tasks.EventDeliverer) EventDispatcher {
	return &inlineDispatcher{deliverer: deliverer}
}

func (d *inlineDispatcher) Dispatch(ctx context.Context, event domain.BookingEvent) {
	if err := d.deliverer.Deliver(ctx, event); err != nil {
		logger.Warn("Booking event delivery failed", "type", event.Type, "bookingID", event.BookingID, "error", err)
	}
}
