package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"

	"github.com/hibiken/asynq"
)

const TypeBookingEvent = "booking:event"

const (
	QueueDefault = "default"
	maxRetry     = 8
)

// EventDeliverer fans a booking event out to its recipients.
type EventDeliverer interface {
	Deliver(ctx context.Context, event domain.BookingEvent) error
}

func NewBookingEventTask(event domain.BookingEvent) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingEvent, b)
	opts := []asynq.Option{
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(30 * time.Second),
	}
	return task, opts, nil
}

// NewServeMux routes every task type this service produces.
func NewServeMux(deliverer EventDeliverer) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingEvent, HandleBookingEvent(deliverer))
	return mux
}

func HandleBookingEvent(deliverer EventDeliverer) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var event domain.BookingEvent
		if err := json.Unmarshal(task.Payload(), &event); err != nil {
			logger.Error("Invalid booking event payload", "error", err)
			return fmt.Errorf("decode booking event: %v: %w", err, asynq.SkipRetry)
		}

		logger.Info("Delivering booking event", "type", event.Type, "bookingID", event.BookingID, "recipients", len(event.UserIDs))
		if err := deliverer.Deliver(ctx, event); err != nil {
			logger.Error("Failed to deliver booking event", "type", event.Type, "bookingID", event.BookingID, "error", err)
			return err
		}
		return nil
	}
}
