package service_test

import (
	"context"
	"errors"
	"testing"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/service"
	"rentshare-backend/internal/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestQueueDispatcher(t *testing.T) {
	ctx := context.Background()
	event := domain.BookingEvent{Type: domain.EventBookingCompleted, BookingID: "booking-1", UserIDs: []string{"renter-1"}}

	t.Run("Success", func(t *testing.T) {
		client := new(MockEnqueuer)
		client.On("EnqueueContext", ctx, mock.MatchedBy(func(task *asynq.Task) bool {
			return task.Type() == tasks.TypeBookingEvent
		})).Return(&asynq.TaskInfo{ID: "task-1", Queue: tasks.QueueDefault}, nil)

		service.NewQueueDispatcher(client).Dispatch(ctx, event)
		client.AssertNumberOfCalls(t, "EnqueueContext", 1)
	})

	t.Run("Enqueue failure is swallowed", func(t *testing.T) {
		client := new(MockEnqueuer)
		client.On("EnqueueContext", ctx, mock.Anything).Return(nil, errors.New("redis down"))

		assert.NotPanics(t, func() { service.NewQueueDispatcher(client).Dispatch(ctx, event) })
	})
}

type deliverFunc func(ctx context.Context, event domain.BookingEvent) error

func (f deliverFunc) Deliver(ctx context.Context, event domain.BookingEvent) error { return f(ctx, event) }

func TestInlineDispatcher(t *testing.T) {
	var got []domain.BookingEvent
	d := service.NewInlineDispatcher(deliverFunc(func(ctx context.Context, event domain.BookingEvent) error {
		got = append(got, event)
		return errors.New("ignored")
	}))
	d.Dispatch(context.Background(), domain.BookingEvent{Type: domain.EventPaymentFailed, BookingID: "booking-1"})
	assert.Len(t, got, 1)
}
