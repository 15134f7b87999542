package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentshare-backend/internal/domain"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDeliverer struct {
	events []domain.BookingEvent
	err    error
}

func (r *recordingDeliverer) Deliver(ctx context.Context, event domain.BookingEvent) error {
	r.events = append(r.events, event)
	return r.err
}

func TestBookingEventTask(t *testing.T) {
	ctx := context.Background()
	event := domain.BookingEvent{
		Type:       domain.EventBookingConfirmed,
		BookingID:  "b-1",
		UserIDs:    []string{"renter-1"},
		ItemTitle:  "Camera",
		StartDate:  time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC),
		OccurredAt: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC),
	}

	t.Run("Success", func(t *testing.T) {
		task, opts, err := NewBookingEventTask(event)
		require.NoError(t, err)
		assert.Equal(t, TypeBookingEvent, task.Type())
		assert.Len(t, opts, 3)

		d := &recordingDeliverer{}
		require.NoError(t, HandleBookingEvent(d)(ctx, task))
		require.Len(t, d.events, 1)
		assert.Equal(t, event.BookingID, d.events[0].BookingID)
		assert.Equal(t, event.Type, d.events[0].Type)
		assert.True(t, event.StartDate.Equal(d.events[0].StartDate))
	})

	t.Run("Delivery error is retried", func(t *testing.T) {
		task, _, err := NewBookingEventTask(event)
		require.NoError(t, err)
		d := &recordingDeliverer{err: errors.New("db down")}
		err = HandleBookingEvent(d)(ctx, task)
		assert.Error(t, err)
		assert.False(t, errors.Is(err, asynq.SkipRetry))
	})

	t.Run("Bad payload skips retry", func(t *testing.T) {
		d := &recordingDeliverer{}
		err := HandleBookingEvent(d)(ctx, asynq.NewTask(TypeBookingEvent, []byte("{")))
		assert.ErrorIs(t, err, asynq.SkipRetry)
		assert.Empty(t, d.events)
	})
}
