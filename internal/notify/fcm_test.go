package notify

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessaging struct {
	sent []*messaging.Message
	err  error
}

func (f *fakeMessaging) Send(ctx context.Context, message *messaging.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, message)
	return "projects/test/messages/1", nil
}

func TestFCMSender_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		fake := &fakeMessaging{}
		s := NewFCMSenderWithClient(fake)
		err := s.Send(ctx, "device-token", "Booking Confirmed", "See you soon", map[string]string{"booking_id": "b-1"})
		require.NoError(t, err)
		require.Len(t, fake.sent, 1)
		msg := fake.sent[0]
		assert.Equal(t, "device-token", msg.Token)
		assert.Equal(t, "Booking Confirmed", msg.Notification.Title)
		assert.Equal(t, "b-1", msg.Data["booking_id"])
	})

	t.Run("Error", func(t *testing.T) {
		s := NewFCMSenderWithClient(&fakeMessaging{err: errors.New("unregistered")})
		err := s.Send(ctx, "device-token", "t", "b", nil)
		assert.ErrorContains(t, err, "unregistered")
	})

	t.Run("Log sender", func(t *testing.T) {
		assert.NoError(t, LogSender{}.Send(ctx, "", "t", "b", nil))
	})
}
