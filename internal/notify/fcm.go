package notify

import (
	"context"
	"fmt"

	"rentshare-backend/internal/logger"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// MessageSender is satisfied by *messaging.Client.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMSender pushes booking notifications through Firebase Cloud Messaging.
type FCMSender struct {
	client MessageSender
}

// NewFCMSender initializes the Firebase app from a service account file.
func NewFCMSender(ctx context.Context, credentialsFile string) (*FCMSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting messaging client: %w", err)
	}
	return NewFCMSenderWithClient(client), nil
}

func NewFCMSenderWithClient(client MessageSender) *FCMSender {
	return &FCMSender{client: client}
}

func (s *FCMSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	logger.ExternalServiceCall("fcm", "Send", "bookingID", data["booking_id"])
	id, err := s.client.Send(ctx, msg)
	logger.ExternalServiceResult("fcm", "Send", err, "bookingID", data["booking_id"], "messageID", id)
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	return nil
}

// LogSender stands in for FCM when no credentials are configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	logger.Debug("Push not sent (FCM disabled)", "title", title, "bookingID", data["booking_id"])
	return nil
}
