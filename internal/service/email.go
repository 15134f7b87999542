package service

import (
	"context"
	"fmt"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendGridEmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// NewEmailService returns a SendGrid sender, or a sender that only logs when
// no API key is configured.
func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	if apiKey == "" {
		logger.Warn("SendGrid API key not set, emails will only be logged")
		return &logEmailService{}
	}
	return NewSendGridEmailService(sendgrid.NewSendClient(apiKey), fromEmail, fromName)
}

func NewSendGridEmailService(client *sendgrid.Client, fromEmail, fromName string) EmailService {
	return &sendGridEmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridEmailService) SendBookingEmail(ctx context.Context, to domain.User, subject, body string) error {
	if to.Email == "" {
		return fmt.Errorf("%w: user %s has no email address", domain.ErrValidation, to.ID)
	}
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(to.Name, to.Email)
	message := mail.NewSingleEmail(from, subject, recipient, body, "")

	logger.ExternalServiceCall("sendgrid", "Send", "to", to.Email, "subject", subject)
	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		err = fmt.Errorf("failed to send email: %w", err)
		logger.ExternalServiceResult("sendgrid", "Send", err, "to", to.Email)
		return err
	}
	if response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
		logger.ExternalServiceResult("sendgrid", "Send", err, "to", to.Email)
		return err
	}
	logger.ExternalServiceResult("sendgrid", "Send", nil, "to", to.Email, "status", response.StatusCode)
	return nil
}

type logEmailService struct{}

func (s *logEmailService) SendBookingEmail(ctx context.Context, to domain.User, subject, body string) error {
	logger.Info("Email not sent (no provider configured)", "to", to.Email, "subject", subject)
	return nil
}
