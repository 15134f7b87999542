package service

import (
	"context"
	"errors"
	"fmt"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/repository"
	"rentshare-backend/internal/utils"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
	userRepo repository.UserRepository
	push     PushSender
	emailSvc EmailService
}

func NewNotificationService(
	noteRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	push PushSender,
	emailSvc EmailService,
) NotificationService {
	return &notificationService{
		noteRepo: noteRepo,
		userRepo: userRepo,
		push:     push,
		emailSvc: emailSvc,
	}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID string, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, userID, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID string, notificationID int64) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, userID)
}

// Deliver writes the in-app notification first; push and email are best
// effort. The returned error covers the in-app writes only so a queue retry
// does not resend push and email for recipients that already have them.
func (s *notificationService) Deliver(ctx context.Context, event domain.BookingEvent) error {
	logger.EnterMethod("notificationService.Deliver", "type", event.Type, "bookingID", event.BookingID)

	users, err := s.userRepo.GetByIDs(ctx, event.UserIDs)
	if err != nil {
		logger.ExitMethodWithError("notificationService.Deliver", err, "bookingID", event.BookingID)
		return err
	}

	title, message := RenderEvent(event)
	var errs []error
	for _, u := range users {
		note := &domain.Notification{
			UserID:    u.ID,
			BookingID: event.BookingID,
			Title:     title,
			Message:   message,
			Attributes: map[string]string{
				"type":       string(event.Type),
				"booking_id": event.BookingID,
			},
		}
		if err := s.noteRepo.Create(ctx, note); err != nil {
			errs = append(errs, fmt.Errorf("notification for %s: %w", u.ID, err))
			continue
		}

		if u.PushToken != "" && s.push != nil {
			if err := s.push.Send(ctx, u.PushToken, title, message, note.Attributes); err != nil {
				logger.Warn("Push notification failed", "userID", u.ID, "bookingID", event.BookingID, "error", err)
			}
		}
		if u.Email != "" && s.emailSvc != nil {
			if err := s.emailSvc.SendBookingEmail(ctx, u, title, message); err != nil {
				logger.Warn("Booking email failed", "userID", u.ID, "bookingID", event.BookingID, "error", err)
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		logger.ExitMethodWithError("notificationService.Deliver", err, "bookingID", event.BookingID)
		return err
	}
	logger.ExitMethod("notificationService.Deliver", "bookingID", event.BookingID, "recipients", len(users))
	return nil
}

// RenderEvent returns the title and plain-text message for a booking event.
func RenderEvent(e domain.BookingEvent) (string, string) {
	dates := fmt.Sprintf("%s to %s", utils.FormatDate(e.StartDate), utils.FormatDate(e.EndDate))
	switch e.Type {
	case domain.EventBookingRequest:
		return "New Booking Request", fmt.Sprintf("%s was requested for %s", e.ItemTitle, dates)
	case domain.EventBookingConfirmed:
		return "Booking Confirmed", fmt.Sprintf("Your booking of %s for %s is confirmed", e.ItemTitle, dates)
	case domain.EventBookingCancelled:
		msg := fmt.Sprintf("The booking of %s for %s was cancelled", e.ItemTitle, dates)
		if e.Reason != "" {
			msg += ": " + e.Reason
		}
		return "Booking Cancelled", msg
	case domain.EventBookingCompleted:
		return "Booking Completed", fmt.Sprintf("The booking of %s is complete", e.ItemTitle)
	case domain.EventPaymentReceived:
		return "Payment Received", fmt.Sprintf("Payment of %s received for %s", formatCents(e.AmountCents), e.ItemTitle)
	case domain.EventPaymentFailed:
		msg := fmt.Sprintf("Payment for %s failed", e.ItemTitle)
		if e.Reason != "" {
			msg += ": " + e.Reason
		}
		return "Payment Failed", msg
	}
	return "Booking Update", fmt.Sprintf("Your booking of %s was updated", e.ItemTitle)
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
