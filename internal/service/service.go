package service

import (
	"context"
	"time"

	"rentshare-backend/internal/domain"
)

type BookingService interface {
	RequestBooking(ctx context.Context, renterID string, req domain.BookingRequest) (*domain.Booking, error)
	AcceptBooking(ctx context.Context, ownerID, bookingID string) (*domain.Booking, error)
	RecordPayment(ctx context.Context, bookingID, paymentRef string) (*domain.Booking, error)
	RecordPaymentFailure(ctx context.Context, bookingID, reason string) (*domain.Booking, error)
	ConfirmPickup(ctx context.Context, actorID, bookingID string) (*domain.Booking, error)
	ConfirmReturn(ctx context.Context, actorID, bookingID string) (*domain.Booking, *domain.SettlementResult, error)
	CompleteBooking(ctx context.Context, bookingID string) (*domain.Booking, *domain.SettlementResult, error)
	CancelBooking(ctx context.Context, actorID, bookingID, reason string) (*domain.Booking, error)
	// RetryCancellationRefund sends the refund a cancelled booking is still owed.
	RetryCancellationRefund(ctx context.Context, bookingID string) (*domain.Booking, error)
	ReportIssue(ctx context.Context, actorID, bookingID, note string) (*domain.Booking, error)
	OpenDispute(ctx context.Context, actorID, bookingID, reason string) (*domain.Booking, error)
	GetBooking(ctx context.Context, userID, bookingID string) (*domain.Booking, error)
	ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error)
	Quote(ctx context.Context, listingID string, start, end time.Time, includeInsurance bool, creditCents int64) (*domain.PricingBreakdown, error)
}

type AvailabilityService interface {
	CheckAvailability(ctx context.Context, listingID string, start, end time.Time) (*domain.AvailabilityResult, error)
	// Reserve marks every date of the booking with status. Dates already held
	// by the same booking are overwritten, anything else is a conflict.
	Reserve(ctx context.Context, booking *domain.Booking, status domain.BlockStatus) error
	// Promote changes the status of the blocks a booking already holds and
	// returns how many were changed.
	Promote(ctx context.Context, bookingID string, status domain.BlockStatus) (int64, error)
	Release(ctx context.Context, bookingID string) error
	BlockDates(ctx context.Context, ownerID, listingID string, dates []time.Time) error
	UnblockDates(ctx context.Context, ownerID, listingID string, dates []time.Time) error
	GetCalendar(ctx context.Context, listingID string, start, end time.Time) ([]domain.AvailabilityBlock, error)
}

type SettlementService interface {
	// Settle moves the owner's earnings, refunds the deposit and pays out
	// manual-schedule accounts. Steps that already succeeded are skipped.
	// A non-nil error is always fatal for completion.
	Settle(ctx context.Context, booking *domain.Booking) (*domain.SettlementResult, error)
	RetryDepositRefund(ctx context.Context, bookingID string) (*domain.SettlementResult, error)
}

type LedgerService interface {
	GetTransactions(ctx context.Context, userID string, page, pageSize int32) ([]domain.LedgerTransaction, int32, error)
	GetBookingTransactions(ctx context.Context, bookingID string) ([]domain.LedgerTransaction, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID string, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID string, notificationID int64) error
	// Deliver stores an in-app notification for every recipient of the
	// event and forwards it to push and email.
	Deliver(ctx context.Context, event domain.BookingEvent) error
}

type EmailService interface {
	SendBookingEmail(ctx context.Context, to domain.User, subject, body string) error
}

// PushSender delivers a push message to one device.
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// EventDispatcher hands booking events to the notification pipeline. Dispatch
// never fails the caller; delivery problems are logged.
type EventDispatcher interface {
	Dispatch(ctx context.Context, event domain.BookingEvent)
}

// CancellationPolicy decides what a cancellation costs.
type CancellationPolicy interface {
	Quote(booking *domain.Booking, cancelledBy domain.PartyRole, now time.Time) CancellationQuote
}

type CancellationQuote struct {
	FeeCents    int64
	RefundCents int64
}
