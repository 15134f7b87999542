package payment

import (
	"context"

	"rentshare-backend/internal/domain"
)

// Gateway defines the payment provider operations used by settlement.
// Implementations must honour IdempotencyKey: repeating a call with the same
// key returns the original result instead of moving money twice.
type Gateway interface {
	// CreateTransfer moves funds from the platform balance to a connected account.
	CreateTransfer(ctx context.Context, req TransferRequest) (string, error)

	// CreateRefund returns part or all of a captured payment to the payer.
	CreateRefund(ctx context.Context, req RefundRequest) (string, error)

	// CreatePayout pays a connected account's balance out to its bank.
	CreatePayout(ctx context.Context, req PayoutRequest) (string, error)

	// GetAccountStatus reports onboarding state and payout schedule.
	GetAccountStatus(ctx context.Context, accountID string) (*domain.AccountStatus, error)
}

type TransferRequest struct {
	AmountCents    int64
	Currency       string
	Destination    string
	BookingID      string
	IdempotencyKey string
}

type RefundRequest struct {
	PaymentRef     string
	AmountCents    int64
	BookingID      string
	Reason         string
	IdempotencyKey string
}

type PayoutRequest struct {
	AccountID      string
	AmountCents    int64
	Currency       string
	BookingID      string
	IdempotencyKey string
}

// Idempotency keys are derived from the booking so a retried settlement
// reuses them.
func TransferKey(bookingID string) string { return "transfer-" + bookingID }
func RefundKey(bookingID string) string   { return "refund-" + bookingID }
func PayoutKey(bookingID string) string   { return "payout-" + bookingID }
func CancellationRefundKey(bookingID string) string {
	return "cancel-refund-" + bookingID
}
