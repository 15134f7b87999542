package domain

// SettlementResult describes what one settlement run did for a booking.
type SettlementResult struct {
	BookingID string `json:"booking_id"`

	TransferID     string `json:"transfer_id,omitempty"`
	TransferError  string `json:"transfer_error,omitempty"`
	AlreadySettled bool   `json:"already_settled"`

	RefundID         string `json:"refund_id,omitempty"`
	RefundError      string `json:"refund_error,omitempty"`
	RefundSkipReason string `json:"refund_skip_reason,omitempty"`

	PayoutID         string `json:"payout_id,omitempty"`
	PayoutError      string `json:"payout_error,omitempty"`
	PayoutSkipReason string `json:"payout_skip_reason,omitempty"`

	OwnerEarningsCents   int64 `json:"owner_earnings_cents"`
	PlatformRevenueCents int64 `json:"platform_revenue_cents"`
}

// Refund skip reasons.
const (
	RefundSkipHasIssues       = "booking has reported issues"
	RefundSkipNoDeposit       = "no deposit"
	RefundSkipAlreadyRefunded = "deposit already refunded"
	RefundSkipNoPayment       = "no payment reference"
)

// Payout skip reasons.
const (
	PayoutSkipAutomatic   = "payee account uses automatic payouts"
	PayoutSkipAlreadyPaid = "payout already created"
	PayoutSkipNoEarnings  = "no earnings to pay out"
)

// PayeeAccount links a user to their connected payment-provider account.
type PayeeAccount struct {
	UserID    string `json:"user_id"`
	AccountID string `json:"account_id"`
}

// PayoutSchedule of a connected account.
type PayoutSchedule string

const (
	PayoutScheduleManual    PayoutSchedule = "manual"
	PayoutScheduleAutomatic PayoutSchedule = "automatic"
)

// AccountStatus is what the payment provider reports about a payee account.
type AccountStatus struct {
	OnboardingComplete bool
	PayoutSchedule     PayoutSchedule
}
