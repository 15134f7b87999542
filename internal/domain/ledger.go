package domain

import "time"

type TransactionType string

const (
	TransactionTypeOwnerEarning       TransactionType = "OWNER_EARNING"
	TransactionTypePlatformCommission TransactionType = "PLATFORM_COMMISSION"
	TransactionTypeDepositRefund      TransactionType = "DEPOSIT_REFUND"
	TransactionTypeCancellationFee    TransactionType = "CANCELLATION_FEE"
	TransactionTypeCancellationRefund TransactionType = "CANCELLATION_REFUND"
)

// PlatformAccountID is the ledger account that collects commission and fees.
const PlatformAccountID = "platform"

type LedgerTransaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	BookingID   string          `json:"booking_id"`
	Amount      int64           `json:"amount"` // positive for credit, negative for debit
	Type        TransactionType `json:"type"`
	ExternalRef string          `json:"external_ref,omitempty"`
	Description string          `json:"description"`
	CreatedOn   time.Time       `json:"created_on"`
}
