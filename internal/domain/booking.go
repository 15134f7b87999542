package domain

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending         BookingStatus = "pending"
	BookingStatusPaymentRequired BookingStatus = "payment_required"
	BookingStatusConfirmed       BookingStatus = "confirmed"
	BookingStatusInProgress      BookingStatus = "in_progress"
	BookingStatusReturnPending   BookingStatus = "return_pending"
	BookingStatusCompleted       BookingStatus = "completed"
	BookingStatusCancelled       BookingStatus = "cancelled"
	BookingStatusDisputed        BookingStatus = "disputed"
)

// bookingTransitions is the complete lifecycle graph. A status missing from a
// source's list can never be reached from that source.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:         {BookingStatusConfirmed, BookingStatusPaymentRequired, BookingStatusCancelled, BookingStatusDisputed},
	BookingStatusPaymentRequired: {BookingStatusConfirmed, BookingStatusCancelled, BookingStatusDisputed},
	BookingStatusConfirmed:       {BookingStatusInProgress, BookingStatusCancelled, BookingStatusDisputed},
	BookingStatusInProgress:      {BookingStatusReturnPending, BookingStatusCancelled, BookingStatusDisputed},
	BookingStatusReturnPending:   {BookingStatusCompleted, BookingStatusDisputed},
	BookingStatusCompleted:       {},
	BookingStatusCancelled:       {},
	BookingStatusDisputed:        {},
}

// IsValid reports whether s is one of the known booking statuses.
func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// CanTransitionTo reports whether the lifecycle graph has an edge s -> target.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s. Disputed counts as
// terminal for the state machine; resolution is an administrative override.
func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a raw string into a BookingStatus.
func ParseBookingStatus(raw string) (BookingStatus, error) {
	s := BookingStatus(raw)
	if !s.IsValid() {
		return "", NewValidationError(fmt.Sprintf("unknown booking status %q", raw))
	}
	return s, nil
}

type DepositStatus string

const (
	DepositStatusHeld             DepositStatus = "held"
	DepositStatusRefunded         DepositStatus = "refunded"
	DepositStatusRetained         DepositStatus = "retained"
	DepositStatusHeldRefundFailed DepositStatus = "held_refund_failed"
)

// PartyRole identifies which side of a booking an actor is on.
type PartyRole string

const (
	RoleRenter PartyRole = "renter"
	RoleOwner  PartyRole = "owner"
)

type Booking struct {
	ID        string `json:"id"`
	ListingID string `json:"listing_id"`
	RenterID  string `json:"renter_id"`
	OwnerID   string `json:"owner_id"`

	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	NumberOfDays int       `json:"number_of_days"`

	// Amounts are snapshotted at request time, in minor currency units.
	DailyRateCents    int64   `json:"daily_rate_cents"`
	SubtotalCents     int64   `json:"subtotal_cents"`
	ServiceFeeCents   int64   `json:"service_fee_cents"`
	InsuranceFeeCents int64   `json:"insurance_fee_cents"`
	DepositCents      int64   `json:"deposit_cents"`
	CreditCents       int64   `json:"credit_cents"`
	TotalCents        int64   `json:"total_cents"`
	CommissionRate    float64 `json:"commission_rate"`

	Status BookingStatus `json:"status"`

	PickupConfirmedByRenter bool `json:"pickup_confirmed_by_renter"`
	PickupConfirmedByOwner  bool `json:"pickup_confirmed_by_owner"`
	ReturnConfirmedByRenter bool `json:"return_confirmed_by_renter"`
	ReturnConfirmedByOwner  bool `json:"return_confirmed_by_owner"`

	PaymentRef    string        `json:"payment_ref,omitempty"`
	TransferRef   *string       `json:"transfer_ref,omitempty"`
	RefundRef     *string       `json:"refund_ref,omitempty"`
	PayoutRef     *string       `json:"payout_ref,omitempty"`
	DepositStatus DepositStatus `json:"deposit_status"`

	HasIssues bool   `json:"has_issues"`
	IssueNote string `json:"issue_note,omitempty"`

	CancellationFeeCents int64  `json:"cancellation_fee_cents"`
	CancelledBy          string `json:"cancelled_by,omitempty"`
	CancelReason         string `json:"cancel_reason,omitempty"`

	// Refund owed to the renter on cancellation. Outstanding while RefundRef is nil.
	CancellationRefundCents int64 `json:"cancellation_refund_cents"`

	LastError string `json:"last_error,omitempty"`

	Version   int64     `json:"version"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// Transition moves the booking to target if the lifecycle graph allows it.
func (b *Booking) Transition(target BookingStatus) error {
	if !b.Status.CanTransitionTo(target) {
		return &BookingError{
			BookingID: b.ID,
			Step:      "transition",
			Kind:      ErrInvariantViolation,
			Cause:     fmt.Errorf("%s -> %s is not allowed", b.Status, target),
		}
	}
	b.Status = target
	return nil
}

// RoleOf reports the actor's side of the booking.
func (b *Booking) RoleOf(userID string) (PartyRole, bool) {
	switch userID {
	case b.RenterID:
		return RoleRenter, true
	case b.OwnerID:
		return RoleOwner, true
	}
	return "", false
}

// ConfirmPickup sets the party's pickup flag. It returns true when this call
// completed the pickup quorum.
func (b *Booking) ConfirmPickup(role PartyRole) bool {
	before := b.PickupQuorum()
	switch role {
	case RoleRenter:
		b.PickupConfirmedByRenter = true
	case RoleOwner:
		b.PickupConfirmedByOwner = true
	}
	return !before && b.PickupQuorum()
}

// ConfirmReturn sets the party's return flag. It returns true when this call
// completed the return quorum.
func (b *Booking) ConfirmReturn(role PartyRole) bool {
	before := b.ReturnQuorum()
	switch role {
	case RoleRenter:
		b.ReturnConfirmedByRenter = true
	case RoleOwner:
		b.ReturnConfirmedByOwner = true
	}
	return !before && b.ReturnQuorum()
}

func (b *Booking) PickupQuorum() bool {
	return b.PickupConfirmedByRenter && b.PickupConfirmedByOwner
}

func (b *Booking) ReturnQuorum() bool {
	return b.ReturnConfirmedByRenter && b.ReturnConfirmedByOwner
}

// HasPickupConfirmation reports whether the given party already confirmed pickup.
func (b *Booking) HasPickupConfirmation(role PartyRole) bool {
	if role == RoleRenter {
		return b.PickupConfirmedByRenter
	}
	return b.PickupConfirmedByOwner
}

// HasReturnConfirmation reports whether the given party already confirmed return.
func (b *Booking) HasReturnConfirmation(role PartyRole) bool {
	if role == RoleRenter {
		return b.ReturnConfirmedByRenter
	}
	return b.ReturnConfirmedByOwner
}

// Participants returns the renter and owner ids.
func (b *Booking) Participants() []string {
	return []string{b.RenterID, b.OwnerID}
}

// BookingRequest is the renter's input for a new booking.
type BookingRequest struct {
	ListingID        string
	StartDate        time.Time
	EndDate          time.Time
	IncludeInsurance bool
	CreditCents      int64
	PaymentRef       string
}

// BookingFilter narrows booking listings.
type BookingFilter struct {
	UserID   string
	Role     PartyRole
	Status   BookingStatus
	Page     int32
	PageSize int32
}
