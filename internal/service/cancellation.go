package service

import (
	"time"

	"rentshare-backend/internal/domain"
)

// FlexibleCancellationPolicy charges nothing until FreeWindow before the
// start date, half the rental subtotal inside the window and the full
// subtotal once the rental has started. The service fee is kept after
// confirmation; the deposit always goes back to the renter. An owner who
// cancels pays the renter back in full.
type FlexibleCancellationPolicy struct {
	FreeWindow time.Duration
}

func NewFlexibleCancellationPolicy(freeHours int) *FlexibleCancellationPolicy {
	if freeHours <= 0 {
		freeHours = 24
	}
	return &FlexibleCancellationPolicy{FreeWindow: time.Duration(freeHours) * time.Hour}
}

func (p *FlexibleCancellationPolicy) Quote(b *domain.Booking, cancelledBy domain.PartyRole, now time.Time) CancellationQuote {
	var paid int64
	if b.PaymentRef != "" {
		paid = b.TotalCents
	}

	if cancelledBy == domain.RoleOwner {
		return CancellationQuote{RefundCents: paid}
	}

	var fee, retained int64
	switch b.Status {
	case domain.BookingStatusPending, domain.BookingStatusPaymentRequired:
		// Nothing was confirmed yet.
	case domain.BookingStatusConfirmed:
		retained = b.ServiceFeeCents
		if now.After(b.StartDate.Add(-p.FreeWindow)) {
			fee = b.SubtotalCents / 2
		}
	case domain.BookingStatusInProgress:
		retained = b.ServiceFeeCents
		fee = b.SubtotalCents
	}

	refund := paid - fee - retained
	if refund < 0 {
		refund = 0
	}
	return CancellationQuote{FeeCents: fee, RefundCents: refund}
}
