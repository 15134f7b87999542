package service_test

import (
	"testing"
	"time"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestFlexibleCancellationPolicy(t *testing.T) {
	policy := service.NewFlexibleCancellationPolicy(24)
	early := startDate.Add(-72 * time.Hour)
	late := startDate.Add(-6 * time.Hour)

	tests := []struct {
		name   string
		status domain.BookingStatus
		paid   bool
		by     domain.PartyRole
		now    time.Time
		want   service.CancellationQuote
	}{
		{"pending is free", domain.BookingStatusPending, true, domain.RoleRenter, late, service.CancellationQuote{RefundCents: 35000}},
		{"unpaid refunds nothing", domain.BookingStatusPaymentRequired, false, domain.RoleRenter, late, service.CancellationQuote{}},
		{"confirmed early keeps service fee", domain.BookingStatusConfirmed, true, domain.RoleRenter, early, service.CancellationQuote{RefundCents: 32000}},
		{"confirmed late charges half", domain.BookingStatusConfirmed, true, domain.RoleRenter, late, service.CancellationQuote{FeeCents: 10000, RefundCents: 22000}},
		{"in progress charges subtotal", domain.BookingStatusInProgress, true, domain.RoleRenter, startDate, service.CancellationQuote{FeeCents: 20000, RefundCents: 12000}},
		{"owner refunds everything", domain.BookingStatusInProgress, true, domain.RoleOwner, startDate, service.CancellationQuote{RefundCents: 35000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBooking(tt.status)
			if !tt.paid {
				b.PaymentRef = ""
			}
			assert.Equal(t, tt.want, policy.Quote(b, tt.by, tt.now))
		})
	}

	t.Run("Refund never negative", func(t *testing.T) {
		b := newTestBooking(domain.BookingStatusInProgress)
		b.CreditCents = 17500
		b.TotalCents = 17500
		q := policy.Quote(b, domain.RoleRenter, startDate)
		assert.Equal(t, int64(0), q.RefundCents)
	})
}
