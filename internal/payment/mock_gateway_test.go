package payment

import (
	"context"
	"errors"
	"testing"

	"rentshare-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGateway(t *testing.T) {
	ctx := context.Background()

	t.Run("Idempotent transfer", func(t *testing.T) {
		gw := NewMockGateway()
		req := TransferRequest{AmountCents: 16000, Destination: "acct_1", BookingID: "b-1", IdempotencyKey: TransferKey("b-1")}

		first, err := gw.CreateTransfer(ctx, req)
		require.NoError(t, err)
		second, err := gw.CreateTransfer(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Len(t, gw.Transfers, 1)
	})

	t.Run("Injected failure", func(t *testing.T) {
		gw := NewMockGateway()
		gw.RefundErr = errors.New("card_declined")

		_, err := gw.CreateRefund(ctx, RefundRequest{PaymentRef: "pi_1", AmountCents: 100, IdempotencyKey: RefundKey("b-1")})
		assert.EqualError(t, err, "card_declined")
		assert.Empty(t, gw.Refunds)
	})

	t.Run("Account status", func(t *testing.T) {
		gw := NewMockGateway()
		gw.Accounts["acct_manual"] = domain.AccountStatus{OnboardingComplete: true, PayoutSchedule: domain.PayoutScheduleManual}

		s, err := gw.GetAccountStatus(ctx, "acct_manual")
		require.NoError(t, err)
		assert.Equal(t, domain.PayoutScheduleManual, s.PayoutSchedule)

		s, err = gw.GetAccountStatus(ctx, "acct_other")
		require.NoError(t, err)
		assert.True(t, s.OnboardingComplete)

		_, err = gw.GetAccountStatus(ctx, "")
		assert.Error(t, err)
	})
}
