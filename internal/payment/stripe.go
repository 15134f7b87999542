package payment

import (
	"context"
	"fmt"
	"strings"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeGateway implements Gateway on Stripe Connect. Owners are Express or
// Custom connected accounts; renter payments are PaymentIntents or Charges on
// the platform account.
type StripeGateway struct {
	sc       *client.API
	currency string
}

func NewStripeGateway(secretKey, currency string) *StripeGateway {
	return NewStripeGatewayWithBackends(secretKey, currency, nil)
}

// NewStripeGatewayWithBackends lets callers point the client at another API
// host, e.g. stripe-mock or a test server.
func NewStripeGatewayWithBackends(secretKey, currency string, backends *stripe.Backends) *StripeGateway {
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &StripeGateway{
		sc:       client.New(secretKey, backends),
		currency: currency,
	}
}

func (g *StripeGateway) CreateTransfer(ctx context.Context, req TransferRequest) (string, error) {
	logger.ExternalServiceCall("stripe", "CreateTransfer", "bookingID", req.BookingID, "amount", req.AmountCents, "destination", req.Destination)

	params := &stripe.TransferParams{
		Amount:        stripe.Int64(req.AmountCents),
		Currency:      stripe.String(g.currencyOr(req.Currency)),
		Destination:   stripe.String(req.Destination),
		TransferGroup: stripe.String(req.BookingID),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)
	params.AddMetadata("booking_id", req.BookingID)

	t, err := g.sc.Transfers.New(params)
	logger.ExternalServiceResult("stripe", "CreateTransfer", err, "bookingID", req.BookingID)
	if err != nil {
		return "", fmt.Errorf("stripe transfer: %w", err)
	}
	return t.ID, nil
}

func (g *StripeGateway) CreateRefund(ctx context.Context, req RefundRequest) (string, error) {
	logger.ExternalServiceCall("stripe", "CreateRefund", "bookingID", req.BookingID, "amount", req.AmountCents)

	params := &stripe.RefundParams{
		Amount: stripe.Int64(req.AmountCents),
		Reason: stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	if strings.HasPrefix(req.PaymentRef, "ch_") {
		params.Charge = stripe.String(req.PaymentRef)
	} else {
		params.PaymentIntent = stripe.String(req.PaymentRef)
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)
	params.AddMetadata("booking_id", req.BookingID)
	if req.Reason != "" {
		params.AddMetadata("reason", req.Reason)
	}

	r, err := g.sc.Refunds.New(params)
	logger.ExternalServiceResult("stripe", "CreateRefund", err, "bookingID", req.BookingID)
	if err != nil {
		return "", fmt.Errorf("stripe refund: %w", err)
	}
	return r.ID, nil
}

func (g *StripeGateway) CreatePayout(ctx context.Context, req PayoutRequest) (string, error) {
	logger.ExternalServiceCall("stripe", "CreatePayout", "bookingID", req.BookingID, "account", req.AccountID)

	params := &stripe.PayoutParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(g.currencyOr(req.Currency)),
	}
	params.Context = ctx
	params.SetStripeAccount(req.AccountID)
	params.SetIdempotencyKey(req.IdempotencyKey)
	params.AddMetadata("booking_id", req.BookingID)

	p, err := g.sc.Payouts.New(params)
	logger.ExternalServiceResult("stripe", "CreatePayout", err, "bookingID", req.BookingID)
	if err != nil {
		return "", fmt.Errorf("stripe payout: %w", err)
	}
	return p.ID, nil
}

func (g *StripeGateway) GetAccountStatus(ctx context.Context, accountID string) (*domain.AccountStatus, error) {
	logger.ExternalServiceCall("stripe", "GetAccount", "account", accountID)

	params := &stripe.AccountParams{}
	params.Context = ctx
	acct, err := g.sc.Accounts.GetByID(accountID, params)
	logger.ExternalServiceResult("stripe", "GetAccount", err, "account", accountID)
	if err != nil {
		return nil, fmt.Errorf("stripe account %s: %w", accountID, err)
	}

	status := &domain.AccountStatus{
		OnboardingComplete: acct.DetailsSubmitted && acct.PayoutsEnabled,
		PayoutSchedule:     domain.PayoutScheduleAutomatic,
	}
	if acct.Settings != nil && acct.Settings.Payouts != nil && acct.Settings.Payouts.Schedule != nil &&
		string(acct.Settings.Payouts.Schedule.Interval) == string(domain.PayoutScheduleManual) {
		status.PayoutSchedule = domain.PayoutScheduleManual
	}
	return status, nil
}

func (g *StripeGateway) currencyOr(c string) string {
	if c != "" {
		return c
	}
	return g.currency
}
