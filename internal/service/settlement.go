package service

import (
	"context"
	"errors"
	"fmt"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/lock"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/payment"
	"rentshare-backend/internal/repository"
	"rentshare-backend/internal/utils"
)

type settlementService struct {
	bookingRepo repository.BookingRepository
	payeeRepo   repository.PayeeAccountRepository
	ledgerRepo  repository.LedgerRepository
	gateway     payment.Gateway
	locker      lock.Locker
	currency    string
}

func NewSettlementService(
	bookingRepo repository.BookingRepository,
	payeeRepo repository.PayeeAccountRepository,
	ledgerRepo repository.LedgerRepository,
	gateway payment.Gateway,
	locker lock.Locker,
	currency string,
) SettlementService {
	if currency == "" {
		currency = "usd"
	}
	return &settlementService{
		bookingRepo: bookingRepo,
		payeeRepo:   payeeRepo,
		ledgerRepo:  ledgerRepo,
		gateway:     gateway,
		locker:      locker,
		currency:    currency,
	}
}

// SettlementAmounts splits what the renter paid for the rental itself into
// the owner's earnings and the platform commission. Deposit, service fee and
// insurance never carry commission.
func SettlementAmounts(b *domain.Booking) (earnings, commission int64) {
	subtotal := b.TotalCents + b.CreditCents - b.DepositCents - b.ServiceFeeCents - b.InsuranceFeeCents
	if subtotal < 0 {
		subtotal = 0
	}
	commission = utils.CommissionOn(subtotal, b.CommissionRate)
	return subtotal - commission, commission
}

// Settle runs transfer, deposit refund and payout in that order. The caller
// must hold the booking lock.
func (s *settlementService) Settle(ctx context.Context, b *domain.Booking) (*domain.SettlementResult, error) {
	logger.EnterMethod("settlementService.Settle", "bookingID", b.ID)

	earnings, commission := SettlementAmounts(b)
	res := &domain.SettlementResult{
		BookingID:            b.ID,
		OwnerEarningsCents:   earnings,
		PlatformRevenueCents: commission + b.ServiceFeeCents,
	}

	var account *domain.PayeeAccount
	var status *domain.AccountStatus

	if b.TransferRef != nil {
		res.TransferID = *b.TransferRef
		res.AlreadySettled = true
		logger.Info("Transfer already recorded, skipping", "bookingID", b.ID, "transferID", res.TransferID)
	} else if earnings > 0 {
		var err error
		account, status, err = s.ownerAccount(ctx, b)
		if err != nil {
			res.TransferError = err.Error()
			logger.ExitMethodWithError("settlementService.Settle", err, "bookingID", b.ID)
			return res, err
		}

		logger.ExternalServiceCall("payment", "CreateTransfer", "bookingID", b.ID, "amount", earnings)
		transferID, err := s.gateway.CreateTransfer(ctx, payment.TransferRequest{
			AmountCents:    earnings,
			Currency:       s.currency,
			Destination:    account.AccountID,
			BookingID:      b.ID,
			IdempotencyKey: payment.TransferKey(b.ID),
		})
		logger.ExternalServiceResult("payment", "CreateTransfer", err, "bookingID", b.ID)
		if err != nil {
			res.TransferError = err.Error()
			berr := &domain.BookingError{BookingID: b.ID, Step: "transfer", Kind: domain.ErrTransferFailed, Cause: err}
			logger.ExitMethodWithError("settlementService.Settle", berr, "bookingID", b.ID)
			return res, berr
		}

		b.TransferRef = &transferID
		res.TransferID = transferID
		if err := s.bookingRepo.Update(ctx, b); err != nil {
			// The transfer went through; a retry reuses the idempotency key.
			berr := &domain.BookingError{BookingID: b.ID, Step: "record transfer", Kind: domain.ErrDependency, Cause: err}
			logger.ExitMethodWithError("settlementService.Settle", berr, "bookingID", b.ID)
			return res, berr
		}

		recordTransaction(ctx, s.ledgerRepo, &domain.LedgerTransaction{
			UserID:      b.OwnerID,
			BookingID:   b.ID,
			Amount:      earnings,
			Type:        domain.TransactionTypeOwnerEarning,
			ExternalRef: transferID,
			Description: "Rental earnings",
		})
		if commission > 0 {
			recordTransaction(ctx, s.ledgerRepo, &domain.LedgerTransaction{
				UserID:      domain.PlatformAccountID,
				BookingID:   b.ID,
				Amount:      commission,
				Type:        domain.TransactionTypePlatformCommission,
				ExternalRef: transferID,
				Description: "Platform commission",
			})
		}
	}

	b.LastError = ""
	changed := s.refundDeposit(ctx, b, res)
	if s.payout(ctx, b, res, earnings, account, status) {
		changed = true
	}

	if changed {
		if err := s.bookingRepo.Update(ctx, b); err != nil {
			berr := &domain.BookingError{BookingID: b.ID, Step: "record settlement", Kind: domain.ErrDependency, Cause: err}
			logger.ExitMethodWithError("settlementService.Settle", berr, "bookingID", b.ID)
			return res, berr
		}
	}

	logger.ExitMethod("settlementService.Settle", "bookingID", b.ID, "transferID", res.TransferID,
		"refundID", res.RefundID, "payoutID", res.PayoutID)
	return res, nil
}

func (s *settlementService) RetryDepositRefund(ctx context.Context, bookingID string) (*domain.SettlementResult, error) {
	logger.EnterMethod("settlementService.RetryDepositRefund", "bookingID", bookingID)

	release, err := s.locker.Acquire(ctx, lock.BookingKey(bookingID))
	if err != nil {
		return nil, &domain.BookingError{BookingID: bookingID, Step: "lock", Kind: domain.ErrConflict, Cause: err}
	}
	defer release()

	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		logger.ExitMethodWithError("settlementService.RetryDepositRefund", err, "bookingID", bookingID)
		return nil, err
	}
	if b.Status != domain.BookingStatusCompleted {
		err := &domain.BookingError{
			BookingID: b.ID,
			Step:      "refund retry",
			Kind:      domain.ErrInvariantViolation,
			Cause:     fmt.Errorf("booking is %s, not completed", b.Status),
		}
		logger.ExitMethodWithError("settlementService.RetryDepositRefund", err, "bookingID", bookingID)
		return nil, err
	}

	earnings, commission := SettlementAmounts(b)
	res := &domain.SettlementResult{
		BookingID:            b.ID,
		OwnerEarningsCents:   earnings,
		PlatformRevenueCents: commission + b.ServiceFeeCents,
		AlreadySettled:       b.TransferRef != nil,
	}
	if b.TransferRef != nil {
		res.TransferID = *b.TransferRef
	}

	b.LastError = ""
	if s.refundDeposit(ctx, b, res) {
		if err := s.bookingRepo.Update(ctx, b); err != nil {
			logger.ExitMethodWithError("settlementService.RetryDepositRefund", err, "bookingID", bookingID)
			return res, &domain.BookingError{BookingID: b.ID, Step: "record refund", Kind: domain.ErrDependency, Cause: err}
		}
	}

	logger.ExitMethod("settlementService.RetryDepositRefund", "bookingID", bookingID, "refundID", res.RefundID)
	return res, nil
}

// ownerAccount returns the owner's payee account once onboarding is complete.
func (s *settlementService) ownerAccount(ctx context.Context, b *domain.Booking) (*domain.PayeeAccount, *domain.AccountStatus, error) {
	account, err := s.payeeRepo.GetByUserID(ctx, b.OwnerID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && account.AccountID == "") {
		return nil, nil, &domain.BookingError{BookingID: b.ID, Step: "payee account", Kind: domain.ErrOwnerPayoutAccountMissing}
	}
	if err != nil {
		return nil, nil, &domain.BookingError{BookingID: b.ID, Step: "payee account", Kind: domain.ErrDependency, Cause: err}
	}

	logger.ExternalServiceCall("payment", "GetAccountStatus", "accountID", account.AccountID)
	status, err := s.gateway.GetAccountStatus(ctx, account.AccountID)
	logger.ExternalServiceResult("payment", "GetAccountStatus", err, "accountID", account.AccountID)
	if err != nil {
		return nil, nil, &domain.BookingError{BookingID: b.ID, Step: "payee account", Kind: domain.ErrDependency, Cause: err}
	}
	if !status.OnboardingComplete {
		return nil, nil, &domain.BookingError{
			BookingID: b.ID,
			Step:      "payee account",
			Kind:      domain.ErrOwnerPayoutAccountMissing,
			Cause:     errors.New("onboarding incomplete"),
		}
	}
	return account, status, nil
}

// refundDeposit returns true when it changed the booking.
func (s *settlementService) refundDeposit(ctx context.Context, b *domain.Booking, res *domain.SettlementResult) bool {
	switch {
	case b.RefundRef != nil || b.DepositStatus == domain.DepositStatusRefunded:
		res.RefundSkipReason = domain.RefundSkipAlreadyRefunded
		if b.RefundRef != nil {
			res.RefundID = *b.RefundRef
		}
		return false
	case b.HasIssues:
		res.RefundSkipReason = domain.RefundSkipHasIssues
		return false
	case b.DepositCents <= 0:
		res.RefundSkipReason = domain.RefundSkipNoDeposit
		return false
	case b.PaymentRef == "":
		res.RefundSkipReason = domain.RefundSkipNoPayment
		return false
	}

	logger.ExternalServiceCall("payment", "CreateRefund", "bookingID", b.ID, "amount", b.DepositCents)
	refundID, err := s.gateway.CreateRefund(ctx, payment.RefundRequest{
		PaymentRef:     b.PaymentRef,
		AmountCents:    b.DepositCents,
		BookingID:      b.ID,
		Reason:         "security deposit",
		IdempotencyKey: payment.RefundKey(b.ID),
	})
	logger.ExternalServiceResult("payment", "CreateRefund", err, "bookingID", b.ID)
	if err != nil {
		refundErr := &domain.BookingError{BookingID: b.ID, Step: "deposit refund", Kind: domain.ErrRefundFailed, Cause: err}
		logger.Warn("Deposit refund failed, will retry", "bookingID", b.ID, "error", refundErr)
		res.RefundError = err.Error()
		b.DepositStatus = domain.DepositStatusHeldRefundFailed
		b.LastError = refundErr.Error()
		return true
	}

	res.RefundID = refundID
	b.RefundRef = &refundID
	b.DepositStatus = domain.DepositStatusRefunded
	recordTransaction(ctx, s.ledgerRepo, &domain.LedgerTransaction{
		UserID:      b.RenterID,
		BookingID:   b.ID,
		Amount:      b.DepositCents,
		Type:        domain.TransactionTypeDepositRefund,
		ExternalRef: refundID,
		Description: "Security deposit refund",
	})
	return true
}

// payout returns true when it changed the booking.
func (s *settlementService) payout(ctx context.Context, b *domain.Booking, res *domain.SettlementResult, earnings int64, account *domain.PayeeAccount, status *domain.AccountStatus) bool {
	if b.PayoutRef != nil {
		res.PayoutID = *b.PayoutRef
		res.PayoutSkipReason = domain.PayoutSkipAlreadyPaid
		return false
	}
	if earnings <= 0 {
		res.PayoutSkipReason = domain.PayoutSkipNoEarnings
		return false
	}

	if account == nil {
		var err error
		account, status, err = s.ownerAccount(ctx, b)
		if err != nil {
			payoutErr := &domain.BookingError{BookingID: b.ID, Step: "payout", Kind: domain.ErrPayoutFailed, Cause: err}
			logger.Warn("Payout skipped", "bookingID", b.ID, "error", payoutErr)
			res.PayoutError = err.Error()
			appendLastError(b, payoutErr)
			return true
		}
	}
	if status.PayoutSchedule != domain.PayoutScheduleManual {
		res.PayoutSkipReason = domain.PayoutSkipAutomatic
		return false
	}

	logger.ExternalServiceCall("payment", "CreatePayout", "bookingID", b.ID, "amount", earnings)
	payoutID, err := s.gateway.CreatePayout(ctx, payment.PayoutRequest{
		AccountID:      account.AccountID,
		AmountCents:    earnings,
		Currency:       s.currency,
		BookingID:      b.ID,
		IdempotencyKey: payment.PayoutKey(b.ID),
	})
	logger.ExternalServiceResult("payment", "CreatePayout", err, "bookingID", b.ID)
	if err != nil {
		payoutErr := &domain.BookingError{BookingID: b.ID, Step: "payout", Kind: domain.ErrPayoutFailed, Cause: err}
		logger.Warn("Payout failed", "bookingID", b.ID, "error", payoutErr)
		res.PayoutError = err.Error()
		appendLastError(b, payoutErr)
		return true
	}

	res.PayoutID = payoutID
	b.PayoutRef = &payoutID
	return true
}

func appendLastError(b *domain.Booking, err error) {
	if b.LastError == "" {
		b.LastError = err.Error()
		return
	}
	b.LastError += "; " + err.Error()
}
