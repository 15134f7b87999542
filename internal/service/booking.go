package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/lock"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/payment"
	"rentshare-backend/internal/repository"
	"rentshare-backend/internal/utils"

	"github.com/google/uuid"
)

// BookingSettings are the platform knobs the booking core reads.
type BookingSettings struct {
	Rates         domain.PricingRates
	MaxFutureDays int
	Currency      string
	// Now defaults to time.Now.
	Now func() time.Time
}

type bookingService struct {
	bookingRepo  repository.BookingRepository
	listingRepo  repository.ListingRepository
	ledgerRepo   repository.LedgerRepository
	availability AvailabilityService
	settlement   SettlementService
	gateway      payment.Gateway
	policy       CancellationPolicy
	dispatcher   EventDispatcher
	locker       lock.Locker
	settings     BookingSettings
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	listingRepo repository.ListingRepository,
	ledgerRepo repository.LedgerRepository,
	availability AvailabilityService,
	settlement SettlementService,
	gateway payment.Gateway,
	policy CancellationPolicy,
	dispatcher EventDispatcher,
	locker lock.Locker,
	settings BookingSettings,
) BookingService {
	if settings.Now == nil {
		settings.Now = time.Now
	}
	if settings.Currency == "" {
		settings.Currency = "usd"
	}
	return &bookingService{
		bookingRepo:  bookingRepo,
		listingRepo:  listingRepo,
		ledgerRepo:   ledgerRepo,
		availability: availability,
		settlement:   settlement,
		gateway:      gateway,
		policy:       policy,
		dispatcher:   dispatcher,
		locker:       locker,
		settings:     settings,
	}
}

func (s *bookingService) RequestBooking(ctx context.Context, renterID string, req domain.BookingRequest) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.RequestBooking", "renterID", renterID, "listingID", req.ListingID)

	problems := utils.ValidateDateRange(req.StartDate, req.EndDate, s.settings.Now(), s.settings.MaxFutureDays)
	if req.ListingID == "" {
		problems = append(problems, "listing id is required")
	}
	if req.CreditCents < 0 {
		problems = append(problems, "credit cannot be negative")
	}
	if len(problems) > 0 {
		err := domain.NewValidationError(problems...)
		logger.ExitMethodWithError("bookingService.RequestBooking", err, "renterID", renterID)
		return nil, err
	}

	listing, err := s.listingRepo.GetByID(ctx, req.ListingID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.RequestBooking", err, "listingID", req.ListingID)
		return nil, err
	}
	if !listing.Active {
		return nil, domain.NewValidationError("listing is not available for booking")
	}
	if listing.OwnerID == renterID {
		return nil, domain.NewValidationError("cannot book your own listing")
	}

	bookingID := uuid.NewString()
	avail, err := s.availability.CheckAvailability(ctx, listing.ID, req.StartDate, req.EndDate)
	if err != nil {
		return nil, wrapBookingError(bookingID, "availability", err)
	}
	if !avail.Available {
		err := &domain.BookingError{
			BookingID: bookingID,
			Step:      "availability",
			Kind:      domain.ErrConflict,
			Cause:     fmt.Errorf("dates unavailable: %s", formatDates(avail.Conflicts)),
		}
		logger.ExitMethodWithError("bookingService.RequestBooking", err, "listingID", listing.ID)
		return nil, err
	}

	days := utils.CalculateDuration(req.StartDate, req.EndDate)
	pricing, err := utils.CalculateBookingPricing(listing.DailyRateCents, days, req.IncludeInsurance, listing.SecurityDepositCents, s.settings.Rates)
	if err != nil {
		logger.ExitMethodWithError("bookingService.RequestBooking", err, "listingID", listing.ID)
		return nil, err
	}
	pricing = utils.ApplyCredit(pricing, req.CreditCents, s.settings.Rates.MaxCreditPercent)

	b := &domain.Booking{
		ID:                bookingID,
		ListingID:         listing.ID,
		RenterID:          renterID,
		OwnerID:           listing.OwnerID,
		StartDate:         utils.DateOnly(req.StartDate),
		EndDate:           utils.DateOnly(req.EndDate),
		NumberOfDays:      days,
		DailyRateCents:    pricing.DailyRate,
		SubtotalCents:     pricing.BasePrice,
		ServiceFeeCents:   pricing.ServiceFee,
		InsuranceFeeCents: pricing.Insurance,
		DepositCents:      pricing.SecurityDeposit,
		CreditCents:       pricing.CreditApplied,
		TotalCents:        pricing.TotalRenterPays,
		CommissionRate:    s.settings.Rates.CommissionPercent,
		Status:            domain.BookingStatusPending,
		PaymentRef:        req.PaymentRef,
		DepositStatus:     domain.DepositStatusHeld,
	}
	if err := s.bookingRepo.Create(ctx, b); err != nil {
		err = wrapBookingError(b.ID, "create", err)
		logger.ExitMethodWithError("bookingService.RequestBooking", err, "listingID", listing.ID)
		return nil, err
	}
	if listing.InstantBook {
		confirmed, err := s.instantConfirm(ctx, b)
		if err != nil {
			logger.ExitMethodWithError("bookingService.RequestBooking", err, "bookingID", b.ID)
			return nil, err
		}
		b = confirmed
		s.emit(ctx, domain.EventBookingConfirmed, b, listing.Title, "", b.RenterID, b.OwnerID)
	} else {
		s.emit(ctx, domain.EventBookingRequest, b, listing.Title, "", b.OwnerID)
	}

	logger.ExitMethod("bookingService.RequestBooking", "bookingID", b.ID, "status", b.Status)
	return b, nil
}

// instantConfirm confirms a freshly created booking. When the dates were
// taken in the meantime the booking is cancelled and a conflict returned.
func (s *bookingService) instantConfirm(ctx context.Context, created *domain.Booking) (*domain.Booking, error) {
	var confirmErr error
	b, err := s.withBooking(ctx, created.ID, "instant book", func(b *domain.Booking) (bool, error) {
		confirmErr = s.confirm(ctx, b)
		if confirmErr == nil {
			return true, nil
		}
		if !errors.Is(confirmErr, domain.ErrConflict) {
			return false, confirmErr
		}
		if err := b.Transition(domain.BookingStatusCancelled); err != nil {
			return false, err
		}
		b.CancelReason = "requested dates are no longer available"
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if confirmErr != nil {
		return nil, wrapBookingError(b.ID, "instant book", confirmErr)
	}
	return b, nil
}

// confirm reserves the dates and moves a pending booking forward. Without a
// payment the dates are held tentatively until one arrives.
func (s *bookingService) confirm(ctx context.Context, b *domain.Booking) error {
	target, blockStatus := domain.BookingStatusConfirmed, domain.BlockStatusBooked
	if b.PaymentRef == "" {
		target, blockStatus = domain.BookingStatusPaymentRequired, domain.BlockStatusTentative
	}
	if !b.Status.CanTransitionTo(target) {
		return b.Transition(target)
	}
	if err := s.availability.Reserve(ctx, b, blockStatus); err != nil {
		return err
	}
	return b.Transition(target)
}

func (s *bookingService) AcceptBooking(ctx context.Context, ownerID, bookingID string) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.AcceptBooking", "ownerID", ownerID, "bookingID", bookingID)

	b, err := s.withBooking(ctx, bookingID, "accept", func(b *domain.Booking) (bool, error) {
		if b.OwnerID != ownerID {
			return false, fmt.Errorf("%w: only the owner can accept a booking", domain.ErrUnauthorized)
		}
		if err := s.confirm(ctx, b); err != nil {
			return false, err
		}
		if err := s.bookingRepo.Update(ctx, b); err != nil {
			if rerr := s.availability.Release(ctx, b.ID); rerr != nil {
				logger.Error("Failed to release dates after failed accept", "bookingID", b.ID, "error", rerr)
			}
			return false, err
		}
		return false, nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.AcceptBooking", err, "bookingID", bookingID)
		return nil, err
	}

	s.emit(ctx, domain.EventBookingConfirmed, b, "", "", b.RenterID)
	logger.ExitMethod("bookingService.AcceptBooking", "bookingID", b.ID, "status", b.Status)
	return b, nil
}

func (s *bookingService) RecordPayment(ctx context.Context, bookingID, paymentRef string) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.RecordPayment", "bookingID", bookingID)
	if paymentRef == "" {
		return nil, domain.NewValidationError("payment reference is required")
	}

	var received bool
	b, err := s.withBooking(ctx, bookingID, "record payment", func(b *domain.Booking) (bool, error) {
		switch b.Status {
		case domain.BookingStatusPending:
			if b.PaymentRef == paymentRef {
				return false, nil
			}
			b.PaymentRef = paymentRef
		case domain.BookingStatusPaymentRequired:
			b.PaymentRef = paymentRef
			n, err := s.availability.Promote(ctx, b.ID, domain.BlockStatusBooked)
			if err != nil {
				return false, err
			}
			if n == 0 {
				if err := s.availability.Reserve(ctx, b, domain.BlockStatusBooked); err != nil {
					return false, err
				}
			}
			if err := b.Transition(domain.BookingStatusConfirmed); err != nil {
				return false, err
			}
		default:
			if b.PaymentRef == paymentRef {
				return false, nil
			}
			return false, fmt.Errorf("%w: payment already settled for a %s booking", domain.ErrInvariantViolation, b.Status)
		}
		b.LastError = ""
		received = true
		return true, nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.RecordPayment", err, "bookingID", bookingID)
		return nil, err
	}

	if received {
		s.emit(ctx, domain.EventPaymentReceived, b, "", "", b.RenterID, b.OwnerID)
		if b.Status == domain.BookingStatusConfirmed {
			s.emit(ctx, domain.EventBookingConfirmed, b, "", "", b.RenterID, b.OwnerID)
		}
	}
	logger.ExitMethod("bookingService.RecordPayment", "bookingID", b.ID, "status", b.Status)
	return b, nil
}

func (s *bookingService) RecordPaymentFailure(ctx context.Context, bookingID, reason string) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.RecordPaymentFailure", "bookingID", bookingID, "reason", reason)

	// Only the owner's acceptance creates payment_required. A failure before
	// that leaves the booking pending for the owner to decide.
	b, err := s.withBooking(ctx, bookingID, "payment failure", func(b *domain.Booking) (bool, error) {
		switch b.Status {
		case domain.BookingStatusPending, domain.BookingStatusPaymentRequired:
		default:
			return false, fmt.Errorf("%w: payment cannot fail on a %s booking", domain.ErrInvariantViolation, b.Status)
		}
		b.PaymentRef = ""
		b.LastError = "payment failed"
		if reason != "" {
			b.LastError += ": " + reason
		}
		return true, nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.RecordPaymentFailure", err, "bookingID", bookingID)
		return nil, err
	}

	s.emit(ctx, domain.EventPaymentFailed, b, "", reason, b.RenterID)
	logger.ExitMethod("bookingService.RecordPaymentFailure", "bookingID", b.ID)
	return b, nil
}

func (s *bookingService) ConfirmPickup(ctx context.Context, actorID, bookingID string) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.ConfirmPickup", "actorID", actorID, "bookingID", bookingID)

	b, err := s.withBooking(ctx, bookingID, "confirm pickup", func(b *domain.Booking) (bool, error) {
		role, err := roleOf(b, actorID)
		if err != nil {
			return false, err
		}
		if b.HasPickupConfirmation(role) {
			return false, nil
		}
		if b.Status != domain.BookingStatusConfirmed {
			return false, fmt.Errorf("%w: pickup cannot be confirmed on a %s booking", domain.ErrInvariantViolation, b.Status)
		}
		if b.ConfirmPickup(role) {
			if err := b.Transition(domain.BookingStatusInProgress); err != nil {
				return false, err
			}
			logger.Info("Pickup quorum reached", "bookingID", b.ID)
		}
		return true, nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.ConfirmPickup", err, "bookingID", bookingID)
		return nil, err
	}
	logger.ExitMethod("bookingService.ConfirmPickup", "bookingID", b.ID, "status", b.Status)
	return b, nil
}

func (s *bookingService) ConfirmReturn(ctx context.Context, actorID, bookingID string) (*domain.Booking, *domain.SettlementResult, error) {
	logger.EnterMethod("bookingService.ConfirmReturn", "actorID", actorID, "bookingID", bookingID)

	var res *domain.SettlementResult
	var completed bool
	b, err := s.withBooking(ctx, bookingID, "confirm return", func(b *domain.Booking) (bool, error) {
		role, err := roleOf(b, actorID)
		if err != nil {
			return false, err
		}
		if b.HasReturnConfirmation(role) {
			return false, nil
		}
		if b.Status != domain.BookingStatusInProgress && b.Status != domain.BookingStatusReturnPending {
			return false, fmt.Errorf("%w: return cannot be confirmed on a %s booking", domain.ErrInvariantViolation, b.Status)
		}

		quorum := b.ConfirmReturn(role)
		if b.Status == domain.BookingStatusInProgress {
			if err := b.Transition(domain.BookingStatusReturnPending); err != nil {
				return false, err
			}
		}
		// Flags are saved before settlement so a failed transfer keeps them.
		if err := s.bookingRepo.Update(ctx, b); err != nil {
			return false, err
		}
		if !quorum {
			return false, nil
		}

		res, err = s.complete(ctx, b)
		if err != nil {
			return false, err
		}
		completed = true
		return false, nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.ConfirmReturn", err, "bookingID", bookingID)
		return nil, res, err
	}

	if completed {
		s.emit(ctx, domain.EventBookingCompleted, b, "", "", b.RenterID, b.OwnerID)
	}
	logger.ExitMethod("bookingService.ConfirmReturn", "bookingID", b.ID, "status", b.Status)
	return b, res, nil
}

// CompleteBooking settles a booking that reached return quorum. It is the
// retry entry point after a failed settlement; on an already completed
// booking it retries only the steps that have not succeeded yet.
func (s *bookingService) CompleteBooking(ctx context.Context, bookingID string) (*domain.Booking, *domain.SettlementResult, error) {
	logger.EnterMethod("bookingService.CompleteBooking", "bookingID", bookingID)

	var res *domain.SettlementResult
	var completed bool
	b, err := s.withBooking(ctx, bookingID, "complete", func(b *domain.Booking) (bool, error) {
		var err error
		switch {
		case b.Status == domain.BookingStatusCompleted:
			res, err = s.settlement.Settle(ctx, b)
			return false, err
		case b.Status != domain.BookingStatusReturnPending || !b.ReturnQuorum():
			return false, fmt.Errorf("%w: a %s booking without return quorum cannot be completed", domain.ErrInvariantViolation, b.Status)
		}
		res, err = s.complete(ctx, b)
		if err != nil {
			return false, err
		}
		completed = true
		return false, nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.CompleteBooking", err, "bookingID", bookingID)
		return nil, res, err
	}

	if completed {
		s.emit(ctx, domain.EventBookingCompleted, b, "", "", b.RenterID, b.OwnerID)
	}
	logger.ExitMethod("bookingService.CompleteBooking", "bookingID", b.ID, "status", b.Status)
	return b, res, nil
}

// complete runs settlement and moves the booking to completed. On a fatal
// settlement error the booking stays in return_pending with the error
// recorded.
func (s *bookingService) complete(ctx context.Context, b *domain.Booking) (*domain.SettlementResult, error) {
	res, err := s.settlement.Settle(ctx, b)
	if err != nil {
		b.LastError = err.Error()
		if uerr := s.bookingRepo.Update(ctx, b); uerr != nil {
			logger.Warn("Failed to record settlement error", "bookingID", b.ID, "error", uerr)
		}
		return res, err
	}

	if err := b.Transition(domain.BookingStatusCompleted); err != nil {
		return res, err
	}
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return res, err
	}
	logger.Info("Booking completed", "bookingID", b.ID, "transferID", res.TransferID, "depositStatus", b.DepositStatus)
	return res, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, actorID, bookingID, reason string) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.CancelBooking", "actorID", actorID, "bookingID", bookingID)

	// Dates are released and the cancellation saved before any money moves.
	var cancelled bool
	b, err := s.withBooking(ctx, bookingID, "cancel", func(b *domain.Booking) (bool, error) {
		role, err := roleOf(b, actorID)
		if err != nil {
			return false, err
		}
		if b.Status == domain.BookingStatusCancelled {
			return false, nil
		}
		if !b.Status.CanTransitionTo(domain.BookingStatusCancelled) {
			return false, b.Transition(domain.BookingStatusCancelled)
		}

		quote := s.policy.Quote(b, role, s.settings.Now())
		if err := s.availability.Release(ctx, b.ID); err != nil {
			return false, err
		}
		if err := b.Transition(domain.BookingStatusCancelled); err != nil {
			return false, err
		}
		b.CancelledBy = actorID
		b.CancelReason = reason
		b.CancellationFeeCents = quote.FeeCents
		if b.PaymentRef != "" && b.RefundRef == nil {
			b.CancellationRefundCents = quote.RefundCents
		}
		cancelled = true
		return true, nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.CancelBooking", err, "bookingID", bookingID)
		return nil, err
	}

	if cancelled {
		if b.CancellationFeeCents > 0 {
			recordTransaction(ctx, s.ledgerRepo, &domain.LedgerTransaction{
				UserID:      b.OwnerID,
				BookingID:   b.ID,
				Amount:      b.CancellationFeeCents,
				Type:        domain.TransactionTypeCancellationFee,
				Description: "Late cancellation fee",
			})
		}
		if b.CancellationRefundCents > 0 {
			if refunded, err := s.RetryCancellationRefund(ctx, b.ID); err != nil {
				logger.Warn("Cancellation refund not attempted", "bookingID", b.ID, "error", err)
			} else {
				b = refunded
			}
		}
		s.emit(ctx, domain.EventBookingCancelled, b, "", reason, b.RenterID, b.OwnerID)
	}
	logger.ExitMethod("bookingService.CancelBooking", "bookingID", b.ID, "fee", b.CancellationFeeCents)
	return b, nil
}

func (s *bookingService) RetryCancellationRefund(ctx context.Context, bookingID string) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.RetryCancellationRefund", "bookingID", bookingID)

	b, err := s.withBooking(ctx, bookingID, "cancellation refund", func(b *domain.Booking) (bool, error) {
		if b.Status != domain.BookingStatusCancelled {
			return false, fmt.Errorf("%w: booking is %s, not cancelled", domain.ErrInvariantViolation, b.Status)
		}
		if b.RefundRef != nil || b.CancellationRefundCents <= 0 || b.PaymentRef == "" {
			return false, nil
		}
		s.refundCancellation(ctx, b)
		return true, nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.RetryCancellationRefund", err, "bookingID", bookingID)
		return nil, err
	}
	logger.ExitMethod("bookingService.RetryCancellationRefund", "bookingID", b.ID, "refunded", b.RefundRef != nil)
	return b, nil
}

// refundCancellation is best effort: a failure is recorded on the booking and
// left for RetryCancellationRefund.
func (s *bookingService) refundCancellation(ctx context.Context, b *domain.Booking) {
	amount := b.CancellationRefundCents
	logger.ExternalServiceCall("payment", "CreateRefund", "bookingID", b.ID, "amount", amount)
	refundID, err := s.gateway.CreateRefund(ctx, payment.RefundRequest{
		PaymentRef:     b.PaymentRef,
		AmountCents:    amount,
		BookingID:      b.ID,
		Reason:         "cancellation",
		IdempotencyKey: payment.CancellationRefundKey(b.ID),
	})
	logger.ExternalServiceResult("payment", "CreateRefund", err, "bookingID", b.ID)
	if err != nil {
		refundErr := &domain.BookingError{BookingID: b.ID, Step: "cancellation refund", Kind: domain.ErrRefundFailed, Cause: err}
		logger.Warn("Cancellation refund failed", "bookingID", b.ID, "error", refundErr)
		b.LastError = refundErr.Error()
		if b.DepositCents > 0 {
			b.DepositStatus = domain.DepositStatusHeldRefundFailed
		}
		return
	}

	b.RefundRef = &refundID
	b.LastError = ""
	if b.DepositCents > 0 {
		b.DepositStatus = domain.DepositStatusRefunded
	}
	recordTransaction(ctx, s.ledgerRepo, &domain.LedgerTransaction{
		UserID:      b.RenterID,
		BookingID:   b.ID,
		Amount:      amount,
		Type:        domain.TransactionTypeCancellationRefund,
		ExternalRef: refundID,
		Description: "Cancellation refund",
	})
}

// ReportIssue flags the booking so settlement keeps the deposit held.
func (s *bookingService) ReportIssue(ctx context.Context, actorID, bookingID, note string) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.ReportIssue", "actorID", actorID, "bookingID", bookingID)

	b, err := s.withBooking(ctx, bookingID, "report issue", func(b *domain.Booking) (bool, error) {
		if _, err := roleOf(b, actorID); err != nil {
			return false, err
		}
		if b.Status == domain.BookingStatusCancelled {
			return false, fmt.Errorf("%w: issues cannot be reported on a cancelled booking", domain.ErrInvariantViolation)
		}
		b.HasIssues = true
		b.IssueNote = appendNote(b.IssueNote, note)
		return true, nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.ReportIssue", err, "bookingID", bookingID)
		return nil, err
	}
	logger.ExitMethod("bookingService.ReportIssue", "bookingID", b.ID)
	return b, nil
}

// OpenDispute freezes the booking. Resolution happens outside this service.
func (s *bookingService) OpenDispute(ctx context.Context, actorID, bookingID, reason string) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.OpenDispute", "actorID", actorID, "bookingID", bookingID)

	b, err := s.withBooking(ctx, bookingID, "dispute", func(b *domain.Booking) (bool, error) {
		if _, err := roleOf(b, actorID); err != nil {
			return false, err
		}
		if err := b.Transition(domain.BookingStatusDisputed); err != nil {
			return false, err
		}
		b.HasIssues = true
		b.IssueNote = appendNote(b.IssueNote, reason)
		return true, nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.OpenDispute", err, "bookingID", bookingID)
		return nil, err
	}
	logger.Warn("Booking disputed", "bookingID", b.ID, "actorID", actorID)
	logger.ExitMethod("bookingService.OpenDispute", "bookingID", b.ID)
	return b, nil
}

func (s *bookingService) GetBooking(ctx context.Context, userID, bookingID string) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if _, err := roleOf(b, userID); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *bookingService) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error) {
	if filter.UserID == "" {
		return nil, 0, domain.NewValidationError("user id is required")
	}
	if filter.Role != "" && filter.Role != domain.RoleRenter && filter.Role != domain.RoleOwner {
		return nil, 0, domain.NewValidationError(fmt.Sprintf("unknown role %q", filter.Role))
	}
	return s.bookingRepo.List(ctx, filter)
}

func (s *bookingService) Quote(ctx context.Context, listingID string, start, end time.Time, includeInsurance bool, creditCents int64) (*domain.PricingBreakdown, error) {
	problems := utils.ValidateDateRange(start, end, s.settings.Now(), s.settings.MaxFutureDays)
	if creditCents < 0 {
		problems = append(problems, "credit cannot be negative")
	}
	if len(problems) > 0 {
		return nil, domain.NewValidationError(problems...)
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	p, err := utils.CalculateBookingPricing(listing.DailyRateCents, utils.CalculateDuration(start, end), includeInsurance, listing.SecurityDepositCents, s.settings.Rates)
	if err != nil {
		return nil, err
	}
	p = utils.ApplyCredit(p, creditCents, s.settings.Rates.MaxCreditPercent)
	return &p, nil
}

// withBooking runs fn on the freshly loaded booking while holding its lock.
// fn returns true when the booking should be saved afterwards; it may also
// save on its own and return false.
func (s *bookingService) withBooking(ctx context.Context, bookingID, step string, fn func(b *domain.Booking) (bool, error)) (*domain.Booking, error) {
	release, err := s.locker.Acquire(ctx, lock.BookingKey(bookingID))
	if err != nil {
		return nil, wrapBookingError(bookingID, step, err)
	}
	defer release()

	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, wrapBookingError(bookingID, step, err)
	}
	save, err := fn(b)
	if err != nil {
		return nil, wrapBookingError(bookingID, step, err)
	}
	if save {
		if err := s.bookingRepo.Update(ctx, b); err != nil {
			return nil, wrapBookingError(bookingID, step, err)
		}
	}
	return b, nil
}

// emit dispatches an event. An empty title is looked up from the listing.
func (s *bookingService) emit(ctx context.Context, t domain.EventType, b *domain.Booking, title, reason string, recipients ...string) {
	if title == "" {
		if listing, err := s.listingRepo.GetByID(ctx, b.ListingID); err == nil {
			title = listing.Title
		} else {
			logger.Warn("Listing lookup for event failed", "listingID", b.ListingID, "error", err)
		}
	}
	event := domain.NewBookingEvent(t, b, title, recipients...)
	event.Reason = reason
	s.dispatcher.Dispatch(ctx, event)
}

func roleOf(b *domain.Booking, userID string) (domain.PartyRole, error) {
	role, ok := b.RoleOf(userID)
	if !ok {
		return "", fmt.Errorf("%w: user is not a party to booking %s", domain.ErrUnauthorized, b.ID)
	}
	return role, nil
}

// wrapBookingError attaches booking context to err unless it already has it.
// Validation errors pass through untouched.
func wrapBookingError(bookingID, step string, err error) error {
	var be *domain.BookingError
	var ve *domain.ValidationError
	if errors.As(err, &be) || errors.As(err, &ve) {
		return err
	}
	kind := domain.ErrDependency
	for _, k := range []error{domain.ErrConflict, domain.ErrNotFound, domain.ErrUnauthorized, domain.ErrInvariantViolation, domain.ErrValidation} {
		if errors.Is(err, k) {
			kind = k
			break
		}
	}
	return &domain.BookingError{BookingID: bookingID, Step: step, Kind: kind, Cause: err}
}

func appendNote(existing, note string) string {
	switch {
	case note == "":
		return existing
	case existing == "":
		return note
	}
	return existing + "\n" + note
}
