package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/lock"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/repository"
	"rentshare-backend/internal/utils"
)

type availabilityService struct {
	availRepo   repository.AvailabilityRepository
	listingRepo repository.ListingRepository
	locker      lock.Locker
}

func NewAvailabilityService(
	availRepo repository.AvailabilityRepository,
	listingRepo repository.ListingRepository,
	locker lock.Locker,
) AvailabilityService {
	return &availabilityService{
		availRepo:   availRepo,
		listingRepo: listingRepo,
		locker:      locker,
	}
}

func (s *availabilityService) CheckAvailability(ctx context.Context, listingID string, start, end time.Time) (*domain.AvailabilityResult, error) {
	if problems := checkRange(start, end); len(problems) > 0 {
		return nil, domain.NewValidationError(problems...)
	}
	blocks, err := s.availRepo.ListByListing(ctx, listingID, start, end)
	if err != nil {
		return nil, err
	}
	res := utils.CheckDateRangeAvailability(blocks, start, end)
	return &res, nil
}

func (s *availabilityService) GetCalendar(ctx context.Context, listingID string, start, end time.Time) ([]domain.AvailabilityBlock, error) {
	if problems := checkRange(start, end); len(problems) > 0 {
		return nil, domain.NewValidationError(problems...)
	}
	return s.availRepo.ListByListing(ctx, listingID, start, end)
}

func (s *availabilityService) Reserve(ctx context.Context, b *domain.Booking, status domain.BlockStatus) error {
	logger.EnterMethod("availabilityService.Reserve", "bookingID", b.ID, "listingID", b.ListingID, "status", status)

	release, err := s.locker.Acquire(ctx, lock.ListingKey(b.ListingID))
	if err != nil {
		logger.ExitMethodWithError("availabilityService.Reserve", err, "bookingID", b.ID)
		return &domain.BookingError{BookingID: b.ID, Step: "reserve dates", Kind: domain.ErrConflict, Cause: err}
	}
	defer release()

	blocks, err := s.availRepo.ListByListing(ctx, b.ListingID, b.StartDate, b.EndDate)
	if err != nil {
		logger.ExitMethodWithError("availabilityService.Reserve", err, "bookingID", b.ID)
		return &domain.BookingError{BookingID: b.ID, Step: "reserve dates", Kind: domain.ErrDependency, Cause: err}
	}

	// Dates this booking already holds are not conflicts.
	others := blocks[:0]
	for _, blk := range blocks {
		if blk.BookingID != nil && *blk.BookingID == b.ID {
			continue
		}
		others = append(others, blk)
	}
	if res := utils.CheckDateRangeAvailability(others, b.StartDate, b.EndDate); !res.Available {
		err := fmt.Errorf("dates unavailable: %s", formatDates(res.Conflicts))
		logger.ExitMethodWithError("availabilityService.Reserve", err, "bookingID", b.ID)
		return &domain.BookingError{BookingID: b.ID, Step: "reserve dates", Kind: domain.ErrConflict, Cause: err}
	}

	if err := s.availRepo.Reserve(ctx, utils.CreateBookingBlocks(b.ListingID, b.ID, b.StartDate, b.EndDate, status)); err != nil {
		kind := domain.ErrDependency
		if errors.Is(err, domain.ErrConflict) {
			kind = domain.ErrConflict
		}
		logger.ExitMethodWithError("availabilityService.Reserve", err, "bookingID", b.ID)
		return &domain.BookingError{BookingID: b.ID, Step: "reserve dates", Kind: kind, Cause: err}
	}

	logger.ExitMethod("availabilityService.Reserve", "bookingID", b.ID)
	return nil
}

func (s *availabilityService) Promote(ctx context.Context, bookingID string, status domain.BlockStatus) (int64, error) {
	n, err := s.availRepo.UpdateStatusByBooking(ctx, bookingID, status)
	if err != nil {
		return 0, &domain.BookingError{BookingID: bookingID, Step: "promote dates", Kind: domain.ErrDependency, Cause: err}
	}
	return n, nil
}

func (s *availabilityService) Release(ctx context.Context, bookingID string) error {
	n, err := s.availRepo.ReleaseByBooking(ctx, bookingID)
	if err != nil {
		return &domain.BookingError{BookingID: bookingID, Step: "release dates", Kind: domain.ErrDependency, Cause: err}
	}
	logger.Debug("Released booking dates", "bookingID", bookingID, "count", n)
	return nil
}

func (s *availabilityService) BlockDates(ctx context.Context, ownerID, listingID string, dates []time.Time) error {
	if err := s.checkOwner(ctx, ownerID, listingID, dates); err != nil {
		return err
	}
	release, err := s.locker.Acquire(ctx, lock.ListingKey(listingID))
	if err != nil {
		return err
	}
	defer release()
	return s.availRepo.SetBlocks(ctx, listingID, dates, domain.BlockStatusBlocked)
}

func (s *availabilityService) UnblockDates(ctx context.Context, ownerID, listingID string, dates []time.Time) error {
	if err := s.checkOwner(ctx, ownerID, listingID, dates); err != nil {
		return err
	}
	release, err := s.locker.Acquire(ctx, lock.ListingKey(listingID))
	if err != nil {
		return err
	}
	defer release()
	_, err = s.availRepo.DeleteBlocks(ctx, listingID, dates)
	return err
}

func (s *availabilityService) checkOwner(ctx context.Context, ownerID, listingID string, dates []time.Time) error {
	if len(dates) == 0 {
		return domain.NewValidationError("at least one date is required")
	}
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.OwnerID != ownerID {
		return fmt.Errorf("%w: only the owner can manage listing dates", domain.ErrUnauthorized)
	}
	return nil
}

func checkRange(start, end time.Time) []string {
	var problems []string
	if start.IsZero() || end.IsZero() {
		problems = append(problems, "start and end dates are required")
	} else if utils.DateOnly(end).Before(utils.DateOnly(start)) {
		problems = append(problems, "end date must be on or after start date")
	} else if utils.DateOnly(end).After(utils.DateOnly(start).AddDate(0, 0, utils.DefaultMaxDurationDays-1)) {
		problems = append(problems, fmt.Sprintf("date range cannot exceed %d days", utils.DefaultMaxDurationDays))
	}
	return problems
}

func formatDates(dates []time.Time) string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = utils.FormatDate(d)
	}
	return strings.Join(out, ", ")
}
