package repository

import (
	"context"
	"time"

	"rentshare-backend/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	// Update persists booking only if the stored version still equals
	// booking.Version, then increments it. A stale write returns domain.ErrConflict.
	Update(ctx context.Context, booking *domain.Booking) error
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error)

	// Bookings with return quorum still waiting for a successful settlement.
	ListAwaitingSettlement(ctx context.Context, limit int32) ([]domain.Booking, error)
	// Completed bookings whose deposit refund failed.
	ListRefundRetry(ctx context.Context, limit int32) ([]domain.Booking, error)
	// Cancelled bookings still owed a cancellation refund.
	ListCancellationRefundRetry(ctx context.Context, limit int32) ([]domain.Booking, error)
}

type AvailabilityRepository interface {
	ListByListing(ctx context.Context, listingID string, start, end time.Time) ([]domain.AvailabilityBlock, error)
	// Reserve writes every block atomically. Any date already held by a
	// non-available block fails the whole reservation with domain.ErrConflict.
	Reserve(ctx context.Context, blocks []domain.AvailabilityBlock) error
	ReleaseByBooking(ctx context.Context, bookingID string) (int64, error)
	UpdateStatusByBooking(ctx context.Context, bookingID string, status domain.BlockStatus) (int64, error)
	// SetBlocks upserts owner-managed blocks without a booking.
	SetBlocks(ctx context.Context, listingID string, dates []time.Time, status domain.BlockStatus) error
	// DeleteBlocks removes owner-managed blocks; booking blocks are left alone.
	DeleteBlocks(ctx context.Context, listingID string, dates []time.Time) (int64, error)
}

type ListingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
}

type PayeeAccountRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.PayeeAccount, error)
	Upsert(ctx context.Context, account *domain.PayeeAccount) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.User, error)
}

type LedgerRepository interface {
	CreateTransaction(ctx context.Context, tx *domain.LedgerTransaction) error
	ListByBooking(ctx context.Context, bookingID string) ([]domain.LedgerTransaction, error)
	ListTransactions(ctx context.Context, userID string, page, pageSize int32) ([]domain.LedgerTransaction, int32, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID string, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id int64, userID string) error
}
