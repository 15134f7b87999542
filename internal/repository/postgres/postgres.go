package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/repository"

	"github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.BookingRepository
	repository.AvailabilityRepository
	repository.ListingRepository
	repository.PayeeAccountRepository
	repository.UserRepository
	repository.LedgerRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		BookingRepository:      NewBookingRepository(db),
		AvailabilityRepository: NewAvailabilityRepository(db),
		ListingRepository:      NewListingRepository(db),
		PayeeAccountRepository: NewPayeeAccountRepository(db),
		UserRepository:         NewUserRepository(db),
		LedgerRepository:       NewLedgerRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

// DB exposes the pool for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

//go:embed schema.sql
var schema string

// Migrate creates any missing tables and indexes. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

const pqUniqueViolation = "23505"

// translateError maps driver errors onto the domain error kinds.
func translateError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return fmt.Errorf("%s: %w: %s", what, domain.ErrConflict, pqErr.Constraint)
	}
	return err
}
