package postgres

import (
	"context"
	"database/sql"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/repository"
)

type listingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) repository.ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	l := &domain.Listing{}
	query := `SELECT id, owner_id, title, daily_rate_cents, security_deposit_cents, instant_book, active FROM listings WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&l.ID, &l.OwnerID, &l.Title, &l.DailyRateCents, &l.SecurityDepositCents, &l.InstantBook, &l.Active)
	if err != nil {
		return nil, translateError(err, "listing "+id)
	}
	return l, nil
}
