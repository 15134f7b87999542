package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/repository"
	"rentshare-backend/internal/utils"

	"github.com/lib/pq"
)

type availabilityRepository struct {
	db *sql.DB
}

func NewAvailabilityRepository(db *sql.DB) repository.AvailabilityRepository {
	return &availabilityRepository{db: db}
}

func (r *availabilityRepository) ListByListing(ctx context.Context, listingID string, start, end time.Time) ([]domain.AvailabilityBlock, error) {
	query := `SELECT listing_id, block_date, status, booking_id FROM availability_blocks
	          WHERE listing_id = $1 AND block_date BETWEEN $2 AND $3 ORDER BY block_date`
	rows, err := r.db.QueryContext(ctx, query, listingID, utils.DateOnly(start), utils.DateOnly(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []domain.AvailabilityBlock
	for rows.Next() {
		var b domain.AvailabilityBlock
		if err := rows.Scan(&b.ListingID, &b.Date, &b.Status, &b.BookingID); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// Reserve relies on the (listing_id, block_date) primary key: the upsert only
// overwrites a row that is still available or already belongs to the same
// booking, so a concurrent reservation of any date leaves zero rows affected.
func (r *availabilityRepository) Reserve(ctx context.Context, blocks []domain.AvailabilityBlock) error {
	if len(blocks) == 0 {
		return nil
	}
	logger.EnterMethod("availabilityRepository.Reserve", "listingID", blocks[0].ListingID, "days", len(blocks))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO availability_blocks (listing_id, block_date, status, booking_id, updated_on)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (listing_id, block_date) DO UPDATE
	          SET status = EXCLUDED.status, booking_id = EXCLUDED.booking_id, updated_on = EXCLUDED.updated_on
	          WHERE availability_blocks.status = 'available' OR availability_blocks.booking_id = EXCLUDED.booking_id`
	now := time.Now().UTC()
	for _, b := range blocks {
		res, err := tx.ExecContext(ctx, query, b.ListingID, utils.DateOnly(b.Date), b.Status, b.BookingID, now)
		if err != nil {
			logger.ExitMethodWithError("availabilityRepository.Reserve", err, "date", utils.FormatDate(b.Date))
			return translateError(err, "reserve "+utils.FormatDate(b.Date))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			err := fmt.Errorf("listing %s is not available on %s: %w", b.ListingID, utils.FormatDate(b.Date), domain.ErrConflict)
			logger.ExitMethodWithError("availabilityRepository.Reserve", err)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.ExitMethod("availabilityRepository.Reserve", "listingID", blocks[0].ListingID)
	return nil
}

func (r *availabilityRepository) ReleaseByBooking(ctx context.Context, bookingID string) (int64, error) {
	logger.DatabaseCall("DELETE", "availability_blocks", "bookingID", bookingID)
	res, err := r.db.ExecContext(ctx, `DELETE FROM availability_blocks WHERE booking_id = $1`, bookingID)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err, "bookingID", bookingID)
		return 0, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("DELETE", n, err, "bookingID", bookingID)
	return n, err
}

func (r *availabilityRepository) UpdateStatusByBooking(ctx context.Context, bookingID string, status domain.BlockStatus) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE availability_blocks SET status = $1, updated_on = $2 WHERE booking_id = $3`,
		status, time.Now().UTC(), bookingID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *availabilityRepository) SetBlocks(ctx context.Context, listingID string, dates []time.Time, status domain.BlockStatus) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO availability_blocks (listing_id, block_date, status, booking_id, updated_on)
	          VALUES ($1, $2, $3, NULL, $4)
	          ON CONFLICT (listing_id, block_date) DO UPDATE
	          SET status = EXCLUDED.status, updated_on = EXCLUDED.updated_on
	          WHERE availability_blocks.booking_id IS NULL`
	now := time.Now().UTC()
	for _, d := range dates {
		res, err := tx.ExecContext(ctx, query, listingID, utils.DateOnly(d), status, now)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%s is held by a booking: %w", utils.FormatDate(d), domain.ErrConflict)
		}
	}
	return tx.Commit()
}

func (r *availabilityRepository) DeleteBlocks(ctx context.Context, listingID string, dates []time.Time) (int64, error) {
	days := make([]string, 0, len(dates))
	for _, d := range dates {
		days = append(days, utils.FormatDate(d))
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM availability_blocks WHERE listing_id = $1 AND block_date = ANY($2::date[]) AND booking_id IS NULL`,
		listingID, pq.Array(days))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
