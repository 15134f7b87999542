package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/repository"
)

const bookingColumns = `id, listing_id, renter_id, owner_id, start_date, end_date, number_of_days,
	daily_rate_cents, subtotal_cents, service_fee_cents, insurance_fee_cents, deposit_cents, credit_cents, total_cents, commission_rate,
	status, pickup_confirmed_by_renter, pickup_confirmed_by_owner, return_confirmed_by_renter, return_confirmed_by_owner,
	payment_ref, transfer_ref, refund_ref, payout_ref, deposit_status,
	has_issues, issue_note, cancellation_fee_cents, cancellation_refund_cents, cancelled_by, cancel_reason, last_error,
	version, created_on, updated_on`

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(&b.ID, &b.ListingID, &b.RenterID, &b.OwnerID, &b.StartDate, &b.EndDate, &b.NumberOfDays,
		&b.DailyRateCents, &b.SubtotalCents, &b.ServiceFeeCents, &b.InsuranceFeeCents, &b.DepositCents, &b.CreditCents, &b.TotalCents, &b.CommissionRate,
		&b.Status, &b.PickupConfirmedByRenter, &b.PickupConfirmedByOwner, &b.ReturnConfirmedByRenter, &b.ReturnConfirmedByOwner,
		&b.PaymentRef, &b.TransferRef, &b.RefundRef, &b.PayoutRef, &b.DepositStatus,
		&b.HasIssues, &b.IssueNote, &b.CancellationFeeCents, &b.CancellationRefundCents, &b.CancelledBy, &b.CancelReason, &b.LastError,
		&b.Version, &b.CreatedOn, &b.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	logger.EnterMethod("bookingRepository.Create", "bookingID", b.ID, "listingID", b.ListingID)

	query := `INSERT INTO bookings (` + bookingColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
	                  $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35)`
	now := time.Now().UTC()
	b.Version = 1
	b.CreatedOn = now
	b.UpdatedOn = now

	logger.DatabaseCall("INSERT", "bookings", "bookingID", b.ID)
	_, err := r.db.ExecContext(ctx, query, b.ID, b.ListingID, b.RenterID, b.OwnerID, b.StartDate, b.EndDate, b.NumberOfDays,
		b.DailyRateCents, b.SubtotalCents, b.ServiceFeeCents, b.InsuranceFeeCents, b.DepositCents, b.CreditCents, b.TotalCents, b.CommissionRate,
		b.Status, b.PickupConfirmedByRenter, b.PickupConfirmedByOwner, b.ReturnConfirmedByRenter, b.ReturnConfirmedByOwner,
		b.PaymentRef, b.TransferRef, b.RefundRef, b.PayoutRef, b.DepositStatus,
		b.HasIssues, b.IssueNote, b.CancellationFeeCents, b.CancellationRefundCents, b.CancelledBy, b.CancelReason, b.LastError,
		b.Version, b.CreatedOn, b.UpdatedOn)
	logger.DatabaseResult("INSERT", 1, err, "bookingID", b.ID)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.Create", err, "bookingID", b.ID)
		return translateError(err, "create booking")
	}

	logger.ExitMethod("bookingRepository.Create", "bookingID", b.ID)
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, "booking "+id)
	}
	return b, nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	query := `UPDATE bookings SET status=$1,
	              pickup_confirmed_by_renter=$2, pickup_confirmed_by_owner=$3, return_confirmed_by_renter=$4, return_confirmed_by_owner=$5,
	              payment_ref=$6, transfer_ref=$7, refund_ref=$8, payout_ref=$9, deposit_status=$10,
	              has_issues=$11, issue_note=$12, cancellation_fee_cents=$13, cancellation_refund_cents=$14, cancelled_by=$15, cancel_reason=$16, last_error=$17,
	              version=version+1, updated_on=$18
	          WHERE id=$19 AND version=$20`
	now := time.Now().UTC()

	logger.DatabaseCall("UPDATE", "bookings", "bookingID", b.ID, "version", b.Version)
	result, err := r.db.ExecContext(ctx, query, b.Status,
		b.PickupConfirmedByRenter, b.PickupConfirmedByOwner, b.ReturnConfirmedByRenter, b.ReturnConfirmedByOwner,
		b.PaymentRef, b.TransferRef, b.RefundRef, b.PayoutRef, b.DepositStatus,
		b.HasIssues, b.IssueNote, b.CancellationFeeCents, b.CancellationRefundCents, b.CancelledBy, b.CancelReason, b.LastError,
		now, b.ID, b.Version)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "bookingID", b.ID)
		return translateError(err, "update booking "+b.ID)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("UPDATE", rows, nil, "bookingID", b.ID)
	if rows == 0 {
		return fmt.Errorf("booking %s was modified concurrently (version %d): %w", b.ID, b.Version, domain.ErrConflict)
	}

	b.Version++
	b.UpdatedOn = now
	return nil
}

func (r *bookingRepository) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, int32, error) {
	page, pageSize := normalizePage(f.Page, f.PageSize)
	offset := (page - 1) * pageSize

	where := ` FROM bookings WHERE `
	args := []interface{}{f.UserID}
	switch f.Role {
	case domain.RoleRenter:
		where += `renter_id = $1`
	case domain.RoleOwner:
		where += `owner_id = $1`
	default:
		where += `(renter_id = $1 OR owner_id = $1)`
	}
	argIdx := 2
	if f.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, f.Status)
		argIdx++
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*)"+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + bookingColumns + where + fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	bookings, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return bookings, count, nil
}

func (r *bookingRepository) ListAwaitingSettlement(ctx context.Context, limit int32) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE status = $1 AND return_confirmed_by_renter AND return_confirmed_by_owner
	          ORDER BY updated_on LIMIT $2`
	return r.query(ctx, query, domain.BookingStatusReturnPending, limit)
}

func (r *bookingRepository) ListRefundRetry(ctx context.Context, limit int32) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE status = $1 AND deposit_status = $2 AND NOT has_issues
	          ORDER BY updated_on LIMIT $3`
	return r.query(ctx, query, domain.BookingStatusCompleted, domain.DepositStatusHeldRefundFailed, limit)
}

func (r *bookingRepository) ListCancellationRefundRetry(ctx context.Context, limit int32) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE status = $1 AND cancellation_refund_cents > 0 AND refund_ref IS NULL
	          ORDER BY updated_on LIMIT $2`
	return r.query(ctx, query, domain.BookingStatusCancelled, limit)
}

func (r *bookingRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func normalizePage(page, pageSize int32) (int32, int32) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
