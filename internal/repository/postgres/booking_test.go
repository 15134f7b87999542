package postgres_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingColumnNames = []string{
	"id", "listing_id", "renter_id", "owner_id", "start_date", "end_date", "number_of_days",
	"daily_rate_cents", "subtotal_cents", "service_fee_cents", "insurance_fee_cents", "deposit_cents", "credit_cents", "total_cents", "commission_rate",
	"status", "pickup_confirmed_by_renter", "pickup_confirmed_by_owner", "return_confirmed_by_renter", "return_confirmed_by_owner",
	"payment_ref", "transfer_ref", "refund_ref", "payout_ref", "deposit_status",
	"has_issues", "issue_note", "cancellation_fee_cents", "cancellation_refund_cents", "cancelled_by", "cancel_reason", "last_error",
	"version", "created_on", "updated_on",
}

func addBookingRow(rows *sqlmock.Rows, id string, status domain.BookingStatus, transferRef interface{}) *sqlmock.Rows {
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	return rows.AddRow(id, "listing-1", "renter-1", "owner-1", start, start.AddDate(0, 0, 3), 4,
		5000, 20000, 3000, 2000, 10000, 0, 35000, 0.2,
		string(status), true, true, false, false,
		"pi_123", transferRef, nil, nil, "held",
		false, "", 0, 0, "", "", "",
		3, time.Now(), time.Now())
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestBookingRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		b := &domain.Booking{ID: "b-1", ListingID: "listing-1", RenterID: "r", OwnerID: "o", Status: domain.BookingStatusPending}
		mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, b))
		assert.Equal(t, int64(1), b.Version)
		assert.False(t, b.CreatedOn.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate id", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO bookings").WillReturnError(&pq.Error{Code: "23505", Constraint: "bookings_pkey"})

		err := repo.Create(ctx, &domain.Booking{ID: "b-1"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestBookingRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := addBookingRow(sqlmock.NewRows(bookingColumnNames), "b-1", domain.BookingStatusReturnPending, "tr_1")
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1").WithArgs("b-1").WillReturnRows(rows)

		b, err := repo.GetByID(ctx, "b-1")
		require.NoError(t, err)
		assert.Equal(t, "b-1", b.ID)
		assert.Equal(t, domain.BookingStatusReturnPending, b.Status)
		assert.Equal(t, 4, b.NumberOfDays)
		assert.Equal(t, int64(35000), b.TotalCents)
		assert.Equal(t, 0.2, b.CommissionRate)
		require.NotNil(t, b.TransferRef)
		assert.Equal(t, "tr_1", *b.TransferRef)
		assert.Nil(t, b.RefundRef)
		assert.Equal(t, domain.DepositStatusHeld, b.DepositStatus)
		assert.Equal(t, int64(3), b.Version)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1").WithArgs("missing").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func updateArgs(id string, version int64) []driver.Value {
	args := make([]driver.Value, 20)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	args[18] = id
	args[19] = version
	return args
}

func TestBookingRepository_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	t.Run("Success increments version", func(t *testing.T) {
		b := &domain.Booking{ID: "b-1", Status: domain.BookingStatusConfirmed, Version: 3}
		mock.ExpectExec("UPDATE bookings SET").WithArgs(updateArgs("b-1", 3)...).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(ctx, b))
		assert.Equal(t, int64(4), b.Version)
	})

	t.Run("Stale version", func(t *testing.T) {
		b := &domain.Booking{ID: "b-1", Status: domain.BookingStatusConfirmed, Version: 3}
		mock.ExpectExec("UPDATE bookings SET").WithArgs(updateArgs("b-1", 3)...).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, b)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, int64(3), b.Version)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_List(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	t.Run("Owner with status", func(t *testing.T) {
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM bookings WHERE owner_id = \\$1 AND status = \\$2").
			WithArgs("owner-1", domain.BookingStatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("FROM bookings WHERE owner_id = \\$1 AND status = \\$2 ORDER BY created_on DESC LIMIT \\$3 OFFSET \\$4").
			WithArgs("owner-1", domain.BookingStatusPending, int32(20), int32(0)).
			WillReturnRows(addBookingRow(sqlmock.NewRows(bookingColumnNames), "b-1", domain.BookingStatusPending, nil))

		bookings, count, err := repo.List(ctx, domain.BookingFilter{UserID: "owner-1", Role: domain.RoleOwner, Status: domain.BookingStatusPending})
		require.NoError(t, err)
		assert.Equal(t, int32(1), count)
		require.Len(t, bookings, 1)
		assert.Nil(t, bookings[0].TransferRef)
	})

	t.Run("Either side", func(t *testing.T) {
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM bookings WHERE \\(renter_id = \\$1 OR owner_id = \\$1\\)").
			WithArgs("u-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("LIMIT \\$2 OFFSET \\$3").
			WithArgs("u-1", int32(10), int32(10)).
			WillReturnRows(sqlmock.NewRows(bookingColumnNames))

		bookings, count, err := repo.List(ctx, domain.BookingFilter{UserID: "u-1", Page: 2, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int32(0), count)
		assert.Empty(t, bookings)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_RetryQueries(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("return_confirmed_by_renter AND return_confirmed_by_owner").
		WithArgs(domain.BookingStatusReturnPending, int32(50)).
		WillReturnRows(addBookingRow(sqlmock.NewRows(bookingColumnNames), "b-1", domain.BookingStatusReturnPending, nil))
	awaiting, err := repo.ListAwaitingSettlement(ctx, 50)
	require.NoError(t, err)
	assert.Len(t, awaiting, 1)

	mock.ExpectQuery("deposit_status = \\$2 AND NOT has_issues").
		WithArgs(domain.BookingStatusCompleted, domain.DepositStatusHeldRefundFailed, int32(50)).
		WillReturnRows(sqlmock.NewRows(bookingColumnNames))
	retry, err := repo.ListRefundRetry(ctx, 50)
	require.NoError(t, err)
	assert.Empty(t, retry)

	mock.ExpectQuery("cancellation_refund_cents > 0 AND refund_ref IS NULL").
		WithArgs(domain.BookingStatusCancelled, int32(50)).
		WillReturnRows(addBookingRow(sqlmock.NewRows(bookingColumnNames), "b-2", domain.BookingStatusCancelled, nil))
	owed, err := repo.ListCancellationRefundRetry(ctx, 50)
	require.NoError(t, err)
	require.Len(t, owed, 1)
	assert.Equal(t, "b-2", owed[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
