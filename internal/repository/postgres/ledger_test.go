package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewLedgerRepository(db)
	ctx := context.Background()

	t.Run("Create assigns id", func(t *testing.T) {
		tx := &domain.LedgerTransaction{UserID: "owner-1", BookingID: "b-1", Amount: 16000, Type: domain.TransactionTypeOwnerEarning, ExternalRef: "tr_1"}
		mock.ExpectExec("INSERT INTO ledger_transactions").
			WithArgs(sqlmock.AnyArg(), "owner-1", "b-1", int64(16000), domain.TransactionTypeOwnerEarning, "tr_1", "", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.CreateTransaction(ctx, tx))
		assert.NotEmpty(t, tx.ID)
		assert.False(t, tx.CreatedOn.IsZero())
	})

	t.Run("Duplicate entry", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO ledger_transactions").WillReturnError(&pq.Error{Code: "23505"})
		err := repo.CreateTransaction(ctx, &domain.LedgerTransaction{BookingID: "b-1"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("List by user", func(t *testing.T) {
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM ledger_transactions").WithArgs("owner-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("FROM ledger_transactions WHERE user_id = \\$1 ORDER BY").WithArgs("owner-1", int32(20), int32(0)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "booking_id", "amount", "type", "external_ref", "description", "created_on"}).
				AddRow("tx-1", "owner-1", "b-1", 16000, "OWNER_EARNING", "tr_1", "earning", time.Now()))

		txs, count, err := repo.ListTransactions(ctx, "owner-1", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, int32(1), count)
		require.Len(t, txs, 1)
		assert.Equal(t, domain.TransactionTypeOwnerEarning, txs[0].Type)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingAndPayeeRepositories(t *testing.T) {
	db, mock := newMock(t)
	ctx := context.Background()

	t.Run("Listing", func(t *testing.T) {
		repo := postgres.NewListingRepository(db)
		mock.ExpectQuery("FROM listings WHERE id = \\$1").WithArgs("listing-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "title", "daily_rate_cents", "security_deposit_cents", "instant_book", "active"}).
				AddRow("listing-1", "owner-1", "Camera", 5000, 10000, false, true))

		l, err := repo.GetByID(ctx, "listing-1")
		require.NoError(t, err)
		assert.Equal(t, int64(5000), l.DailyRateCents)
		assert.True(t, l.Active)
	})

	t.Run("Payee missing", func(t *testing.T) {
		repo := postgres.NewPayeeAccountRepository(db)
		mock.ExpectQuery("FROM payee_accounts WHERE user_id = \\$1").WithArgs("owner-1").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByUserID(ctx, "owner-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Users by ids", func(t *testing.T) {
		repo := postgres.NewUserRepository(db)
		mock.ExpectQuery("FROM users WHERE id = ANY\\(\\$1\\)").WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "push_token"}).
				AddRow("renter-1", "r@example.com", "Renter", "tok").
				AddRow("owner-1", "o@example.com", "Owner", ""))

		users, err := repo.GetByIDs(ctx, []string{"renter-1", "owner-1"})
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewNotificationRepository(db)
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		n := &domain.Notification{UserID: "owner-1", BookingID: "b-1", Title: "New booking request", Attributes: map[string]string{"type": "booking_request"}}
		mock.ExpectQuery("INSERT INTO notifications").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

		require.NoError(t, repo.Create(ctx, n))
		assert.Equal(t, int64(7), n.ID)
	})

	t.Run("Mark read of someone else's", func(t *testing.T) {
		mock.ExpectExec("UPDATE notifications SET is_read = TRUE").WithArgs(int64(7), "renter-1").WillReturnResult(sqlmock.NewResult(0, 0))
		err := repo.MarkAsRead(ctx, 7, "renter-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
