package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/repository"

	"github.com/google/uuid"
)

type ledgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) CreateTransaction(ctx context.Context, tx *domain.LedgerTransaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedOn.IsZero() {
		tx.CreatedOn = time.Now().UTC()
	}
	query := `INSERT INTO ledger_transactions (id, user_id, booking_id, amount, type, external_ref, description, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query, tx.ID, tx.UserID, tx.BookingID, tx.Amount, tx.Type, tx.ExternalRef, tx.Description, tx.CreatedOn)
	return translateError(err, "ledger transaction")
}

func (r *ledgerRepository) ListByBooking(ctx context.Context, bookingID string) ([]domain.LedgerTransaction, error) {
	query := `SELECT id, user_id, booking_id, amount, type, external_ref, COALESCE(description, ''), created_on
	          FROM ledger_transactions WHERE booking_id = $1 ORDER BY created_on`
	return r.query(ctx, query, bookingID)
}

func (r *ledgerRepository) ListTransactions(ctx context.Context, userID string, page, pageSize int32) ([]domain.LedgerTransaction, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	offset := (page - 1) * pageSize

	var count int32
	countQuery := `SELECT count(*) FROM ledger_transactions WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, user_id, booking_id, amount, type, external_ref, COALESCE(description, ''), created_on
	          FROM ledger_transactions WHERE user_id = $1 ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	txs, err := r.query(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	return txs, count, nil
}

func (r *ledgerRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.LedgerTransaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.LedgerTransaction
	for rows.Next() {
		var tx domain.LedgerTransaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.BookingID, &tx.Amount, &tx.Type, &tx.ExternalRef, &tx.Description, &tx.CreatedOn); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
