package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/repository"
)

type payeeAccountRepository struct {
	db *sql.DB
}

func NewPayeeAccountRepository(db *sql.DB) repository.PayeeAccountRepository {
	return &payeeAccountRepository{db: db}
}

func (r *payeeAccountRepository) GetByUserID(ctx context.Context, userID string) (*domain.PayeeAccount, error) {
	a := &domain.PayeeAccount{}
	err := r.db.QueryRowContext(ctx, `SELECT user_id, account_id FROM payee_accounts WHERE user_id = $1`, userID).Scan(&a.UserID, &a.AccountID)
	if err != nil {
		return nil, translateError(err, "payee account for "+userID)
	}
	return a, nil
}

func (r *payeeAccountRepository) Upsert(ctx context.Context, a *domain.PayeeAccount) error {
	query := `INSERT INTO payee_accounts (user_id, account_id, updated_on) VALUES ($1, $2, $3)
	          ON CONFLICT (user_id) DO UPDATE SET account_id = EXCLUDED.account_id, updated_on = EXCLUDED.updated_on`
	_, err := r.db.ExecContext(ctx, query, a.UserID, a.AccountID, time.Now().UTC())
	return err
}
