package service

import (
	"context"
	"errors"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/repository"
)

type ledgerService struct {
	ledgerRepo repository.LedgerRepository
}

func NewLedgerService(ledgerRepo repository.LedgerRepository) LedgerService {
	return &ledgerService{ledgerRepo: ledgerRepo}
}

func (s *ledgerService) GetTransactions(ctx context.Context, userID string, page, pageSize int32) ([]domain.LedgerTransaction, int32, error) {
	return s.ledgerRepo.ListTransactions(ctx, userID, page, pageSize)
}

func (s *ledgerService) GetBookingTransactions(ctx context.Context, bookingID string) ([]domain.LedgerTransaction, error) {
	return s.ledgerRepo.ListByBooking(ctx, bookingID)
}

// recordTransaction writes a ledger entry after money has already moved, so
// it never fails the caller. A duplicate entry means a retried step already
// recorded it.
func recordTransaction(ctx context.Context, repo repository.LedgerRepository, tx *domain.LedgerTransaction) {
	err := repo.CreateTransaction(ctx, tx)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrConflict):
		logger.Debug("Ledger entry already recorded", "bookingID", tx.BookingID, "type", tx.Type)
	default:
		logger.Error("Failed to record ledger entry", "bookingID", tx.BookingID, "type", tx.Type, "error", err)
	}
}
