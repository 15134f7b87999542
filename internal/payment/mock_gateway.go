package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"rentshare-backend/internal/domain"

	"github.com/google/uuid"
)

// MockGateway is an in-memory Gateway for local runs and tests. It records
// every call and replays results for repeated idempotency keys.
type MockGateway struct {
	mu sync.Mutex

	// Accounts maps account ids to their status. Unknown accounts are
	// reported as fully onboarded with automatic payouts.
	Accounts map[string]domain.AccountStatus

	// Injected failures, consumed by the next matching call when set.
	TransferErr error
	RefundErr   error
	PayoutErr   error

	Transfers []TransferRequest
	Refunds   []RefundRequest
	Payouts   []PayoutRequest

	results map[string]string
}

func NewMockGateway() *MockGateway {
	return &MockGateway{
		Accounts: make(map[string]domain.AccountStatus),
		results:  make(map[string]string),
	}
}

func (m *MockGateway) CreateTransfer(ctx context.Context, req TransferRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.results[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		return id, nil
	}
	if err := m.TransferErr; err != nil {
		return "", err
	}
	if req.AmountCents <= 0 {
		return "", errors.New("transfer amount must be positive")
	}
	m.Transfers = append(m.Transfers, req)
	return m.remember(req.IdempotencyKey, "tr_"), nil
}

func (m *MockGateway) CreateRefund(ctx context.Context, req RefundRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.results[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		return id, nil
	}
	if err := m.RefundErr; err != nil {
		return "", err
	}
	if req.PaymentRef == "" {
		return "", errors.New("refund requires a payment reference")
	}
	m.Refunds = append(m.Refunds, req)
	return m.remember(req.IdempotencyKey, "re_"), nil
}

func (m *MockGateway) CreatePayout(ctx context.Context, req PayoutRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.results[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		return id, nil
	}
	if err := m.PayoutErr; err != nil {
		return "", err
	}
	m.Payouts = append(m.Payouts, req)
	return m.remember(req.IdempotencyKey, "po_"), nil
}

func (m *MockGateway) GetAccountStatus(ctx context.Context, accountID string) (*domain.AccountStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if accountID == "" {
		return nil, fmt.Errorf("no such account")
	}
	if s, ok := m.Accounts[accountID]; ok {
		return &s, nil
	}
	return &domain.AccountStatus{OnboardingComplete: true, PayoutSchedule: domain.PayoutScheduleAutomatic}, nil
}

func (m *MockGateway) remember(key, prefix string) string {
	id := prefix + uuid.NewString()[:8]
	if key != "" {
		m.results[key] = id
	}
	return id
}
