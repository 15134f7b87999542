package service_test

import (
	"context"
	"sync"
	"time"

	"rentshare-backend/internal/domain"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBookingRepo) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}

func (m *MockBookingRepo) ListAwaitingSettlement(ctx context.Context, limit int32) ([]domain.Booking, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) ListRefundRetry(ctx context.Context, limit int32) ([]domain.Booking, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) ListCancellationRefundRetry(ctx context.Context, limit int32) ([]domain.Booking, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockAvailabilityRepo struct {
	mock.Mock
}

func (m *MockAvailabilityRepo) ListByListing(ctx context.Context, listingID string, start, end time.Time) ([]domain.AvailabilityBlock, error) {
	args := m.Called(ctx, listingID, start, end)
	return args.Get(0).([]domain.AvailabilityBlock), args.Error(1)
}

func (m *MockAvailabilityRepo) Reserve(ctx context.Context, blocks []domain.AvailabilityBlock) error {
	return m.Called(ctx, blocks).Error(0)
}

func (m *MockAvailabilityRepo) ReleaseByBooking(ctx context.Context, bookingID string) (int64, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAvailabilityRepo) UpdateStatusByBooking(ctx context.Context, bookingID string, status domain.BlockStatus) (int64, error) {
	args := m.Called(ctx, bookingID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAvailabilityRepo) SetBlocks(ctx context.Context, listingID string, dates []time.Time, status domain.BlockStatus) error {
	return m.Called(ctx, listingID, dates, status).Error(0)
}

func (m *MockAvailabilityRepo) DeleteBlocks(ctx context.Context, listingID string, dates []time.Time) (int64, error) {
	args := m.Called(ctx, listingID, dates)
	return args.Get(0).(int64), args.Error(1)
}

type MockListingRepo struct {
	mock.Mock
}

func (m *MockListingRepo) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

type MockPayeeRepo struct {
	mock.Mock
}

func (m *MockPayeeRepo) GetByUserID(ctx context.Context, userID string) (*domain.PayeeAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayeeAccount), args.Error(1)
}

func (m *MockPayeeRepo) Upsert(ctx context.Context, account *domain.PayeeAccount) error {
	return m.Called(ctx, account).Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.User), args.Error(1)
}

type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) CreateTransaction(ctx context.Context, tx *domain.LedgerTransaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockLedgerRepo) ListByBooking(ctx context.Context, bookingID string) ([]domain.LedgerTransaction, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).([]domain.LedgerTransaction), args.Error(1)
}

func (m *MockLedgerRepo) ListTransactions(ctx context.Context, userID string, page, pageSize int32) ([]domain.LedgerTransaction, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.LedgerTransaction), args.Get(1).(int32), args.Error(2)
}

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	return m.Called(ctx, note).Error(0)
}

func (m *MockNotificationRepo) List(ctx context.Context, userID string, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}

func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id int64, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

type MockAvailabilityService struct {
	mock.Mock
}

func (m *MockAvailabilityService) CheckAvailability(ctx context.Context, listingID string, start, end time.Time) (*domain.AvailabilityResult, error) {
	args := m.Called(ctx, listingID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AvailabilityResult), args.Error(1)
}

func (m *MockAvailabilityService) Reserve(ctx context.Context, b *domain.Booking, status domain.BlockStatus) error {
	return m.Called(ctx, b, status).Error(0)
}

func (m *MockAvailabilityService) Promote(ctx context.Context, bookingID string, status domain.BlockStatus) (int64, error) {
	args := m.Called(ctx, bookingID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAvailabilityService) Release(ctx context.Context, bookingID string) error {
	return m.Called(ctx, bookingID).Error(0)
}

func (m *MockAvailabilityService) BlockDates(ctx context.Context, ownerID, listingID string, dates []time.Time) error {
	return m.Called(ctx, ownerID, listingID, dates).Error(0)
}

func (m *MockAvailabilityService) UnblockDates(ctx context.Context, ownerID, listingID string, dates []time.Time) error {
	return m.Called(ctx, ownerID, listingID, dates).Error(0)
}

func (m *MockAvailabilityService) GetCalendar(ctx context.Context, listingID string, start, end time.Time) ([]domain.AvailabilityBlock, error) {
	args := m.Called(ctx, listingID, start, end)
	return args.Get(0).([]domain.AvailabilityBlock), args.Error(1)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBookingEmail(ctx context.Context, to domain.User, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

type MockPushSender struct {
	mock.Mock
}

func (m *MockPushSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	return m.Called(ctx, token, title, body, data).Error(0)
}

type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}

// recordingDispatcher keeps every dispatched event.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []domain.BookingEvent
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, event domain.BookingEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

func (d *recordingDispatcher) Types() []domain.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	types := make([]domain.EventType, len(d.events))
	for i, e := range d.events {
		types[i] = e.Type
	}
	return types
}
