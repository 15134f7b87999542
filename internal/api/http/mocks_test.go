package http_test

import (
	"context"
	"time"

	"rentshare-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) booking(args mock.Arguments) (*domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) settled(args mock.Arguments) (*domain.Booking, *domain.SettlementResult, error) {
	var b *domain.Booking
	var res *domain.SettlementResult
	if args.Get(0) != nil {
		b = args.Get(0).(*domain.Booking)
	}
	if args.Get(1) != nil {
		res = args.Get(1).(*domain.SettlementResult)
	}
	return b, res, args.Error(2)
}

func (m *MockBookingService) RequestBooking(ctx context.Context, renterID string, req domain.BookingRequest) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, renterID, req))
}

func (m *MockBookingService) AcceptBooking(ctx context.Context, ownerID, bookingID string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, ownerID, bookingID))
}

func (m *MockBookingService) RecordPayment(ctx context.Context, bookingID, paymentRef string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, bookingID, paymentRef))
}

func (m *MockBookingService) RecordPaymentFailure(ctx context.Context, bookingID, reason string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, bookingID, reason))
}

func (m *MockBookingService) ConfirmPickup(ctx context.Context, actorID, bookingID string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, actorID, bookingID))
}

func (m *MockBookingService) ConfirmReturn(ctx context.Context, actorID, bookingID string) (*domain.Booking, *domain.SettlementResult, error) {
	return m.settled(m.Called(ctx, actorID, bookingID))
}

func (m *MockBookingService) CompleteBooking(ctx context.Context, bookingID string) (*domain.Booking, *domain.SettlementResult, error) {
	return m.settled(m.Called(ctx, bookingID))
}

func (m *MockBookingService) CancelBooking(ctx context.Context, actorID, bookingID, reason string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, actorID, bookingID, reason))
}

func (m *MockBookingService) RetryCancellationRefund(ctx context.Context, bookingID string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, bookingID))
}

func (m *MockBookingService) ReportIssue(ctx context.Context, actorID, bookingID, note string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, actorID, bookingID, note))
}

func (m *MockBookingService) OpenDispute(ctx context.Context, actorID, bookingID, reason string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, actorID, bookingID, reason))
}

func (m *MockBookingService) GetBooking(ctx context.Context, userID, bookingID string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, userID, bookingID))
}

func (m *MockBookingService) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}

func (m *MockBookingService) Quote(ctx context.Context, listingID string, start, end time.Time, includeInsurance bool, creditCents int64) (*domain.PricingBreakdown, error) {
	args := m.Called(ctx, listingID, start, end, includeInsurance, creditCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PricingBreakdown), args.Error(1)
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

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetTransactions(ctx context.Context, userID string, page, pageSize int32) ([]domain.LedgerTransaction, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.LedgerTransaction), args.Get(1).(int32), args.Error(2)
}

func (m *MockLedgerService) GetBookingTransactions(ctx context.Context, bookingID string) ([]domain.LedgerTransaction, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).([]domain.LedgerTransaction), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) GetNotifications(ctx context.Context, userID string, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID string, notificationID int64) error {
	return m.Called(ctx, userID, notificationID).Error(0)
}

func (m *MockNotificationService) Deliver(ctx context.Context, event domain.BookingEvent) error {
	return m.Called(ctx, event).Error(0)
}
