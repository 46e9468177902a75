package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/flight"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/transaction"
	kafkainfra "github.com/sanosuguru/go-airline-seat-reservation/internal/infrastructure/kafka"
)

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockSeatRepository implements seat.Repository
type MockSeatRepository struct {
	mock.Mock
}

func (m *MockSeatRepository) CreateBulk(ctx context.Context, seats []*seat.Seat) error {
	args := m.Called(ctx, seats)
	return args.Error(0)
}

func (m *MockSeatRepository) GetByID(ctx context.Context, id string) (*seat.Seat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func (m *MockSeatRepository) GetByAirplaneID(ctx context.Context, airplaneID string) ([]*seat.Seat, error) {
	args := m.Called(ctx, airplaneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

func (m *MockSeatRepository) CountFreeByAirplaneID(ctx context.Context, airplaneID string) (int, error) {
	args := m.Called(ctx, airplaneID)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatRepository) TryHold(ctx context.Context, seatID, userID string, ttl time.Duration) (*seat.Seat, error) {
	args := m.Called(ctx, seatID, userID, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func (m *MockSeatRepository) PromoteToBooked(ctx context.Context, tx transaction.Tx, seatID, userID string) error {
	args := m.Called(ctx, tx, seatID, userID)
	return args.Error(0)
}

func (m *MockSeatRepository) BookFree(ctx context.Context, tx transaction.Tx, seatID string) error {
	args := m.Called(ctx, tx, seatID)
	return args.Error(0)
}

func (m *MockSeatRepository) Release(ctx context.Context, tx transaction.Tx, seatIDs []string) error {
	args := m.Called(ctx, tx, seatIDs)
	return args.Error(0)
}

func (m *MockSeatRepository) ReleaseHeldBy(ctx context.Context, seatID, userID string) error {
	args := m.Called(ctx, seatID, userID)
	return args.Error(0)
}

func (m *MockSeatRepository) ReleaseExpiredHolds(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockBookingRepository implements booking.Repository
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	args := m.Called(ctx, tx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*booking.Booking, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByTicketID(ctx context.Context, ticketID string) (*booking.Booking, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByPNR(ctx context.Context, pnr string) (*booking.Booking, error) {
	args := m.Called(ctx, pnr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) ExistsPNR(ctx context.Context, pnr string) (bool, error) {
	args := m.Called(ctx, pnr)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) Update(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	args := m.Called(ctx, tx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) AddPayment(ctx context.Context, tx transaction.Tx, p *booking.Payment) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockBookingRepository) GetExpiredPendingIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBookingRepository) CountPending(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockFlightRepository implements flight.Repository
type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) CreateFlight(ctx context.Context, f *flight.Flight) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFlightRepository) GetFlightByID(ctx context.Context, id string) (*flight.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flight.Flight), args.Error(1)
}

func (m *MockFlightRepository) ListFlights(ctx context.Context, limit, offset int) ([]*flight.Flight, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*flight.Flight), args.Error(1)
}

func (m *MockFlightRepository) CreateAirplane(ctx context.Context, a *flight.Airplane) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockFlightRepository) GetAirplaneByID(ctx context.Context, id string) (*flight.Airplane, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flight.Airplane), args.Error(1)
}

// MockEventPublisher implements EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event kafkainfra.BookingEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
