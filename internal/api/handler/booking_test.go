package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/application"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/actor"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/booking"
)

// MockBookingService はBookingServiceInterfaceのモック
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, input application.CreateBookingInput) (*booking.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) PayBooking(ctx context.Context, bookingID string, method booking.PaymentMethod, act actor.Actor) (*booking.Booking, error) {
	args := m.Called(ctx, bookingID, method, act)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID string, act actor.Actor) (*booking.Booking, error) {
	args := m.Called(ctx, bookingID, act)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) StaffCancelBooking(ctx context.Context, bookingID string, act actor.Actor) (*booking.Booking, error) {
	args := m.Called(ctx, bookingID, act)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) CancelTicket(ctx context.Context, ticketID string, act actor.Actor) (*booking.Booking, bool, error) {
	args := m.Called(ctx, ticketID, act)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*booking.Booking), args.Bool(1), args.Error(2)
}

func (m *MockBookingService) ReassignSeat(ctx context.Context, bookingID, ticketID, newSeatID string, act actor.Actor) (*booking.Booking, error) {
	args := m.Called(ctx, bookingID, ticketID, newSeatID, act)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) CheckInTicket(ctx context.Context, ticketID string, act actor.Actor) (*booking.Ticket, error) {
	args := m.Called(ctx, ticketID, act)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Ticket), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, bookingID string, act actor.Actor) (*booking.Booking, error) {
	args := m.Called(ctx, bookingID, act)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) GetUserBookings(ctx context.Context, act actor.Actor, limit, offset int) ([]*booking.Booking, error) {
	args := m.Called(ctx, act, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingService) SearchByPNR(ctx context.Context, code string, act actor.Actor) (*booking.Booking, error) {
	args := m.Called(ctx, code, act)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func testBooking() *booking.Booking {
	return &booking.Booking{
		ID: "booking-1", UserID: "user-1", FlightID: "flight-1",
		Status: booking.StatusPendingPayment, PNR: "A3K9PQ",
		ExpiresAt: time.Now().Add(10 * time.Minute),
		Tickets: []*booking.Ticket{
			{ID: "ticket-1", SeatID: "seat-1", TicketNumber: "TK00000001", Status: booking.TicketStatusActive},
		},
	}
}

func TestBookingHandler_Create(t *testing.T) {
	e := NewTestEcho()

	t.Run("予約を作成できる", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("CreateBooking", mock.Anything, mock.MatchedBy(func(input application.CreateBookingInput) bool {
			return input.FlightID == "flight-1" && len(input.SeatIDs) == 1 && input.Actor.UserID == "user-1"
		})).Return(testBooking(), nil)

		handler := NewBookingHandler(mockService)

		body := `{"flight_id":"flight-1","seat_ids":["seat-1"],"passenger_first_name":"Taro","passenger_last_name":"Yamada"}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(headerUserID, "user-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp BookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "A3K9PQ", resp.PNR)
		assert.Equal(t, "pending_payment", resp.Status)

		mockService.AssertExpectations(t)
	})

	t.Run("座席指定なしは400", func(t *testing.T) {
		handler := NewBookingHandler(new(MockBookingService))

		body := `{"flight_id":"flight-1","seat_ids":[],"passenger_first_name":"Taro","passenger_last_name":"Yamada"}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(headerUserID, "user-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("ホールドが無効なら409", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("CreateBooking", mock.Anything, mock.Anything).Return(nil, booking.ErrSeatNotHeldByUser)

		handler := NewBookingHandler(mockService)

		body := `{"flight_id":"flight-1","seat_ids":["seat-1"],"passenger_first_name":"Taro","passenger_last_name":"Yamada"}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(headerUserID, "user-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, he.Code)
		body2, ok := he.Message.(ErrorResponse)
		require.True(t, ok)
		assert.Equal(t, "SEAT_NOT_HELD_BY_USER", body2.Code)
	})
}

func TestBookingHandler_Pay(t *testing.T) {
	e := NewTestEcho()

	t.Run("支払いで予約が確定する", func(t *testing.T) {
		mockService := new(MockBookingService)
		confirmed := testBooking()
		confirmed.Status = booking.StatusConfirmed
		mockService.On("PayBooking", mock.Anything, "booking-1", booking.PaymentMethodCard, mock.Anything).Return(confirmed, nil)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-1/pay", strings.NewReader(`{"method":"card"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(headerUserID, "user-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("booking-1")

		err := handler.Pay(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp BookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "confirmed", resp.Status)
	})

	t.Run("期限切れの予約は409", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("PayBooking", mock.Anything, "booking-1", booking.PaymentMethodCard, mock.Anything).Return(nil, booking.ErrBookingExpiredOrCancelled)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-1/pay", strings.NewReader(`{"method":"card"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(headerUserID, "user-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("booking-1")

		err := handler.Pay(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, he.Code)
		body, ok := he.Message.(ErrorResponse)
		require.True(t, ok)
		assert.Equal(t, "BOOKING_EXPIRED_OR_CANCELLED", body.Code)
	})

	t.Run("不正な支払い方法は400", func(t *testing.T) {
		handler := NewBookingHandler(new(MockBookingService))

		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-1/pay", strings.NewReader(`{"method":"cash"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(headerUserID, "user-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("booking-1")

		err := handler.Pay(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}

func TestBookingHandler_GetByID(t *testing.T) {
	e := NewTestEcho()

	t.Run("他人の予約は403", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("GetBooking", mock.Anything, "booking-1", mock.Anything).Return(nil, booking.ErrNotBookingOwner)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/bookings/booking-1", nil)
		req.Header.Set(headerUserID, "user-2")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("booking-1")

		err := handler.GetByID(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, he.Code)
	})
}

func TestBookingHandler_CheckIn(t *testing.T) {
	e := NewTestEcho()

	t.Run("チェックインで搭乗券が発行される", func(t *testing.T) {
		mockService := new(MockBookingService)
		now := time.Now()
		boardingPass := "BP12345678"
		ticket := &booking.Ticket{
			ID: "ticket-1", SeatID: "seat-1", TicketNumber: "TK00000001",
			Status: booking.TicketStatusActive, CheckedInAt: &now, BoardingPass: &boardingPass,
		}
		mockService.On("CheckInTicket", mock.Anything, "ticket-1", mock.Anything).Return(ticket, nil)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/tickets/ticket-1/check-in", nil)
		req.Header.Set(headerUserID, "user-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("ticket-1")

		err := handler.CheckIn(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp TicketResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.BoardingPass)
		assert.Equal(t, "BP12345678", *resp.BoardingPass)
	})
}
