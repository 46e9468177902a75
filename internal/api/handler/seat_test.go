package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/actor"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/seat"
)

// MockSeatService はSeatServiceInterfaceのモック
type MockSeatService struct {
	mock.Mock
}

func (m *MockSeatService) HoldSeat(ctx context.Context, seatID string, act actor.Actor) (*seat.Seat, error) {
	args := m.Called(ctx, seatID, act)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func (m *MockSeatService) ReleaseSeat(ctx context.Context, seatID string, act actor.Actor) error {
	args := m.Called(ctx, seatID, act)
	return args.Error(0)
}

func (m *MockSeatService) GetSeatMap(ctx context.Context, flightID string) ([]*seat.Seat, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

func (m *MockSeatService) CountFreeSeats(ctx context.Context, flightID string) (int, error) {
	args := m.Called(ctx, flightID)
	return args.Int(0), args.Error(1)
}

func TestSeatHandler_Hold(t *testing.T) {
	e := NewTestEcho()

	t.Run("座席をホールドできる", func(t *testing.T) {
		mockService := new(MockSeatService)
		user := "user-1"
		until := time.Now().Add(5 * time.Minute)
		held := &seat.Seat{
			ID: "seat-1", AirplaneID: "airplane-1", SeatNumber: "12A",
			Category: seat.CategoryStandard, Status: seat.StatusHeld,
			HeldBy: &user, HeldUntil: &until,
		}
		mockService.On("HoldSeat", mock.Anything, "seat-1", actor.Actor{UserID: "user-1", Role: actor.RolePassenger}).Return(held, nil)

		handler := NewSeatHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/seats/seat-1/hold", nil)
		req.Header.Set(headerUserID, "user-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("seat-1")

		err := handler.Hold(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp SeatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "held", resp.Status)
		assert.NotNil(t, resp.HeldUntil)

		mockService.AssertExpectations(t)
	})

	t.Run("ユーザーIDがないと401", func(t *testing.T) {
		handler := NewSeatHandler(new(MockSeatService))

		req := httptest.NewRequest(http.MethodPost, "/seats/seat-1/hold", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("seat-1")

		err := handler.Hold(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("他のユーザーがホールド中なら409", func(t *testing.T) {
		mockService := new(MockSeatService)
		mockService.On("HoldSeat", mock.Anything, "seat-1", mock.Anything).Return(nil, seat.ErrSeatAlreadyHeld)

		handler := NewSeatHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/seats/seat-1/hold", nil)
		req.Header.Set(headerUserID, "user-2")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("seat-1")

		err := handler.Hold(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, he.Code)
		body, ok := he.Message.(ErrorResponse)
		require.True(t, ok)
		assert.Equal(t, "ALREADY_HELD", body.Code)
	})
}

func TestSeatHandler_Release(t *testing.T) {
	e := NewTestEcho()

	t.Run("ホールドを解除できる", func(t *testing.T) {
		mockService := new(MockSeatService)
		mockService.On("ReleaseSeat", mock.Anything, "seat-1", actor.Actor{UserID: "user-1", Role: actor.RolePassenger}).Return(nil)

		handler := NewSeatHandler(mockService)

		req := httptest.NewRequest(http.MethodDelete, "/seats/seat-1/hold", nil)
		req.Header.Set(headerUserID, "user-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("seat-1")

		err := handler.Release(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		mockService.AssertExpectations(t)
	})
}

func TestSeatHandler_GetSeatMap(t *testing.T) {
	e := NewTestEcho()

	t.Run("便の座席マップを取得できる", func(t *testing.T) {
		mockService := new(MockSeatService)
		seats := []*seat.Seat{
			{ID: "seat-1", AirplaneID: "airplane-1", SeatNumber: "1A", Category: seat.CategoryExtraLegroom, Status: seat.StatusFree},
			{ID: "seat-2", AirplaneID: "airplane-1", SeatNumber: "1B", Category: seat.CategoryExtraLegroom, Status: seat.StatusBooked},
		}
		mockService.On("GetSeatMap", mock.Anything, "flight-1").Return(seats, nil)

		handler := NewSeatHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/flights/flight-1/seats", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("flight-1")

		err := handler.GetSeatMap(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp []SeatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp, 2)
	})
}

func TestSeatHandler_CountFree(t *testing.T) {
	e := NewTestEcho()

	mockService := new(MockSeatService)
	mockService.On("CountFreeSeats", mock.Anything, "flight-1").Return(142, nil)

	handler := NewSeatHandler(mockService)

	req := httptest.NewRequest(http.MethodGet, "/flights/flight-1/seats/free-count", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("flight-1")

	err := handler.CountFree(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp FreeCountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 142, resp.FreeSeats)
}
