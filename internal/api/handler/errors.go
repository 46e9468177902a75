package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/actor"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/flight"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/seat"
)

// ErrorResponse はAPIのエラーボディ
// Code はクライアントが分岐に使う安定した識別子で、Message は人間向け
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// domainError はドメインエラーをHTTPステータスと安定コードに変換する
//
// 状態遷移の衝突（既にホールド済み・支払い済み等）は409、
// 権限は403、存在しないリソースは404、それ以外は400に倒す
func domainError(err error) *echo.HTTPError {
	status := http.StatusBadRequest
	code := "INVALID_REQUEST"

	switch {
	case errors.Is(err, seat.ErrSeatNotFound):
		status, code = http.StatusNotFound, "SEAT_NOT_FOUND"
	case errors.Is(err, booking.ErrBookingNotFound):
		status, code = http.StatusNotFound, "BOOKING_NOT_FOUND"
	case errors.Is(err, booking.ErrTicketNotFound):
		status, code = http.StatusNotFound, "TICKET_NOT_FOUND"
	case errors.Is(err, flight.ErrFlightNotFound):
		status, code = http.StatusNotFound, "FLIGHT_NOT_FOUND"
	case errors.Is(err, flight.ErrAirplaneNotFound):
		status, code = http.StatusNotFound, "AIRPLANE_NOT_FOUND"

	case errors.Is(err, seat.ErrSeatAlreadyHeld):
		status, code = http.StatusConflict, "ALREADY_HELD"
	case errors.Is(err, seat.ErrSeatAlreadyBooked):
		status, code = http.StatusConflict, "ALREADY_BOOKED"
	case errors.Is(err, seat.ErrHoldExpired):
		status, code = http.StatusConflict, "HOLD_EXPIRED"
	case errors.Is(err, seat.ErrHoldNotOwned):
		status, code = http.StatusConflict, "HOLD_NOT_OWNED"
	case errors.Is(err, booking.ErrSeatNotHeldByUser):
		status, code = http.StatusConflict, "SEAT_NOT_HELD_BY_USER"
	case errors.Is(err, booking.ErrBookingExpiredOrCancelled):
		status, code = http.StatusConflict, "BOOKING_EXPIRED_OR_CANCELLED"
	case errors.Is(err, booking.ErrBookingAlreadyPaid):
		status, code = http.StatusConflict, "ALREADY_PAID"
	case errors.Is(err, booking.ErrBookingAlreadyCancelled):
		status, code = http.StatusConflict, "ALREADY_CANCELLED"
	case errors.Is(err, booking.ErrTicketAlreadyCancelled):
		status, code = http.StatusConflict, "TICKET_ALREADY_CANCELLED"
	case errors.Is(err, booking.ErrAlreadyCheckedIn):
		status, code = http.StatusConflict, "ALREADY_CHECKED_IN"
	case errors.Is(err, booking.ErrPNRAlreadyExists):
		status, code = http.StatusConflict, "PNR_CONFLICT"
	case errors.Is(err, flight.ErrFlightDeparted):
		status, code = http.StatusConflict, "FLIGHT_DEPARTED"
	case errors.Is(err, flight.ErrTooCloseToDeparture):
		status, code = http.StatusConflict, "TOO_CLOSE_TO_DEPARTURE"

	case errors.Is(err, booking.ErrNotBookingOwner):
		status, code = http.StatusForbidden, "NOT_BOOKING_OWNER"
	case errors.Is(err, actor.ErrStaffOnly):
		status, code = http.StatusForbidden, "STAFF_ONLY"
	}

	return echo.NewHTTPError(status, ErrorResponse{Code: code, Message: err.Error()})
}
