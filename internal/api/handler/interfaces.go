package handler

import (
	"context"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/application"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/actor"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/flight"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/seat"
)

// SeatServiceInterface は座席ホールドサービスのインターフェース
type SeatServiceInterface interface {
	HoldSeat(ctx context.Context, seatID string, act actor.Actor) (*seat.Seat, error)
	ReleaseSeat(ctx context.Context, seatID string, act actor.Actor) error
	GetSeatMap(ctx context.Context, flightID string) ([]*seat.Seat, error)
	CountFreeSeats(ctx context.Context, flightID string) (int, error)
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	CreateBooking(ctx context.Context, input application.CreateBookingInput) (*booking.Booking, error)
	PayBooking(ctx context.Context, bookingID string, method booking.PaymentMethod, act actor.Actor) (*booking.Booking, error)
	CancelBooking(ctx context.Context, bookingID string, act actor.Actor) (*booking.Booking, error)
	StaffCancelBooking(ctx context.Context, bookingID string, act actor.Actor) (*booking.Booking, error)
	CancelTicket(ctx context.Context, ticketID string, act actor.Actor) (*booking.Booking, bool, error)
	ReassignSeat(ctx context.Context, bookingID, ticketID, newSeatID string, act actor.Actor) (*booking.Booking, error)
	CheckInTicket(ctx context.Context, ticketID string, act actor.Actor) (*booking.Ticket, error)
	GetBooking(ctx context.Context, bookingID string, act actor.Actor) (*booking.Booking, error)
	GetUserBookings(ctx context.Context, act actor.Actor, limit, offset int) ([]*booking.Booking, error)
	SearchByPNR(ctx context.Context, code string, act actor.Actor) (*booking.Booking, error)
}

// FlightServiceInterface は便・機体カタログサービスのインターフェース
type FlightServiceInterface interface {
	CreateAirplane(ctx context.Context, input application.CreateAirplaneInput) (*flight.Airplane, error)
	GetAirplaneSeats(ctx context.Context, airplaneID string) ([]*seat.Seat, error)
	CreateFlight(ctx context.Context, input application.CreateFlightInput) (*flight.Flight, error)
	GetFlight(ctx context.Context, id string) (*flight.Flight, error)
	ListFlights(ctx context.Context, limit, offset int) ([]*flight.Flight, error)
}
