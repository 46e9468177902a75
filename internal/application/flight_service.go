package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/flight"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/seat"
)

// FlightService は便・機体カタログの管理を提供する
// 予約エンジン本体から見ると読み取り専用のコラボレーターだが、
// 機体登録時の座席マップ生成はここが担う
type FlightService struct {
	flightRepo flight.Repository
	seatRepo   seat.Repository
}

func NewFlightService(fr flight.Repository, sr seat.Repository) *FlightService {
	return &FlightService{flightRepo: fr, seatRepo: sr}
}

// seatLetters は1列あたりの座席記号（最大6席: A〜F）
const seatLetters = "ABCDEF"

type CreateAirplaneInput struct {
	Model            string
	Rows             int
	SeatsPerRow      int
	ExtraLegroomRows int // 先頭から何列をextra_legroomにするか
}

// CreateAirplane は機体を登録し、座席マップを生成する
func (s *FlightService) CreateAirplane(ctx context.Context, input CreateAirplaneInput) (*flight.Airplane, error) {
	if input.SeatsPerRow <= 0 || input.SeatsPerRow > len(seatLetters) {
		return nil, flight.ErrInvalidTotalSeats
	}
	airplane := flight.NewAirplane(input.Model, input.Rows*input.SeatsPerRow)
	if err := airplane.Validate(); err != nil {
		return nil, err
	}
	if err := s.flightRepo.CreateAirplane(ctx, airplane); err != nil {
		return nil, err
	}

	seats := make([]*seat.Seat, 0, airplane.TotalSeats)
	for row := 1; row <= input.Rows; row++ {
		category := seat.CategoryStandard
		if row <= input.ExtraLegroomRows {
			category = seat.CategoryExtraLegroom
		}
		for col := 0; col < input.SeatsPerRow; col++ {
			seatNumber := fmt.Sprintf("%d%c", row, seatLetters[col])
			seats = append(seats, seat.NewSeat(airplane.ID, seatNumber, category))
		}
	}
	if err := s.seatRepo.CreateBulk(ctx, seats); err != nil {
		return nil, fmt.Errorf("座席マップ生成に失敗: %w", err)
	}
	return airplane, nil
}

// GetAirplaneSeats は機体の座席一覧を返す
func (s *FlightService) GetAirplaneSeats(ctx context.Context, airplaneID string) ([]*seat.Seat, error) {
	if _, err := s.flightRepo.GetAirplaneByID(ctx, airplaneID); err != nil {
		return nil, err
	}
	return s.seatRepo.GetByAirplaneID(ctx, airplaneID)
}

type CreateFlightInput struct {
	FlightNumber     string
	DepartureAirport string
	ArrivalAirport   string
	DepartureTime    time.Time
	ArrivalTime      time.Time
	AirplaneID       string
	BasePrice        float64
	Gate             string
}

// CreateFlight は新しい便を登録する
func (s *FlightService) CreateFlight(ctx context.Context, input CreateFlightInput) (*flight.Flight, error) {
	airplane, err := s.flightRepo.GetAirplaneByID(ctx, input.AirplaneID)
	if err != nil {
		return nil, err
	}
	if !airplane.IsActive {
		return nil, flight.ErrAirplaneNotFound
	}
	fl := flight.NewFlight(input.FlightNumber, input.DepartureAirport, input.ArrivalAirport, input.AirplaneID, input.DepartureTime, input.ArrivalTime, input.BasePrice)
	fl.Gate = input.Gate
	if err := fl.Validate(); err != nil {
		return nil, err
	}
	if err := s.flightRepo.CreateFlight(ctx, fl); err != nil {
		return nil, err
	}
	return fl, nil
}

// GetFlight はIDから便を取得する
func (s *FlightService) GetFlight(ctx context.Context, id string) (*flight.Flight, error) {
	return s.flightRepo.GetFlightByID(ctx, id)
}

// ListFlights は便の一覧を取得する
func (s *FlightService) ListFlights(ctx context.Context, limit, offset int) ([]*flight.Flight, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.flightRepo.ListFlights(ctx, limit, offset)
}
