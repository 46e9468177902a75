package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/flight"
)

type flightRow struct {
	ID               string    `db:"id"`
	FlightNumber     string    `db:"flight_number"`
	DepartureAirport string    `db:"departure_airport"`
	ArrivalAirport   string    `db:"arrival_airport"`
	DepartureTime    time.Time `db:"departure_time"`
	ArrivalTime      time.Time `db:"arrival_time"`
	AirplaneID       string    `db:"airplane_id"`
	Status           string    `db:"status"`
	BasePrice        float64   `db:"base_price"`
	Gate             string    `db:"gate"`
	CreatedAt        time.Time `db:"created_at"`
}

func (r *flightRow) toEntity() *flight.Flight {
	return &flight.Flight{
		ID: r.ID, FlightNumber: r.FlightNumber,
		DepartureAirport: r.DepartureAirport, ArrivalAirport: r.ArrivalAirport,
		DepartureTime: r.DepartureTime, ArrivalTime: r.ArrivalTime,
		AirplaneID: r.AirplaneID, Status: flight.Status(r.Status),
		BasePrice: r.BasePrice, Gate: r.Gate, CreatedAt: r.CreatedAt,
	}
}

const flightColumns = `id, flight_number, departure_airport, arrival_airport, departure_time, arrival_time, airplane_id, status, base_price, gate, created_at`

// FlightRepository は便・機体カタログのPostgreSQL実装
type FlightRepository struct{ db *sqlx.DB }

func NewFlightRepository(db *sqlx.DB) *FlightRepository { return &FlightRepository{db: db} }

func (r *FlightRepository) CreateFlight(ctx context.Context, f *flight.Flight) error {
	query := `INSERT INTO flights (flight_number, departure_airport, arrival_airport, departure_time, arrival_time, airplane_id, status, base_price, gate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, f.FlightNumber, f.DepartureAirport, f.ArrivalAirport, f.DepartureTime, f.ArrivalTime, f.AirplaneID, string(f.Status), f.BasePrice, f.Gate, f.CreatedAt).Scan(&f.ID); err != nil {
		return fmt.Errorf("便作成に失敗: %w", err)
	}
	return nil
}

func (r *FlightRepository) GetFlightByID(ctx context.Context, id string) (*flight.Flight, error) {
	var row flightRow
	query := `SELECT ` + flightColumns + ` FROM flights WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, flight.ErrFlightNotFound
		}
		return nil, fmt.Errorf("便取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *FlightRepository) ListFlights(ctx context.Context, limit, offset int) ([]*flight.Flight, error) {
	var rows []flightRow
	query := `SELECT ` + flightColumns + ` FROM flights ORDER BY departure_time LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("便一覧取得に失敗: %w", err)
	}
	flights := make([]*flight.Flight, len(rows))
	for i := range rows {
		flights[i] = rows[i].toEntity()
	}
	return flights, nil
}

func (r *FlightRepository) CreateAirplane(ctx context.Context, a *flight.Airplane) error {
	query := `INSERT INTO airplanes (model, total_seats, is_active, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, a.Model, a.TotalSeats, a.IsActive, a.CreatedAt).Scan(&a.ID); err != nil {
		return fmt.Errorf("機体作成に失敗: %w", err)
	}
	return nil
}

func (r *FlightRepository) GetAirplaneByID(ctx context.Context, id string) (*flight.Airplane, error) {
	var a flight.Airplane
	query := `SELECT id, model, total_seats, is_active, created_at FROM airplanes WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&a.ID, &a.Model, &a.TotalSeats, &a.IsActive, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, flight.ErrAirplaneNotFound
		}
		return nil, fmt.Errorf("機体取得に失敗: %w", err)
	}
	return &a, nil
}

var _ flight.Repository = (*FlightRepository)(nil)
