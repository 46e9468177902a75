package flight

import "time"

// Status は便の状態を表す
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusDelayed   Status = "delayed"
	StatusBoarding  Status = "boarding"
	StatusDeparted  Status = "departed"
	StatusArrived   Status = "arrived"
	StatusCancelled Status = "cancelled"
)

// Flight は便エンティティを表す
// 予約エンジンから見るとカタログは読み取り専用で、予約の存続期間中は
// 機体と座席レイアウトは不変として扱う
type Flight struct {
	ID               string
	FlightNumber     string
	DepartureAirport string
	ArrivalAirport   string
	DepartureTime    time.Time
	ArrivalTime      time.Time
	AirplaneID       string
	Status           Status
	BasePrice        float64
	Gate             string
	CreatedAt        time.Time
}

// Airplane は機体エンティティを表す
type Airplane struct {
	ID         string
	Model      string
	TotalSeats int
	IsActive   bool
	CreatedAt  time.Time
}

// NewFlight は新しい便を作成する
func NewFlight(flightNumber, departureAirport, arrivalAirport, airplaneID string, departureTime, arrivalTime time.Time, basePrice float64) *Flight {
	return &Flight{
		FlightNumber:     flightNumber,
		DepartureAirport: departureAirport,
		ArrivalAirport:   arrivalAirport,
		DepartureTime:    departureTime,
		ArrivalTime:      arrivalTime,
		AirplaneID:       airplaneID,
		Status:           StatusScheduled,
		BasePrice:        basePrice,
		CreatedAt:        time.Now(),
	}
}

// NewAirplane は新しい機体を作成する
func NewAirplane(model string, totalSeats int) *Airplane {
	return &Airplane{
		Model:      model,
		TotalSeats: totalSeats,
		IsActive:   true,
		CreatedAt:  time.Now(),
	}
}

// HasDeparted は便が既に出発したかを返す
func (f *Flight) HasDeparted(now time.Time) bool {
	return f.Status == StatusDeparted || f.Status == StatusArrived || now.After(f.DepartureTime)
}

// WithinLeadTime は出発までの残り時間が lead を下回っているかを返す
func (f *Flight) WithinLeadTime(now time.Time, lead time.Duration) bool {
	return f.DepartureTime.Sub(now) < lead
}

// Validate は便の検証を行う
func (f *Flight) Validate() error {
	if f.FlightNumber == "" {
		return ErrFlightNumberRequired
	}
	if f.AirplaneID == "" {
		return ErrAirplaneIDRequired
	}
	if f.DepartureAirport == "" || f.ArrivalAirport == "" {
		return ErrAirportRequired
	}
	if !f.ArrivalTime.After(f.DepartureTime) {
		return ErrInvalidFlightTime
	}
	if f.BasePrice < 0 {
		return ErrInvalidBasePrice
	}
	return nil
}

// Validate は機体の検証を行う
func (a *Airplane) Validate() error {
	if a.Model == "" {
		return ErrModelRequired
	}
	if a.TotalSeats <= 0 {
		return ErrInvalidTotalSeats
	}
	return nil
}
