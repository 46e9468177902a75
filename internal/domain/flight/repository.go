package flight

import "context"

// Repository は便・機体カタログのインターフェース
type Repository interface {
	// CreateFlight は新しい便を作成する
	CreateFlight(ctx context.Context, f *Flight) error

	// GetFlightByID はIDから便を取得する
	GetFlightByID(ctx context.Context, id string) (*Flight, error)

	// ListFlights は便の一覧を取得する
	ListFlights(ctx context.Context, limit, offset int) ([]*Flight, error)

	// CreateAirplane は新しい機体を作成する
	CreateAirplane(ctx context.Context, a *Airplane) error

	// GetAirplaneByID はIDから機体を取得する
	GetAirplaneByID(ctx context.Context, id string) (*Airplane, error)
}
