package seat

import (
	"context"
	"time"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/transaction"
)

// Repository は座席台帳のインターフェース
//
// 座席状態の変更はすべてここを経由する。各操作は「状態の確認と変更」を
// ストレージ上で単一のアトミックな単位として実行し、check-then-act の
// 競合をアプリケーション側の再確認に頼らず閉じる。
type Repository interface {
	// CreateBulk は座席マップを一括作成する
	CreateBulk(ctx context.Context, seats []*Seat) error

	// GetByID はIDから座席を取得する
	GetByID(ctx context.Context, id string) (*Seat, error)

	// GetByAirplaneID は機体の座席一覧を取得する
	GetByAirplaneID(ctx context.Context, airplaneID string) ([]*Seat, error)

	// CountFreeByAirplaneID は機体の空席数を取得する（期限切れホールドは空席扱い）
	CountFreeByAirplaneID(ctx context.Context, airplaneID string) (int, error)

	// TryHold は座席を指定ユーザーでホールドする
	// 空席または期限切れホールドの座席のみ成功する。同一ユーザーの有効な
	// ホールドへの再ホールドは冪等成功（期限は延長しない）。
	// 失敗は ErrSeatAlreadyHeld / ErrSeatAlreadyBooked で区別される。
	TryHold(ctx context.Context, seatID, userID string, ttl time.Duration) (*Seat, error)

	// PromoteToBooked はホールド中の座席を予約確定にする（トランザクション必須）
	// 失敗は ErrHoldExpired / ErrHoldNotOwned で区別される。
	PromoteToBooked(ctx context.Context, tx transaction.Tx, seatID, userID string) error

	// BookFree は空席を直接予約確定にする（スタッフの座席変更用、トランザクション必須）
	BookFree(ctx context.Context, tx transaction.Tx, seatID string) error

	// Release は座席を無条件に解放する（トランザクション必須、空席ならno-op）
	Release(ctx context.Context, tx transaction.Tx, seatIDs []string) error

	// ReleaseHeldBy は指定ユーザーがホールド中の座席を解放する
	ReleaseHeldBy(ctx context.Context, seatID, userID string) error

	// ReleaseExpiredHolds は期限切れホールドを一括解放し、解放数を返す
	ReleaseExpiredHolds(ctx context.Context) (int, error)
}
