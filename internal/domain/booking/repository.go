package booking

import (
	"context"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は予約と航空券を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, b *Booking) error

	// GetByID はIDから予約を取得する（航空券・支払いを含む）
	GetByID(ctx context.Context, id string) (*Booking, error)

	// GetByIDForUpdate は行ロック付きで予約を取得する（トランザクション必須）
	// 支払いとスイーパーの競合を単一勝者に絞るために使う
	GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*Booking, error)

	// GetByTicketID は航空券IDから親の予約を取得する
	GetByTicketID(ctx context.Context, ticketID string) (*Booking, error)

	// GetByPNR はPNRコードから予約を取得する
	GetByPNR(ctx context.Context, pnr string) (*Booking, error)

	// GetByUserID はユーザーの予約一覧を取得する
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*Booking, error)

	// ExistsPNR はPNRコードが使用済みかを返す
	ExistsPNR(ctx context.Context, pnr string) (bool, error)

	// Update は予約本体と航空券の状態を更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, b *Booking) error

	// AddPayment は支払い記録を追記する（トランザクション必須）
	AddPayment(ctx context.Context, tx transaction.Tx, p *Payment) error

	// GetExpiredPendingIDs は支払い期限切れの予約IDを取得する
	GetExpiredPendingIDs(ctx context.Context) ([]string, error)

	// CountPending は支払い待ちの予約数を返す
	CountPending(ctx context.Context) (int, error)
}
