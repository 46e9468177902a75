package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/transaction"
)

type seatRow struct {
	ID         string     `db:"id"`
	AirplaneID string     `db:"airplane_id"`
	SeatNumber string     `db:"seat_number"`
	Category   string     `db:"category"`
	Status     string     `db:"status"`
	HeldBy     *string    `db:"held_by"`
	HeldUntil  *time.Time `db:"held_until"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
	Version    int        `db:"version"`
}

func (r *seatRow) toEntity() *seat.Seat {
	return &seat.Seat{
		ID: r.ID, AirplaneID: r.AirplaneID, SeatNumber: r.SeatNumber,
		Category: seat.Category(r.Category), Status: seat.Status(r.Status),
		HeldBy: r.HeldBy, HeldUntil: r.HeldUntil,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
}

const seatColumns = `id, airplane_id, seat_number, category, status, held_by, held_until, created_at, updated_at, version`

// SeatRepository は座席台帳のPostgreSQL実装
//
// 状態遷移はすべて条件付きUPDATEで行い、WHERE句が「今この瞬間も遷移可能か」を
// 再確認する。更新行数0は競合とみなし、読み直して失敗理由を分類する。
type SeatRepository struct{ db *sqlx.DB }

func NewSeatRepository(db *sqlx.DB) *SeatRepository { return &SeatRepository{db: db} }

func (r *SeatRepository) CreateBulk(ctx context.Context, seats []*seat.Seat) error {
	if len(seats) == 0 {
		return nil
	}

	// バッチサイズごとに分割してマルチバリューINSERTを実行
	const batchSize = 500
	for i := 0; i < len(seats); i += batchSize {
		end := i + batchSize
		if end > len(seats) {
			end = len(seats)
		}
		if err := r.createBulkBatch(ctx, seats[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *SeatRepository) createBulkBatch(ctx context.Context, seats []*seat.Seat) error {
	query := `INSERT INTO seats (airplane_id, seat_number, category, status, created_at, updated_at, version) VALUES `
	args := make([]interface{}, 0, len(seats)*7)
	placeholders := make([]string, 0, len(seats))

	for i, s := range seats {
		base := i * 7
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		args = append(args, s.AirplaneID, s.SeatNumber, string(s.Category), string(s.Status), s.CreatedAt, s.UpdatedAt, s.Version)
	}

	query += strings.Join(placeholders, ", ")
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("座席一括作成に失敗: %w", err)
	}
	return nil
}

func (r *SeatRepository) GetByID(ctx context.Context, id string) (*seat.Seat, error) {
	var row seatRow
	query := `SELECT ` + seatColumns + ` FROM seats WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *SeatRepository) GetByAirplaneID(ctx context.Context, airplaneID string) ([]*seat.Seat, error) {
	var rows []seatRow
	query := `SELECT ` + seatColumns + ` FROM seats WHERE airplane_id = $1 ORDER BY seat_number`
	if err := r.db.SelectContext(ctx, &rows, query, airplaneID); err != nil {
		return nil, fmt.Errorf("座席一覧取得に失敗: %w", err)
	}
	seats := make([]*seat.Seat, len(rows))
	for i, row := range rows {
		seats[i] = row.toEntity()
	}
	return seats, nil
}

func (r *SeatRepository) CountFreeByAirplaneID(ctx context.Context, airplaneID string) (int, error) {
	// 期限切れホールドはスイープ前でも空席として数える
	var count int
	query := `SELECT COUNT(*) FROM seats WHERE airplane_id = $1 AND (status = 'free' OR (status = 'held' AND held_until < NOW()))`
	if err := r.db.GetContext(ctx, &count, query, airplaneID); err != nil {
		return 0, fmt.Errorf("空席数取得に失敗: %w", err)
	}
	return count, nil
}

func (r *SeatRepository) TryHold(ctx context.Context, seatID, userID string, ttl time.Duration) (*seat.Seat, error) {
	until := time.Now().Add(ttl)
	query := `UPDATE seats
		SET status = 'held', held_by = $2, held_until = $3, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND (status = 'free' OR (status = 'held' AND held_until < NOW()))
		RETURNING ` + seatColumns
	var row seatRow
	err := r.db.GetContext(ctx, &row, query, seatID, userID, until)
	if err == nil {
		return row.toEntity(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("座席ホールドに失敗: %w", err)
	}

	// 更新行数0：現在の状態を読み直して拒否理由を分類する
	current, err := r.GetByID(ctx, seatID)
	if err != nil {
		return nil, err
	}
	switch {
	case current.HeldByUser(userID, time.Now()):
		// 同一ユーザーの再ホールドは冪等成功（期限は延長しない）
		return current, nil
	case current.Status == seat.StatusBooked:
		return nil, seat.ErrSeatAlreadyBooked
	default:
		return nil, seat.ErrSeatAlreadyHeld
	}
}

func (r *SeatRepository) PromoteToBooked(ctx context.Context, tx transaction.Tx, seatID, userID string) error {
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE seats
		SET status = 'booked', held_by = NULL, held_until = NULL, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND status = 'held' AND held_by = $2 AND held_until > NOW()`
	result, err := sqlxTx.ExecContext(ctx, query, seatID, userID)
	if err != nil {
		return fmt.Errorf("座席確定に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 1 {
		return nil
	}

	var row seatRow
	if err := sqlxTx.GetContext(ctx, &row, `SELECT `+seatColumns+` FROM seats WHERE id = $1`, seatID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return seat.ErrSeatNotFound
		}
		return fmt.Errorf("座席取得に失敗: %w", err)
	}
	current := row.toEntity()
	switch {
	case current.Status == seat.StatusBooked:
		return seat.ErrSeatAlreadyBooked
	case current.Status == seat.StatusHeld && current.HeldBy != nil && *current.HeldBy != userID && !current.HoldExpired(time.Now()):
		return seat.ErrHoldNotOwned
	default:
		return seat.ErrHoldExpired
	}
}

func (r *SeatRepository) BookFree(ctx context.Context, tx transaction.Tx, seatID string) error {
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE seats
		SET status = 'booked', held_by = NULL, held_until = NULL, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND (status = 'free' OR (status = 'held' AND held_until < NOW()))`
	result, err := sqlxTx.ExecContext(ctx, query, seatID)
	if err != nil {
		return fmt.Errorf("座席確定に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 1 {
		return nil
	}

	var row seatRow
	if err := sqlxTx.GetContext(ctx, &row, `SELECT `+seatColumns+` FROM seats WHERE id = $1`, seatID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return seat.ErrSeatNotFound
		}
		return fmt.Errorf("座席取得に失敗: %w", err)
	}
	if seat.Status(row.Status) == seat.StatusBooked {
		return seat.ErrSeatAlreadyBooked
	}
	return seat.ErrSeatAlreadyHeld
}

func (r *SeatRepository) Release(ctx context.Context, tx transaction.Tx, seatIDs []string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE seats
		SET status = 'free', held_by = NULL, held_until = NULL, updated_at = NOW(), version = version + 1
		WHERE id = ANY($1) AND status <> 'free'`
	if _, err := sqlxTx.ExecContext(ctx, query, pq.Array(seatIDs)); err != nil {
		return fmt.Errorf("座席解放に失敗: %w", err)
	}
	return nil
}

func (r *SeatRepository) ReleaseHeldBy(ctx context.Context, seatID, userID string) error {
	query := `UPDATE seats
		SET status = 'free', held_by = NULL, held_until = NULL, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND status = 'held' AND held_by = $2`
	result, err := r.db.ExecContext(ctx, query, seatID, userID)
	if err != nil {
		return fmt.Errorf("座席解放に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 1 {
		return nil
	}

	current, err := r.GetByID(ctx, seatID)
	if err != nil {
		return err
	}
	switch current.Status {
	case seat.StatusFree:
		return nil // 既に解放済み
	case seat.StatusBooked:
		return seat.ErrSeatAlreadyBooked
	default:
		return seat.ErrHoldNotOwned
	}
}

func (r *SeatRepository) ReleaseExpiredHolds(ctx context.Context) (int, error) {
	query := `UPDATE seats
		SET status = 'free', held_by = NULL, held_until = NULL, updated_at = NOW(), version = version + 1
		WHERE status = 'held' AND held_until < NOW()`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("期限切れホールドの解放に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

var _ seat.Repository = (*SeatRepository)(nil)
