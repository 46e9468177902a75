package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/transaction"
)

type bookingRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	FlightID  string    `db:"flight_id"`
	Status    string    `db:"status"`
	PNR       string    `db:"pnr"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type ticketRow struct {
	ID                 string     `db:"id"`
	BookingID          string     `db:"booking_id"`
	SeatID             string     `db:"seat_id"`
	TicketNumber       string     `db:"ticket_number"`
	PassengerFirstName string     `db:"passenger_first_name"`
	PassengerLastName  string     `db:"passenger_last_name"`
	Status             string     `db:"status"`
	CheckedInAt        *time.Time `db:"checked_in_at"`
	BoardingPass       *string    `db:"boarding_pass"`
	CreatedAt          time.Time  `db:"created_at"`
}

type paymentRow struct {
	ID        string    `db:"id"`
	BookingID string    `db:"booking_id"`
	Amount    float64   `db:"amount"`
	Method    string    `db:"method"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

const bookingColumns = `id, user_id, flight_id, status, pnr, expires_at, created_at, updated_at`
const ticketColumns = `id, booking_id, seat_id, ticket_number, passenger_first_name, passenger_last_name, status, checked_in_at, boarding_pass, created_at`

func (r *ticketRow) toEntity() *booking.Ticket {
	return &booking.Ticket{
		ID: r.ID, BookingID: r.BookingID, SeatID: r.SeatID,
		TicketNumber: r.TicketNumber,
		PassengerFirstName: r.PassengerFirstName, PassengerLastName: r.PassengerLastName,
		Status: booking.TicketStatus(r.Status), CheckedInAt: r.CheckedInAt,
		BoardingPass: r.BoardingPass, CreatedAt: r.CreatedAt,
	}
}

// BookingRepository は予約リポジトリのPostgreSQL実装
type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	query := `INSERT INTO bookings (user_id, flight_id, status, pnr, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query, b.UserID, b.FlightID, string(b.Status), b.PNR, b.ExpiresAt, b.CreatedAt, b.UpdatedAt).Scan(&b.ID); err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return booking.ErrPNRAlreadyExists
		}
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	for _, t := range b.Tickets {
		t.BookingID = b.ID
		ticketQuery := `INSERT INTO tickets (booking_id, seat_id, ticket_number, passenger_first_name, passenger_last_name, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
		if err := sqlxTx.QueryRowContext(ctx, ticketQuery, t.BookingID, t.SeatID, t.TicketNumber, t.PassengerFirstName, t.PassengerLastName, string(t.Status), t.CreatedAt).Scan(&t.ID); err != nil {
			return fmt.Errorf("航空券作成に失敗: %w", err)
		}
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	var row bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return r.loadRelations(ctx, r.db, &row)
}

func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*booking.Booking, error) {
	sqlxTx := UnwrapTx(tx)
	var row bookingRow
	// 行ロックで支払いとスイーパーの競合を直列化する
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	if err := sqlxTx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return r.loadRelations(ctx, sqlxTx, &row)
}

func (r *BookingRepository) GetByTicketID(ctx context.Context, ticketID string) (*booking.Booking, error) {
	var bookingID string
	if err := r.db.GetContext(ctx, &bookingID, `SELECT booking_id FROM tickets WHERE id = $1`, ticketID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrTicketNotFound
		}
		return nil, fmt.Errorf("航空券取得に失敗: %w", err)
	}
	return r.GetByID(ctx, bookingID)
}

func (r *BookingRepository) GetByPNR(ctx context.Context, pnr string) (*booking.Booking, error) {
	var row bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE pnr = $1`
	if err := r.db.GetContext(ctx, &row, query, pnr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return r.loadRelations(ctx, r.db, &row)
}

func (r *BookingRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	result := make([]*booking.Booking, len(rows))
	for i := range rows {
		b, err := r.loadRelations(ctx, r.db, &rows[i])
		if err != nil {
			return nil, err
		}
		result[i] = b
	}
	return result, nil
}

func (r *BookingRepository) ExistsPNR(ctx context.Context, pnr string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM bookings WHERE pnr = $1)`, pnr); err != nil {
		return false, fmt.Errorf("PNR存在確認に失敗: %w", err)
	}
	return exists, nil
}

func (r *BookingRepository) Update(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := sqlxTx.ExecContext(ctx, query, string(b.Status), b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("予約更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return booking.ErrBookingNotFound
	}
	for _, t := range b.Tickets {
		ticketQuery := `UPDATE tickets SET seat_id = $1, status = $2, checked_in_at = $3, boarding_pass = $4 WHERE id = $5`
		if _, err := sqlxTx.ExecContext(ctx, ticketQuery, t.SeatID, string(t.Status), t.CheckedInAt, t.BoardingPass, t.ID); err != nil {
			return fmt.Errorf("航空券更新に失敗: %w", err)
		}
	}
	return nil
}

func (r *BookingRepository) AddPayment(ctx context.Context, tx transaction.Tx, p *booking.Payment) error {
	sqlxTx := UnwrapTx(tx)
	query := `INSERT INTO payments (booking_id, amount, method, status, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query, p.BookingID, p.Amount, string(p.Method), string(p.Status), p.CreatedAt).Scan(&p.ID); err != nil {
		return fmt.Errorf("支払い記録の作成に失敗: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetExpiredPendingIDs(ctx context.Context) ([]string, error) {
	var ids []string
	query := `SELECT id FROM bookings WHERE status = 'pending_payment' AND expires_at < NOW()`
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("期限切れ予約取得に失敗: %w", err)
	}
	return ids, nil
}

func (r *BookingRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM bookings WHERE status = 'pending_payment'`); err != nil {
		return 0, fmt.Errorf("支払い待ち件数取得に失敗: %w", err)
	}
	return count, nil
}

// queryer は db / tx どちらでも読み取りに使うための最小インターフェース
type queryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func (r *BookingRepository) loadRelations(ctx context.Context, q queryer, row *bookingRow) (*booking.Booking, error) {
	var ticketRows []ticketRow
	if err := q.SelectContext(ctx, &ticketRows, `SELECT `+ticketColumns+` FROM tickets WHERE booking_id = $1 ORDER BY created_at`, row.ID); err != nil {
		return nil, fmt.Errorf("航空券取得に失敗: %w", err)
	}
	var paymentRows []paymentRow
	if err := q.SelectContext(ctx, &paymentRows, `SELECT id, booking_id, amount, method, status, created_at FROM payments WHERE booking_id = $1 ORDER BY created_at`, row.ID); err != nil {
		return nil, fmt.Errorf("支払い記録取得に失敗: %w", err)
	}

	tickets := make([]*booking.Ticket, len(ticketRows))
	for i := range ticketRows {
		tickets[i] = ticketRows[i].toEntity()
	}
	payments := make([]*booking.Payment, len(paymentRows))
	for i, p := range paymentRows {
		payments[i] = &booking.Payment{
			ID: p.ID, BookingID: p.BookingID, Amount: p.Amount,
			Method: booking.PaymentMethod(p.Method), Status: booking.PaymentStatus(p.Status),
			CreatedAt: p.CreatedAt,
		}
	}

	return &booking.Booking{
		ID: row.ID, UserID: row.UserID, FlightID: row.FlightID,
		Status: booking.Status(row.Status), PNR: row.PNR,
		ExpiresAt: row.ExpiresAt, Tickets: tickets, Payments: payments,
		CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt,
	}, nil
}

var _ booking.Repository = (*BookingRepository)(nil)
