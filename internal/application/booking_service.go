package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/actor"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/flight"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/transaction"
	kafkainfra "github.com/sanosuguru/go-airline-seat-reservation/internal/infrastructure/kafka"
	redisinfra "github.com/sanosuguru/go-airline-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/pkg/metrics"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/pkg/pnr"
)

// checkInWindowOpen はチェックイン受付を開始する出発前の時間
const checkInWindowOpen = 24 * time.Hour

// EventPublisher は予約イベントを外部（通知サービス等）へ配信する
// 配信失敗は予約処理の結果に影響しない
type EventPublisher interface {
	Publish(ctx context.Context, event kafkainfra.BookingEvent) error
}

// BookingService は予約ライフサイクルの状態機械を実装する
//
// 座席状態の変更は必ず座席台帳（seat.Repository）の条件付き更新を経由し、
// 予約行の遷移は行ロック下で行う。複数座席にまたがる作成・解放は
// 単一トランザクションで全成功か全失敗のどちらかに倒す。
type BookingService struct {
	txManager      transaction.Manager
	bookingRepo    booking.Repository
	seatRepo       seat.Repository
	flightRepo     flight.Repository
	lockManager    *redisinfra.LockManager
	cache          *redisinfra.SeatCache
	publisher      EventPublisher
	paymentWindow  time.Duration
	cancelLeadTime time.Duration
}

func NewBookingService(
	tm transaction.Manager,
	br booking.Repository,
	sr seat.Repository,
	fr flight.Repository,
	lm *redisinfra.LockManager,
	cache *redisinfra.SeatCache,
	pub EventPublisher,
	paymentWindow, cancelLeadTime time.Duration,
) *BookingService {
	return &BookingService{
		txManager:      tm,
		bookingRepo:    br,
		seatRepo:       sr,
		flightRepo:     fr,
		lockManager:    lm,
		cache:          cache,
		publisher:      pub,
		paymentWindow:  paymentWindow,
		cancelLeadTime: cancelLeadTime,
	}
}

type CreateBookingInput struct {
	FlightID  string
	SeatIDs   []string
	Passenger booking.Passenger
	Actor     actor.Actor
}

// CreateBooking はホールド済み座席の集合から予約を作成する
//
// 全座席が呼び出しユーザーの有効なホールドであることを検証し、
// 予約・航空券の作成と座席の確定を1トランザクションで行う。
// 途中でホールドが切れていた場合は全体をロールバックする。
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*booking.Booking, error) {
	if len(input.SeatIDs) == 0 {
		return nil, booking.ErrTicketsRequired
	}

	fl, err := s.flightRepo.GetFlightByID(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	if fl.HasDeparted(time.Now()) {
		return nil, flight.ErrFlightDeparted
	}

	// 分散ロックを取得（座席IDをソートしてデッドロックを防止）
	lockKey := buildSeatLockKey(input.SeatIDs)
	if s.lockManager != nil {
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, lockKey, 10*time.Second, 3, 100*time.Millisecond)
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				return nil, booking.ErrSeatNotHeldByUser
			}
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		defer lock.Release(ctx)
	}

	// 全座席がこのユーザーの有効なホールドであることを検証
	// （一部でも欠けていればリクエスト全体を拒否）
	now := time.Now()
	for _, seatID := range input.SeatIDs {
		se, err := s.seatRepo.GetByID(ctx, seatID)
		if err != nil {
			return nil, err
		}
		if se.AirplaneID != fl.AirplaneID {
			return nil, seat.ErrSeatNotFound
		}
		if !se.HeldByUser(input.Actor.UserID, now) {
			return nil, booking.ErrSeatNotHeldByUser
		}
	}

	code, err := pnr.NewUniquePNR(ctx, s.bookingRepo.ExistsPNR)
	if err != nil {
		return nil, err
	}

	b := booking.NewBooking(input.FlightID, input.Actor.UserID, code, s.paymentWindow)
	for _, seatID := range input.SeatIDs {
		ticketNumber, err := pnr.GenerateTicketNumber()
		if err != nil {
			return nil, err
		}
		b.Tickets = append(b.Tickets, booking.NewTicket(seatID, ticketNumber, input.Passenger))
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
		s.recordBooking("create", "error")
		return nil, err
	}
	for _, seatID := range input.SeatIDs {
		// 検証からコミットまでの間にホールドが切れた場合はここで止まり、
		// 予約・航空券・確定済み座席のすべてが巻き戻る
		if err := s.seatRepo.PromoteToBooked(ctx, tx, seatID, input.Actor.UserID); err != nil {
			s.recordBooking("create", "rejected")
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.recordBooking("create", "success")
	s.invalidateCache(ctx, fl.AirplaneID)
	s.publish(ctx, kafkainfra.BookingEvent{
		Type: kafkainfra.EventBookingCreated, BookingID: b.ID, UserID: b.UserID,
		FlightID: b.FlightID, PNR: b.PNR, Status: string(b.Status),
		SeatIDs: input.SeatIDs, ExpiresAt: b.ExpiresAt,
	})
	return b, nil
}

// PayBooking は支払いを記録し、予約を確定させる
//
// 予約行の行ロック下で期限とステータスを再確認するため、スイーパーによる
// キャンセルと競合しても勝者は必ず一方だけになる
func (s *BookingService) PayBooking(ctx context.Context, bookingID string, method booking.PaymentMethod, act actor.Actor) (*booking.Booking, error) {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	b, err := s.bookingRepo.GetByIDForUpdate(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if !act.IsStaff() && b.UserID != act.UserID {
		return nil, booking.ErrNotBookingOwner
	}
	if err := b.Pay(); err != nil {
		s.recordBooking("pay", "rejected")
		return nil, err
	}

	fl, err := s.flightRepo.GetFlightByID(ctx, b.FlightID)
	if err != nil {
		return nil, err
	}
	payment := &booking.Payment{
		BookingID: b.ID,
		Amount:    fl.BasePrice * float64(len(b.ActiveTickets())),
		Method:    method,
		Status:    booking.PaymentStatusCompleted,
		CreatedAt: time.Now(),
	}
	if err := s.bookingRepo.AddPayment(ctx, tx, payment); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.Update(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	b.Payments = append(b.Payments, payment)
	s.recordBooking("pay", "success")
	s.publish(ctx, kafkainfra.BookingEvent{
		Type: kafkainfra.EventBookingConfirmed, BookingID: b.ID, UserID: b.UserID,
		FlightID: b.FlightID, PNR: b.PNR, Status: string(b.Status),
	})
	return b, nil
}

// CancelBooking は予約全体をキャンセルし、座席を解放する
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string, act actor.Actor) (*booking.Booking, error) {
	return s.cancelBooking(ctx, bookingID, act, false)
}

// StaffCancelBooking はスタッフ権限で予約をキャンセルする
// 所有者チェックと出発直前ガードを回避する（出発済みの便は不可）
func (s *BookingService) StaffCancelBooking(ctx context.Context, bookingID string, act actor.Actor) (*booking.Booking, error) {
	if err := act.RequireStaff(); err != nil {
		return nil, err
	}
	return s.cancelBooking(ctx, bookingID, act, true)
}

func (s *BookingService) cancelBooking(ctx context.Context, bookingID string, act actor.Actor, staffOverride bool) (*booking.Booking, error) {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	b, err := s.bookingRepo.GetByIDForUpdate(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if !staffOverride && b.UserID != act.UserID {
		return nil, booking.ErrNotBookingOwner
	}

	fl, err := s.flightRepo.GetFlightByID(ctx, b.FlightID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if fl.HasDeparted(now) {
		return nil, flight.ErrFlightDeparted
	}
	if !staffOverride && fl.WithinLeadTime(now, s.cancelLeadTime) {
		return nil, flight.ErrTooCloseToDeparture
	}

	// 解放対象はキャンセル前のアクティブ座席
	seatIDs := b.ActiveSeatIDs()
	if err := b.Cancel(); err != nil {
		s.recordBooking("cancel", "rejected")
		return nil, err
	}
	if err := s.seatRepo.Release(ctx, tx, seatIDs); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.Update(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.recordBooking("cancel", "success")
	s.invalidateCache(ctx, fl.AirplaneID)
	s.publish(ctx, kafkainfra.BookingEvent{
		Type: kafkainfra.EventBookingCancelled, BookingID: b.ID, UserID: b.UserID,
		FlightID: b.FlightID, PNR: b.PNR, Status: string(b.Status), SeatIDs: seatIDs,
	})
	return b, nil
}

// CancelTicket は航空券を1枚だけキャンセルし、その座席を解放する
// 予約の最後の1枚だった場合は予約ごとキャンセルする
func (s *BookingService) CancelTicket(ctx context.Context, ticketID string, act actor.Actor) (*booking.Booking, bool, error) {
	parent, err := s.bookingRepo.GetByTicketID(ctx, ticketID)
	if err != nil {
		return nil, false, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	b, err := s.bookingRepo.GetByIDForUpdate(ctx, tx, parent.ID)
	if err != nil {
		return nil, false, err
	}
	if !act.IsStaff() && b.UserID != act.UserID {
		return nil, false, booking.ErrNotBookingOwner
	}
	ticket := b.FindTicket(ticketID)
	if ticket == nil {
		return nil, false, booking.ErrTicketNotFound
	}

	fl, err := s.flightRepo.GetFlightByID(ctx, b.FlightID)
	if err != nil {
		return nil, false, err
	}
	now := time.Now()
	if fl.HasDeparted(now) {
		return nil, false, flight.ErrFlightDeparted
	}
	if !act.IsStaff() && fl.WithinLeadTime(now, s.cancelLeadTime) {
		return nil, false, flight.ErrTooCloseToDeparture
	}

	if err := ticket.Cancel(); err != nil {
		return nil, false, err
	}
	if err := s.seatRepo.Release(ctx, tx, []string{ticket.SeatID}); err != nil {
		return nil, false, err
	}

	// 最後のアクティブな1枚をキャンセルした場合は予約ごと畳む
	bookingCancelled := len(b.ActiveTickets()) == 0
	if bookingCancelled {
		if err := b.Cancel(); err != nil && !errors.Is(err, booking.ErrBookingAlreadyCancelled) {
			return nil, false, err
		}
	}
	if err := s.bookingRepo.Update(ctx, tx, b); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateCache(ctx, fl.AirplaneID)
	if bookingCancelled {
		s.publish(ctx, kafkainfra.BookingEvent{
			Type: kafkainfra.EventBookingCancelled, BookingID: b.ID, UserID: b.UserID,
			FlightID: b.FlightID, PNR: b.PNR, Status: string(b.Status),
		})
	}
	return b, bookingCancelled, nil
}

// ReassignSeat はスタッフ権限で航空券の座席を付け替える
// 新しい座席の確定と旧座席の解放を1トランザクションで行い、
// 新座席が確保できない場合は旧座席に一切触れない
func (s *BookingService) ReassignSeat(ctx context.Context, bookingID, ticketID, newSeatID string, act actor.Actor) (*booking.Booking, error) {
	if err := act.RequireStaff(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	b, err := s.bookingRepo.GetByIDForUpdate(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == booking.StatusCancelled {
		return nil, booking.ErrBookingAlreadyCancelled
	}
	ticket := b.FindTicket(ticketID)
	if ticket == nil {
		return nil, booking.ErrTicketNotFound
	}
	if ticket.Status != booking.TicketStatusActive {
		return nil, booking.ErrTicketAlreadyCancelled
	}

	fl, err := s.flightRepo.GetFlightByID(ctx, b.FlightID)
	if err != nil {
		return nil, err
	}
	if fl.HasDeparted(time.Now()) {
		return nil, flight.ErrFlightDeparted
	}

	newSeat, err := s.seatRepo.GetByID(ctx, newSeatID)
	if err != nil {
		return nil, err
	}
	if newSeat.AirplaneID != fl.AirplaneID {
		return nil, seat.ErrSeatNotFound
	}

	oldSeatID := ticket.SeatID
	// 新座席の確定が先。失敗すればロールバックで旧座席は無傷のまま
	if err := s.seatRepo.BookFree(ctx, tx, newSeatID); err != nil {
		return nil, err
	}
	if err := s.seatRepo.Release(ctx, tx, []string{oldSeatID}); err != nil {
		return nil, err
	}
	ticket.SeatID = newSeatID
	if err := s.bookingRepo.Update(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateCache(ctx, fl.AirplaneID)
	s.publish(ctx, kafkainfra.BookingEvent{
		Type: kafkainfra.EventSeatReassigned, BookingID: b.ID, UserID: b.UserID,
		FlightID: b.FlightID, PNR: b.PNR, Status: string(b.Status),
		SeatIDs: []string{oldSeatID, newSeatID},
	})
	return b, nil
}

// CheckInTicket は航空券のチェックインを行い、搭乗券番号を発行する
// 受付は出発24時間前から1時間前まで
func (s *BookingService) CheckInTicket(ctx context.Context, ticketID string, act actor.Actor) (*booking.Ticket, error) {
	parent, err := s.bookingRepo.GetByTicketID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !act.IsStaff() && parent.UserID != act.UserID {
		return nil, booking.ErrNotBookingOwner
	}
	if parent.Status != booking.StatusConfirmed {
		return nil, booking.ErrBookingExpiredOrCancelled
	}

	fl, err := s.flightRepo.GetFlightByID(ctx, parent.FlightID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if fl.DepartureTime.Sub(now) > checkInWindowOpen || fl.WithinLeadTime(now, s.cancelLeadTime) {
		return nil, flight.ErrTooCloseToDeparture
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	b, err := s.bookingRepo.GetByIDForUpdate(ctx, tx, parent.ID)
	if err != nil {
		return nil, err
	}
	ticket := b.FindTicket(ticketID)
	if ticket == nil {
		return nil, booking.ErrTicketNotFound
	}
	boardingPass, err := pnr.GenerateBoardingPass()
	if err != nil {
		return nil, err
	}
	if err := ticket.CheckIn(boardingPass); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.Update(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.publish(ctx, kafkainfra.BookingEvent{
		Type: kafkainfra.EventTicketCheckedIn, BookingID: b.ID, UserID: b.UserID,
		FlightID: b.FlightID, PNR: b.PNR, Status: string(b.Status),
		SeatIDs: []string{ticket.SeatID},
	})
	return ticket, nil
}

// GetBooking は予約を取得する（所有者またはスタッフのみ）
func (s *BookingService) GetBooking(ctx context.Context, bookingID string, act actor.Actor) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !act.IsStaff() && b.UserID != act.UserID {
		return nil, booking.ErrNotBookingOwner
	}
	return b, nil
}

// GetUserBookings はユーザー自身の予約一覧を取得する
func (s *BookingService) GetUserBookings(ctx context.Context, act actor.Actor, limit, offset int) ([]*booking.Booking, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.bookingRepo.GetByUserID(ctx, act.UserID, limit, offset)
}

// SearchByPNR はPNRコードから予約を検索する（スタッフのみ）
func (s *BookingService) SearchByPNR(ctx context.Context, code string, act actor.Actor) (*booking.Booking, error) {
	if err := act.RequireStaff(); err != nil {
		return nil, err
	}
	return s.bookingRepo.GetByPNR(ctx, strings.ToUpper(code))
}

// CancelExpiredBookings は支払い期限切れの予約をキャンセルし、座席を解放する
//
// 期限切れ判定は行ロック取得後に再確認する。直前に支払いが勝った予約は
// ここでは何もしない。個別の失敗はログに残して処理を続行する。
func (s *BookingService) CancelExpiredBookings(ctx context.Context) (int, error) {
	ids, err := s.bookingRepo.GetExpiredPendingIDs(ctx)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, id := range ids {
		if err := s.cancelExpiredBooking(ctx, id); err != nil {
			if errors.Is(err, booking.ErrBookingExpiredOrCancelled) {
				continue // 支払いまたは別のスイープが先に勝った
			}
			logger.Error("期限切れ予約のキャンセルに失敗",
				zap.String("booking_id", id), zap.Error(err))
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

func (s *BookingService) cancelExpiredBooking(ctx context.Context, bookingID string) error {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	b, err := s.bookingRepo.GetByIDForUpdate(ctx, tx, bookingID)
	if err != nil {
		return err
	}
	// 「今この瞬間も期限切れか」を行ロック下で再確認する
	if !b.IsExpired(time.Now()) {
		return booking.ErrBookingExpiredOrCancelled
	}

	seatIDs := b.ActiveSeatIDs()
	if err := b.Cancel(); err != nil {
		return err
	}
	if err := s.seatRepo.Release(ctx, tx, seatIDs); err != nil {
		return err
	}
	if err := s.bookingRepo.Update(ctx, tx, b); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}

	if s.cache != nil {
		if fl, err := s.flightRepo.GetFlightByID(ctx, b.FlightID); err == nil {
			s.invalidateCache(ctx, fl.AirplaneID)
		}
	}
	s.publish(ctx, kafkainfra.BookingEvent{
		Type: kafkainfra.EventBookingCancelled, BookingID: b.ID, UserID: b.UserID,
		FlightID: b.FlightID, PNR: b.PNR, Status: string(b.Status), SeatIDs: seatIDs,
	})
	return nil
}

// ReleaseExpiredHolds は期限切れの座席ホールドを一括解放する
func (s *BookingService) ReleaseExpiredHolds(ctx context.Context) (int, error) {
	return s.seatRepo.ReleaseExpiredHolds(ctx)
}

// CountPendingBookings は支払い待ちの予約数を返す
func (s *BookingService) CountPendingBookings(ctx context.Context) (int, error) {
	return s.bookingRepo.CountPending(ctx)
}

// buildSeatLockKey は座席IDからロックキーを生成（ソートしてデッドロック防止）
func buildSeatLockKey(seatIDs []string) string {
	sorted := make([]string, len(seatIDs))
	copy(sorted, seatIDs)
	sort.Strings(sorted)
	return "seats:" + strings.Join(sorted, ",")
}

func (s *BookingService) invalidateCache(ctx context.Context, airplaneID string) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, airplaneID)
	}
}

func (s *BookingService) publish(ctx context.Context, event kafkainfra.BookingEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn("予約イベントの配信に失敗",
			zap.String("type", event.Type),
			zap.String("booking_id", event.BookingID),
			zap.Error(err))
	}
}

func (s *BookingService) recordBooking(operation, result string) {
	if m := metrics.Get(); m != nil {
		m.BookingsTotal.WithLabelValues(operation, result).Inc()
	}
}
