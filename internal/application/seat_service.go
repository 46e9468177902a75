package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/actor"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/flight"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/seat"
	redisinfra "github.com/sanosuguru/go-airline-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/pkg/metrics"
)

const (
	seatCacheTTL = 30 * time.Second
)

// SeatService は座席ホールドと座席マップの読み取りを提供する
//
// ホールドのTTLは支払い猶予より短い固定値で、台帳（seat.Repository）の
// アトミックな条件付き更新に直接乗る。座席状態のキャッシュは持たない。
type SeatService struct {
	seatRepo   seat.Repository
	flightRepo flight.Repository
	cache      *redisinfra.SeatCache
	holdTTL    time.Duration
}

func NewSeatService(sr seat.Repository, fr flight.Repository, cache *redisinfra.SeatCache, holdTTL time.Duration) *SeatService {
	return &SeatService{seatRepo: sr, flightRepo: fr, cache: cache, holdTTL: holdTTL}
}

// HoldSeat は座席を一時的にホールドする
// 同一ユーザーによる有効ホールドへの再試行は冪等成功（期限は延長しない）
func (s *SeatService) HoldSeat(ctx context.Context, seatID string, act actor.Actor) (*seat.Seat, error) {
	held, err := s.seatRepo.TryHold(ctx, seatID, act.UserID, s.holdTTL)
	if err != nil {
		s.recordHold(holdResult(err))
		return nil, err
	}
	s.recordHold("success")
	s.invalidateCache(ctx, held.AirplaneID)
	return held, nil
}

// ReleaseSeat は自分のホールドを明示的に解除する
func (s *SeatService) ReleaseSeat(ctx context.Context, seatID string, act actor.Actor) error {
	if err := s.seatRepo.ReleaseHeldBy(ctx, seatID, act.UserID); err != nil {
		return err
	}
	if s.cache != nil {
		if se, err := s.seatRepo.GetByID(ctx, seatID); err == nil {
			s.invalidateCache(ctx, se.AirplaneID)
		}
	}
	return nil
}

// GetSeatMap は便の座席マップを返す
// 期限切れホールドはスイープ前でも空席として報告する（読み取り時の遅延評価）
func (s *SeatService) GetSeatMap(ctx context.Context, flightID string) ([]*seat.Seat, error) {
	fl, err := s.flightRepo.GetFlightByID(ctx, flightID)
	if err != nil {
		return nil, err
	}
	seats, err := s.seatRepo.GetByAirplaneID(ctx, fl.AirplaneID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for _, se := range seats {
		if se.HoldExpired(now) {
			se.Release()
		}
	}
	return seats, nil
}

// CountFreeSeats は便の空席数を返す（Redisキャッシュ経由、TTL 30秒）
func (s *SeatService) CountFreeSeats(ctx context.Context, flightID string) (int, error) {
	fl, err := s.flightRepo.GetFlightByID(ctx, flightID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		if count, err := s.cache.GetFreeCount(ctx, fl.AirplaneID); err == nil {
			return count, nil
		}
	}
	count, err := s.seatRepo.CountFreeByAirplaneID(ctx, fl.AirplaneID)
	if err != nil {
		return 0, fmt.Errorf("空席数取得に失敗: %w", err)
	}
	if s.cache != nil {
		// キャッシュ更新の失敗は無視してよい（次回読み直すだけ）
		_ = s.cache.SetFreeCount(ctx, fl.AirplaneID, count, seatCacheTTL)
	}
	return count, nil
}

func (s *SeatService) invalidateCache(ctx context.Context, airplaneID string) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, airplaneID)
	}
}

func (s *SeatService) recordHold(result string) {
	if m := metrics.Get(); m != nil {
		m.SeatHoldsTotal.WithLabelValues(result).Inc()
	}
}

func holdResult(err error) string {
	switch {
	case errors.Is(err, seat.ErrSeatAlreadyHeld):
		return "already_held"
	case errors.Is(err, seat.ErrSeatAlreadyBooked):
		return "already_booked"
	default:
		return "error"
	}
}
