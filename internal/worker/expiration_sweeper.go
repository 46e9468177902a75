package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/pkg/metrics"
)

// SweepService は期限切れリソースの回収処理を提供するインターフェース
type SweepService interface {
	ReleaseExpiredHolds(ctx context.Context) (int, error)
	CancelExpiredBookings(ctx context.Context) (int, error)
	CountPendingBookings(ctx context.Context) (int, error)
}

// ExpirationSweeper は期限切れホールドと支払い期限切れ予約を回収するワーカー
//
// 回収は読み取り時の遅延評価を補完する背景処理であり、スイープが遅れても
// 台帳の見え方（EffectiveStatus）は正しいままになる
type ExpirationSweeper struct {
	sweepService SweepService
	interval     time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}
}

// NewExpirationSweeper は新しいスイーパーを作成
func NewExpirationSweeper(ss SweepService, interval time.Duration) *ExpirationSweeper {
	return &ExpirationSweeper{
		sweepService: ss,
		interval:     interval,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start はスイーパーを開始
func (s *ExpirationSweeper) Start(ctx context.Context) {
	logger.Info("期限切れスイーパー開始",
		zap.Duration("interval", s.interval),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("期限切れスイーパー停止（コンテキストキャンセル）")
			return
		case <-s.stopCh:
			logger.Info("期限切れスイーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop はスイーパーを停止
func (s *ExpirationSweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// sweep は期限切れホールドの解放と期限切れ予約のキャンセルを1回実行
func (s *ExpirationSweeper) sweep(ctx context.Context) {
	log := logger.Get()
	log.Debug("期限切れスイープ開始")

	holds, err := s.sweepService.ReleaseExpiredHolds(ctx)
	if err != nil {
		log.Error("期限切れホールドの解放に失敗", zap.Error(err))
	} else if holds > 0 {
		log.Info("期限切れホールドを解放", zap.Int("count", holds))
		s.recordSwept("hold", holds)
	}

	bookings, err := s.sweepService.CancelExpiredBookings(ctx)
	if err != nil {
		log.Error("期限切れ予約のキャンセルに失敗", zap.Error(err))
	} else if bookings > 0 {
		log.Info("期限切れ予約をキャンセル", zap.Int("count", bookings))
		s.recordSwept("booking", bookings)
	}

	pending, err := s.sweepService.CountPendingBookings(ctx)
	if err != nil {
		log.Debug("支払い待ち予約数の取得に失敗", zap.Error(err))
		return
	}
	if m := metrics.Get(); m != nil {
		m.PendingBookings.Set(float64(pending))
	}
}

func (s *ExpirationSweeper) recordSwept(kind string, count int) {
	if m := metrics.Get(); m != nil {
		m.SweptTotal.WithLabelValues(kind).Add(float64(count))
	}
}
