package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockSweepService はSweepServiceのモック
type MockSweepService struct {
	mock.Mock
}

func (m *MockSweepService) ReleaseExpiredHolds(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockSweepService) CancelExpiredBookings(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockSweepService) CountPendingBookings(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestNewExpirationSweeper(t *testing.T) {
	mockService := new(MockSweepService)
	interval := 1 * time.Minute

	sweeper := NewExpirationSweeper(mockService, interval)

	assert.NotNil(t, sweeper)
	assert.Equal(t, interval, sweeper.interval)
	assert.NotNil(t, sweeper.stopCh)
	assert.NotNil(t, sweeper.doneCh)
}

func TestExpirationSweeper_Sweep(t *testing.T) {
	t.Run("ホールド解放と予約キャンセルが両方実行される", func(t *testing.T) {
		mockService := new(MockSweepService)
		mockService.On("ReleaseExpiredHolds", mock.Anything).Return(3, nil)
		mockService.On("CancelExpiredBookings", mock.Anything).Return(2, nil)
		mockService.On("CountPendingBookings", mock.Anything).Return(5, nil)

		sweeper := NewExpirationSweeper(mockService, 1*time.Minute)
		sweeper.sweep(context.Background())

		mockService.AssertExpectations(t)
	})

	t.Run("回収対象がない場合も正常に動作する", func(t *testing.T) {
		mockService := new(MockSweepService)
		mockService.On("ReleaseExpiredHolds", mock.Anything).Return(0, nil)
		mockService.On("CancelExpiredBookings", mock.Anything).Return(0, nil)
		mockService.On("CountPendingBookings", mock.Anything).Return(0, nil)

		sweeper := NewExpirationSweeper(mockService, 1*time.Minute)
		sweeper.sweep(context.Background())

		mockService.AssertExpectations(t)
	})

	t.Run("ホールド解放が失敗しても予約キャンセルは実行される", func(t *testing.T) {
		mockService := new(MockSweepService)
		mockService.On("ReleaseExpiredHolds", mock.Anything).Return(0, assert.AnError)
		mockService.On("CancelExpiredBookings", mock.Anything).Return(1, nil)
		mockService.On("CountPendingBookings", mock.Anything).Return(0, nil)

		sweeper := NewExpirationSweeper(mockService, 1*time.Minute)
		sweeper.sweep(context.Background())

		mockService.AssertExpectations(t)
	})
}

func TestExpirationSweeper_StartStop(t *testing.T) {
	t.Run("開始と停止が正常に動作する", func(t *testing.T) {
		mockService := new(MockSweepService)
		mockService.On("ReleaseExpiredHolds", mock.Anything).Return(0, nil).Maybe()
		mockService.On("CancelExpiredBookings", mock.Anything).Return(0, nil).Maybe()
		mockService.On("CountPendingBookings", mock.Anything).Return(0, nil).Maybe()

		sweeper := NewExpirationSweeper(mockService, 50*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go sweeper.Start(ctx)

		time.Sleep(120 * time.Millisecond)
		sweeper.Stop()

		select {
		case <-sweeper.doneCh:
			// 正常に終了
		case <-time.After(1 * time.Second):
			t.Error("sweeper did not stop in time")
		}
	})

	t.Run("コンテキストキャンセルで停止する", func(t *testing.T) {
		mockService := new(MockSweepService)
		mockService.On("ReleaseExpiredHolds", mock.Anything).Return(0, nil).Maybe()
		mockService.On("CancelExpiredBookings", mock.Anything).Return(0, nil).Maybe()
		mockService.On("CountPendingBookings", mock.Anything).Return(0, nil).Maybe()

		sweeper := NewExpirationSweeper(mockService, 50*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			sweeper.Start(ctx)
			close(done)
		}()

		time.Sleep(80 * time.Millisecond)
		cancel()

		select {
		case <-done:
			// 正常に終了
		case <-time.After(1 * time.Second):
			t.Error("sweeper did not stop after context cancel")
		}
	})
}
