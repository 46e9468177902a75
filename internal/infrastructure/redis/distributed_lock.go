package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/pkg/metrics"
)

var (
	ErrLockNotAcquired = errors.New("ロックを取得できませんでした")
	ErrLockNotOwned    = errors.New("ロックの所有者ではありません")
)

// DistributedLock はRedis上の分散ロック
// 複数座席をまたぐ予約作成時、同じ座席集合への同時予約を直列化するために使う
// 値にはランダムなトークンを持たせ、他インスタンスのロックを誤って消さないようにする
type DistributedLock struct {
	client *redis.Client
	key    string
	value  string
	ttl    time.Duration
}

// LockManager は分散ロックの取得を担う
type LockManager struct {
	client *redis.Client
}

func NewLockManager(client *redis.Client) *LockManager {
	return &LockManager{client: client}
}

// AcquireLock はSetNXでロックの取得を試みる
// 既に他の保持者がいる場合は ErrLockNotAcquired を返す
func (m *LockManager) AcquireLock(ctx context.Context, key string, ttl time.Duration) (*DistributedLock, error) {
	lockKey := fmt.Sprintf("lock:%s", key)
	token := uuid.New().String()

	start := time.Now()
	ok, err := m.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		observeLock("acquire", "error", start)
		return nil, fmt.Errorf("ロック取得に失敗: %w", err)
	}
	if !ok {
		observeLock("acquire", "failed", start)
		return nil, ErrLockNotAcquired
	}
	observeLock("acquire", "success", start)

	return &DistributedLock{
		client: m.client,
		key:    lockKey,
		value:  token,
		ttl:    ttl,
	}, nil
}

// AcquireLockWithRetry は一定間隔でリトライしながらロックを取得する
// 競合以外のエラーは即座に返す
func (m *LockManager) AcquireLockWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (*DistributedLock, error) {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		lock, err := m.AcquireLock(ctx, key, ttl)
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, ErrLockNotAcquired) {
			return nil, err
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, lastErr
}

// releaseScript はトークンが一致する場合のみキーを削除する
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

// Release はロックを解放する
// TTL切れで他の保持者に移っていた場合は ErrLockNotOwned を返す
func (l *DistributedLock) Release(ctx context.Context) error {
	start := time.Now()
	result, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.value).Int()
	if err != nil {
		observeLock("release", "error", start)
		return fmt.Errorf("ロック解放に失敗: %w", err)
	}
	if result == 0 {
		observeLock("release", "failed", start)
		return ErrLockNotOwned
	}
	observeLock("release", "success", start)
	return nil
}

// extendScript はトークンが一致する場合のみTTLを延長する
var extendScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("PEXPIRE", KEYS[1], ARGV[2])
	end
	return 0
`)

// Extend はロックの有効期限を延長する
func (l *DistributedLock) Extend(ctx context.Context, ttl time.Duration) error {
	result, err := extendScript.Run(ctx, l.client, []string{l.key}, l.value, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("ロック延長に失敗: %w", err)
	}
	if result == 0 {
		return ErrLockNotOwned
	}
	l.ttl = ttl
	return nil
}

func observeLock(operation, status string, start time.Time) {
	if m := metrics.Get(); m != nil {
		m.DistributedLockDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
	}
}
