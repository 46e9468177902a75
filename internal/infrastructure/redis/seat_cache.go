package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// SeatCache は機体ごとの空席数キャッシュを管理する
// 座席マップ画面のポーリング負荷をDBから逃がすためのもので、
// 台帳の正しさには一切関与しない
type SeatCache struct {
	client *redis.Client
}

// NewSeatCache は新しいSeatCacheインスタンスを作成する
func NewSeatCache(client *redis.Client) *SeatCache {
	return &SeatCache{client: client}
}

// GetFreeCount は機体の空席数をキャッシュから取得する
func (c *SeatCache) GetFreeCount(ctx context.Context, airplaneID string) (int, error) {
	key := c.freeCountKey(airplaneID)
	val, err := c.client.Get(ctx, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetFreeCount は機体の空席数をキャッシュに保存する
func (c *SeatCache) SetFreeCount(ctx context.Context, airplaneID string, count int, ttl time.Duration) error {
	key := c.freeCountKey(airplaneID)
	if err := c.client.Set(ctx, key, count, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は機体の空席数キャッシュを無効化する
func (c *SeatCache) Invalidate(ctx context.Context, airplaneID string) error {
	key := c.freeCountKey(airplaneID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *SeatCache) freeCountKey(airplaneID string) string {
	return fmt.Sprintf("seats:free:%s", airplaneID)
}
