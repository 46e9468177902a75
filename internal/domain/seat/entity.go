package seat

import "time"

// Status は座席の状態を表す
type Status string

const (
	StatusFree   Status = "free"
	StatusHeld   Status = "held"
	StatusBooked Status = "booked"
)

// Category は座席のカテゴリを表す
type Category string

const (
	CategoryStandard     Category = "standard"
	CategoryExtraLegroom Category = "extra_legroom"
)

// Seat は座席エンティティを表す
// 状態の真実はストレージ側（台帳）にあり、このエンティティは
// 取得時点のスナップショットと遷移ルールを持つ
type Seat struct {
	ID         string
	AirplaneID string
	SeatNumber string
	Category   Category
	Status     Status
	HeldBy     *string // ホールド中のユーザーID
	HeldUntil  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int // 楽観的ロック用
}

// NewSeat は新しい座席を作成する
func NewSeat(airplaneID, seatNumber string, category Category) *Seat {
	now := time.Now()
	return &Seat{
		AirplaneID: airplaneID,
		SeatNumber: seatNumber,
		Category:   category,
		Status:     StatusFree,
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    0,
	}
}

// HoldExpired は保持中のホールドが期限切れかを返す
func (s *Seat) HoldExpired(now time.Time) bool {
	return s.Status == StatusHeld && s.HeldUntil != nil && s.HeldUntil.Before(now)
}

// EffectiveStatus は期限切れホールドを空席として評価した状態を返す
// 読み取り時の遅延評価：スイープ前でも期限切れのホールドは空席に見える
func (s *Seat) EffectiveStatus(now time.Time) Status {
	if s.HoldExpired(now) {
		return StatusFree
	}
	return s.Status
}

// HeldByUser は指定ユーザーが有効なホールドを保持しているかを返す
func (s *Seat) HeldByUser(userID string, now time.Time) bool {
	return s.Status == StatusHeld &&
		s.HeldBy != nil && *s.HeldBy == userID &&
		s.HeldUntil != nil && s.HeldUntil.After(now)
}

// Hold は座席をホールド状態にする
func (s *Seat) Hold(userID string, until time.Time) error {
	now := time.Now()
	if s.EffectiveStatus(now) != StatusFree {
		if s.Status == StatusBooked {
			return ErrSeatAlreadyBooked
		}
		return ErrSeatAlreadyHeld
	}
	s.Status = StatusHeld
	s.HeldBy = &userID
	s.HeldUntil = &until
	s.UpdatedAt = now
	return nil
}

// PromoteToBooked はホールド済みの座席を予約確定状態にする
// 呼び出し元のホールドが無効な場合はハードエラー（リトライ不可）
func (s *Seat) PromoteToBooked(userID string) error {
	now := time.Now()
	if s.Status != StatusHeld || s.HoldExpired(now) {
		return ErrHoldExpired
	}
	if s.HeldBy == nil || *s.HeldBy != userID {
		return ErrHoldNotOwned
	}
	s.Status = StatusBooked
	s.HeldBy = nil
	s.HeldUntil = nil
	s.UpdatedAt = now
	return nil
}

// Release は座席を無条件に解放する（既に空席なら何もしない）
func (s *Seat) Release() {
	s.Status = StatusFree
	s.HeldBy = nil
	s.HeldUntil = nil
	s.UpdatedAt = time.Now()
}

// Validate は座席の検証を行う
func (s *Seat) Validate() error {
	if s.AirplaneID == "" {
		return ErrAirplaneIDRequired
	}
	if s.SeatNumber == "" {
		return ErrSeatNumberRequired
	}
	switch s.Category {
	case CategoryStandard, CategoryExtraLegroom:
	default:
		return ErrInvalidCategory
	}
	return nil
}
