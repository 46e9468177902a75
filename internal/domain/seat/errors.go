package seat

import "errors"

// Seat ドメインのエラー定義
var (
	ErrSeatNotFound       = errors.New("座席が見つかりません")
	ErrSeatAlreadyHeld    = errors.New("座席は他のユーザーがホールド中です")
	ErrSeatAlreadyBooked  = errors.New("座席は既に予約済みです")
	ErrHoldExpired        = errors.New("座席ホールドの有効期限が切れています")
	ErrHoldNotOwned       = errors.New("座席ホールドの所有者ではありません")
	ErrAirplaneIDRequired = errors.New("機体IDは必須です")
	ErrSeatNumberRequired = errors.New("座席番号は必須です")
	ErrInvalidCategory    = errors.New("不正な座席カテゴリです")
)
