package flight

import "errors"

// Flight ドメインのエラー定義
var (
	ErrFlightNotFound       = errors.New("便が見つかりません")
	ErrAirplaneNotFound     = errors.New("機体が見つかりません")
	ErrFlightDeparted       = errors.New("便は既に出発しています")
	ErrTooCloseToDeparture  = errors.New("出発直前のため操作できません")
	ErrFlightNumberRequired = errors.New("便名は必須です")
	ErrAirplaneIDRequired   = errors.New("機体IDは必須です")
	ErrAirportRequired      = errors.New("出発・到着空港は必須です")
	ErrInvalidFlightTime    = errors.New("到着時刻は出発時刻より後である必要があります")
	ErrInvalidBasePrice     = errors.New("運賃は0以上である必要があります")
	ErrModelRequired        = errors.New("機体モデルは必須です")
	ErrInvalidTotalSeats    = errors.New("座席数は1以上である必要があります")
)
