package booking

import "errors"

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound           = errors.New("予約が見つかりません")
	ErrTicketNotFound            = errors.New("航空券が見つかりません")
	ErrBookingAlreadyPaid        = errors.New("予約は既に支払い済みです")
	ErrBookingAlreadyCancelled   = errors.New("予約は既にキャンセルされています")
	ErrBookingExpiredOrCancelled = errors.New("予約は期限切れまたはキャンセル済みです")
	ErrSeatNotHeldByUser         = errors.New("座席がユーザーによってホールドされていません")
	ErrTicketAlreadyCancelled    = errors.New("航空券は既にキャンセルされています")
	ErrAlreadyCheckedIn          = errors.New("既にチェックイン済みです")
	ErrNotBookingOwner           = errors.New("この予約の所有者ではありません")
	ErrPNRAlreadyExists          = errors.New("同じPNRの予約が既に存在します")
	ErrFlightIDRequired          = errors.New("便IDは必須です")
	ErrUserIDRequired            = errors.New("ユーザーIDは必須です")
	ErrPNRRequired               = errors.New("PNRは必須です")
	ErrTicketsRequired           = errors.New("航空券は1枚以上必要です")
)
