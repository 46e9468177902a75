package actor

import "errors"

// Role は操作主体の権限を表す
// 認証コラボレーターが検証済みのロールを渡してくる前提で、
// エンジン側はこの値だけを信頼する
type Role string

const (
	RolePassenger Role = "passenger"
	RoleStaff     Role = "staff"
)

var (
	ErrUserIDRequired = errors.New("ユーザーIDは必須です")
	ErrInvalidRole    = errors.New("不正なロールです")
	ErrStaffOnly      = errors.New("スタッフ権限が必要です")
)

// Actor は認証済みの操作主体を表す
type Actor struct {
	UserID string
	Role   Role
}

// New は検証付きでActorを作成する
func New(userID string, role Role) (Actor, error) {
	if userID == "" {
		return Actor{}, ErrUserIDRequired
	}
	switch role {
	case RolePassenger, RoleStaff:
	default:
		return Actor{}, ErrInvalidRole
	}
	return Actor{UserID: userID, Role: role}, nil
}

// IsStaff はスタッフ権限を持つかを返す
func (a Actor) IsStaff() bool {
	return a.Role == RoleStaff
}

// RequireStaff はスタッフ権限を要求する
func (a Actor) RequireStaff() error {
	if !a.IsStaff() {
		return ErrStaffOnly
	}
	return nil
}
