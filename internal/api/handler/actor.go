package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/actor"
)

// 認証ゲートウェイが検証済みの値を付与してくるヘッダー
const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
)

// actorFromRequest はリクエストヘッダーから操作主体を組み立てる
// ロールヘッダーが無い場合はpassengerとして扱う
func actorFromRequest(c echo.Context) (actor.Actor, error) {
	userID := c.Request().Header.Get(headerUserID)
	role := c.Request().Header.Get(headerUserRole)
	if role == "" {
		role = string(actor.RolePassenger)
	}
	act, err := actor.New(userID, actor.Role(role))
	if err != nil {
		return actor.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, ErrorResponse{
			Code:    "UNAUTHENTICATED",
			Message: err.Error(),
		})
	}
	return act, nil
}
