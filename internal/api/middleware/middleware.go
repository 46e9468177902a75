package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SetupMiddleware は全ルート共通のミドルウェアを設定する
// メトリクス収集（PrometheusMiddleware）はmain側でルート登録後に適用する
func SetupMiddleware(e *echo.Echo) {
	// リクエストID
	e.Use(middleware.RequestID())

	// 構造化リクエストログ（zap）
	e.Use(RequestLogger())

	// パニックリカバリー
	e.Use(middleware.Recover())

	// リクエストボディ上限（座席ID一覧程度しか受け取らない）
	e.Use(middleware.BodyLimit("64K"))

	// CORS（座席マップを表示するフロントエンド向け）
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.DELETE},
		AllowHeaders: []string{echo.HeaderContentType, "X-User-ID", "X-User-Role"},
	}))
}
