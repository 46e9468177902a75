package middleware

import (
	"crypto/subtle"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// MetricsAuth は /metrics エンドポイントのBasic認証設定
type MetricsAuth struct {
	User     string
	Password string
}

// LoadMetricsAuth は環境変数から認証設定を読み込む
func LoadMetricsAuth() *MetricsAuth {
	return &MetricsAuth{
		User:     os.Getenv("METRICS_USER"),
		Password: os.Getenv("METRICS_PASSWORD"),
	}
}

// Enabled は認証を要求するかどうかを返す
// ユーザー名とパスワードの両方が設定されている場合のみ有効
func (a *MetricsAuth) Enabled() bool {
	return a.User != "" && a.Password != ""
}

// MetricsBasicAuth は /metrics 用のBasic認証ミドルウェア
// 認証設定がない場合はパススルーする（ローカル開発用）
func MetricsBasicAuth() echo.MiddlewareFunc {
	auth := LoadMetricsAuth()
	if !auth.Enabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}

	return middleware.BasicAuth(func(username, password string, c echo.Context) (bool, error) {
		// タイミング攻撃を防ぐため ConstantTimeCompare を使用
		userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(auth.User)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(password), []byte(auth.Password)) == 1

		return userMatch && passMatch, nil
	})
}
