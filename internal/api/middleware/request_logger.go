package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/pkg/logger"
)

// RequestLogger はリクエストごとに構造化ログを1行出力するミドルウェア
// パスはルートテンプレート（/seats/:id/hold）で記録し、個別IDでカーディナリティが
// 爆発しないようにする
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			req := c.Request()
			res := c.Response()

			err := next(c)

			status := res.Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}

			route := c.Path()
			if route == "" {
				route = req.URL.Path
			}

			fields := []zap.Field{
				zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
				zap.String("method", req.Method),
				zap.String("route", route),
				zap.String("path", req.URL.Path),
				zap.Int("status", status),
				zap.Int64("bytes_out", res.Size),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote_ip", c.RealIP()),
				zap.String("user_id", req.Header.Get("X-User-ID")),
			}

			switch {
			case err != nil && status >= 500:
				logger.Error("request failed", append(fields, zap.Error(err))...)
			case err != nil:
				logger.Warn("request rejected", append(fields, zap.Error(err))...)
			case status >= 500:
				logger.Error("request failed", fields...)
			default:
				logger.Info("request", fields...)
			}

			return err
		}
	}
}
