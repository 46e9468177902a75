package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/api"
)

// NewTestEcho はバリデーター込みのテスト用Echoインスタンスを作成する
func NewTestEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	return e
}
