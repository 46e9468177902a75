package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator はリクエストDTOの検証をEchoに組み込む
// 各ハンドラーは Bind 後に c.Validate(&req) を呼ぶ
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate は構造体タグに基づいてバリデーションを実行する
// 失敗時は400のHTTPErrorを返し、Echoのエラーハンドラーに委ねる
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
