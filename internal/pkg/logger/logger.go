package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// パッケージ全体で共有するロガー
// main がアプリ起動時に NewLogger の結果で差し替える
var log *zap.Logger

func init() {
	log = NewLogger("development")
}

// NewLogger は環境に応じたロガーを作成する
// production はJSON、それ以外は色付きコンソール出力
// LOG_LEVEL 環境変数（debug/info/warn/error）でレベルを上書きできる
func NewLogger(env string) *zap.Logger {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(lvl)); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(level)
		}
	}

	l, err := cfg.Build()
	if err != nil {
		// ロガーが作れない構成はないはずだが、念のためNopにフォールバック
		return zap.NewNop()
	}
	return l
}

func Get() *zap.Logger { return log }

func Set(l *zap.Logger) { log = l }

func Info(msg string, fields ...zap.Field)  { log.Info(msg, fields...) }
func Error(msg string, fields ...zap.Field) { log.Error(msg, fields...) }
func Debug(msg string, fields ...zap.Field) { log.Debug(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { log.Warn(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { log.Fatal(msg, fields...) }

// With は追加フィールド付きの子ロガーを返す
func With(fields ...zap.Field) *zap.Logger { return log.With(fields...) }

// Sync はバッファされたログをフラッシュする（シャットダウン時に呼ぶ）
func Sync() error { return log.Sync() }
