// Package logger はJSON構造化ログのセットアップを提供する。
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Setup は指定レベルのJSON構造化ログ出力のslog.Loggerを生成して返す。
func Setup(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// SetupDefault はJSON構造化ログ出力をグローバルロガーとして設定する。
// devModeの場合はDebugレベル、それ以外はInfoレベルで出力する。
// 本番ではwriterにos.Stdoutを渡すことを想定している。
func SetupDefault(w io.Writer, devMode bool) {
	if w == nil {
		w = os.Stdout
	}
	level := slog.LevelInfo
	if devMode {
		level = slog.LevelDebug
	}
	slog.SetDefault(Setup(w, level))
}
