// 指示: miu200521358
// Package logging はzerologを用いた共通ロガーを提供する。
package logging

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// EnvLogLevel はログレベル上書き用の環境変数名。
	EnvLogLevel = "MU_BONEMERGE_LOG_LEVEL"
	// EnvLogNoColor は色付き出力無効化用の環境変数名。
	EnvLogNoColor = "MU_BONEMERGE_LOG_NOCOLOR"
)

// Profile はロガー設定の既定値プロファイルを表す。
type Profile int

const (
	// ProfileRuntime は通常実行時のプロファイル。
	ProfileRuntime Profile = iota
	// ProfileTest はテスト実行時のプロファイル。
	ProfileTest
)

// ILogger は書式付きログ出力の契約を表す。
type ILogger interface {
	Debug(format string, params ...any)
	Info(format string, params ...any)
	Warn(format string, params ...any)
	Error(format string, params ...any)
}

// Logger はzerologをILoggerへ適合させる。
type Logger struct {
	logger zerolog.Logger
}

var (
	defaultMu     sync.RWMutex
	defaultLogger ILogger = NewLogger(os.Stderr, zerolog.InfoLevel, false)
)

// NewLogger は出力先とレベルを指定してLoggerを生成する。
func NewLogger(out io.Writer, level zerolog.Level, noColor bool) *Logger {
	writer := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}
	return &Logger{
		logger: zerolog.New(writer).Level(level).With().Timestamp().Str("app", "mu_bonemerge").Logger(),
	}
}

// Debug はデバッグログを出力する。
func (l *Logger) Debug(format string, params ...any) {
	l.logger.Debug().Msgf(format, params...)
}

// Info は情報ログを出力する。
func (l *Logger) Info(format string, params ...any) {
	l.logger.Info().Msgf(format, params...)
}

// Warn は警告ログを出力する。
func (l *Logger) Warn(format string, params ...any) {
	l.logger.Warn().Msgf(format, params...)
}

// Error はエラーログを出力する。
func (l *Logger) Error(format string, params ...any) {
	l.logger.Error().Msgf(format, params...)
}

// DefaultLogger は共通ロガーを返す。
func DefaultLogger() ILogger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefaultLogger は共通ロガーを差し替える。nil は無視する。
func SetDefaultLogger(logger ILogger) {
	if logger == nil {
		return
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// Configure はプロファイルと環境変数から共通ロガーを構成する。
// levelName が空でなければ環境変数より優先する。
func Configure(profile Profile, out io.Writer, levelName string) error {
	level := zerolog.InfoLevel
	noColor := false
	if profile == ProfileTest {
		level = zerolog.DebugLevel
		noColor = true
	}

	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		noColor = v
	}
	if strings.TrimSpace(levelName) != "" {
		lvl, ok := parseLevel(levelName)
		if !ok {
			return fmt.Errorf("ログレベルが不正です: %s", levelName)
		}
		level = lvl
	}

	if out == nil {
		out = os.Stderr
	}
	SetDefaultLogger(NewLogger(out, level, noColor))
	return nil
}

// IsValidLevel はレベル名が解釈可能か判定する。空文字は既定扱いで有効とする。
func IsValidLevel(name string) bool {
	if strings.TrimSpace(name) == "" {
		return true
	}
	_, ok := parseLevel(name)
	return ok
}

// parseLevel はレベル名をzerologのレベルへ変換する。
func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

// parseBool は真偽値文字列を解析する。
func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
