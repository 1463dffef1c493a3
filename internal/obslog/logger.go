// Package obslog builds the zap logger used across the translator,
// router, agent loop and CLI. The default style is zap's development
// (terminal) encoding; a terse logfmt encoding keeps agent-loop traces
// compact, and JSON is available for ingestion by a log pipeline.
package obslog

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Style selects the wire format of emitted log lines.
type Style string

const (
	StyleTerminal Style = "terminal"
	StyleJSON     Style = "json"
	StyleLogfmt   Style = "logfmt"
	StyleNoop     Style = "noop"
)

// Config controls logger construction. The zero value produces a
// terminal-style, info-level logger.
type Config struct {
	Style Style
	Level string
}

// New builds a zap.Logger per cfg. An empty Style defaults to terminal
// and an empty Level to info; an unparseable Level or an unknown Style
// is an error.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("obslog: invalid level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	style := cfg.Style
	if style == "" {
		style = StyleTerminal
	}

	switch style {
	case StyleNoop:
		return zap.NewNop(), nil
	case StyleJSON:
		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(level)
		return zc.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
	case StyleTerminal:
		zc := zap.NewDevelopmentConfig()
		zc.Level = zap.NewAtomicLevelAt(level)
		return zc.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
	case StyleLogfmt:
		encCfg := zapcore.EncoderConfig{
			TimeKey:       "ts",
			LevelKey:      "lvl",
			NameKey:       "logger",
			CallerKey:     "caller",
			MessageKey:    "msg",
			StacktraceKey: "stacktrace",
			LineEnding:    zapcore.DefaultLineEnding,
		}
		core := zapcore.NewCore(newLogfmtEncoder(encCfg), zapcore.AddSync(os.Stderr), level)
		return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)), nil
	default:
		return nil, fmt.Errorf("obslog: unknown style %q", style)
	}
}

// MustNew is New but panics on error, for use in package-level var
// initialization where a bad config is a programmer error.
func MustNew(cfg Config) *zap.Logger {
	l, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return l
}
