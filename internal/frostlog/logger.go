// Package frostlog wraps go.uber.org/zap behind a small interface so the
// rest of the module depends on a logging contract, not a concrete library,
// mirroring the optional Logger field of the teacher's gjkr package
// (threshold-network-roast-go/gjkr/member.go).
package frostlog

import (
	"go.uber.org/zap"
)

// Logger is the logging contract used throughout frostd. It intentionally
// exposes only leveled, structured calls (key-value pairs), never
// printf-style formatting, matching zap's SugaredLogger convention.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	With(keysAndValues ...interface{}) Logger
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// New builds a production zap logger (JSON encoding, info level) wrapped as
// a Logger.
func New() Logger {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	return &zapLogger{sugar: l.Sugar()}
}

// NewDevelopment builds a human-readable console logger, used by
// cmd/frostnode when FROSTD_DEV is set.
func NewDevelopment() Logger {
	l, err := zap.NewDevelopment()
	if err != nil {
		l = zap.NewNop()
	}
	return &zapLogger{sugar: l.Sugar()}
}

// NewNop builds a logger that discards everything, for tests.
func NewNop() Logger {
	return &zapLogger{sugar: zap.NewNop().Sugar()}
}

func (z *zapLogger) Debugw(msg string, kv ...interface{}) { z.sugar.Debugw(msg, kv...) }
func (z *zapLogger) Infow(msg string, kv ...interface{})  { z.sugar.Infow(msg, kv...) }
func (z *zapLogger) Warnw(msg string, kv ...interface{})  { z.sugar.Warnw(msg, kv...) }
func (z *zapLogger) Errorw(msg string, kv ...interface{}) { z.sugar.Errorw(msg, kv...) }

func (z *zapLogger) With(kv ...interface{}) Logger {
	return &zapLogger{sugar: z.sugar.With(kv...)}
}
