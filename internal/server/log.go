package server

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"go.uber.org/zap"
)

var _ log.Logger = (*ZapLogger)(nil)

// ZapLogger lets kratos write through the application's zap logger
type ZapLogger struct {
	log *zap.Logger
}

// NewLogger adapts a zap logger to kratos' log.Logger
func NewLogger(logger *zap.Logger) log.Logger {
	return &ZapLogger{log: logger.WithOptions(zap.AddCallerSkip(2))}
}

// Log implements log.Logger. keyvals alternate key and value; a trailing key
// without a value is logged under "extra".
func (l *ZapLogger) Log(level log.Level, keyvals ...interface{}) error {
	var msg string
	fields := make([]zap.Field, 0, len(keyvals)/2+1)
	for i := 0; i < len(keyvals); i += 2 {
		if i+1 >= len(keyvals) {
			fields = append(fields, zap.Any("extra", keyvals[i]))
			break
		}
		key := fmt.Sprint(keyvals[i])
		if key == log.DefaultMessageKey {
			msg = fmt.Sprint(keyvals[i+1])
			continue
		}
		fields = append(fields, zap.Any(key, keyvals[i+1]))
	}

	switch level {
	case log.LevelDebug:
		l.log.Debug(msg, fields...)
	case log.LevelWarn:
		l.log.Warn(msg, fields...)
	case log.LevelError, log.LevelFatal:
		// Fatal would exit the process; kratos decides that, not the adapter.
		l.log.Error(msg, fields...)
	default:
		l.log.Info(msg, fields...)
	}
	return nil
}
