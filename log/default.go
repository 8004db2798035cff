package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// A run logs a few hundred lines at most.
const (
	fileMaxSizeMB  = 20
	fileMaxBackups = 7
)

// DefaultEncoder writes one JSON object per line with ISO8601 "ts" and
// capital levels, on stderr and in the file alike.
func DefaultEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapcore.NewJSONEncoder(cfg)
}

// DefaultOption adds the caller to every entry and a stack trace from error
// level up, which is where task failures are logged.
func DefaultOption() []zap.Option {
	return []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	}
}

func rotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    fileMaxSizeMB,
		MaxBackups: fileMaxBackups,
		LocalTime:  true,
		Compress:   true,
	}
}
