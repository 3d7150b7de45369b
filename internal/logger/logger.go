// Package logger configures the process-wide zap logger.
package logger

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type contextKey string

// LoggerKey is the context key holding a *zap.SugaredLogger.
const LoggerKey = contextKey("logger")

var globalLogger *zap.SugaredLogger

// Init builds the global logger from cfg. It writes to stderr unless a path
// is configured, in which case the file is rotated by lumberjack.
func Init(cfg Config) *zap.SugaredLogger {
	writeSyncer := zapcore.AddSync(os.Stderr)

	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err == nil {
			writeSyncer = zapcore.AddSync(&lumberjack.Logger{
				Filename:   cfg.Path,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   cfg.Compress,
			})
		}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	core := zapcore.NewCore(encoder, writeSyncer, level)
	globalLogger = zap.New(core, zap.AddCaller()).Sugar()
	return globalLogger
}

// Sync flushes any buffered log entries.
func Sync() error {
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}

// Get returns the logger stored in ctx, the global logger, or a no-op
// logger when neither is set.
func Get(ctx context.Context) *zap.SugaredLogger {
	if ctx != nil {
		if l, ok := ctx.Value(LoggerKey).(*zap.SugaredLogger); ok {
			return l
		}
	}
	if globalLogger == nil {
		return zap.NewNop().Sugar()
	}
	return globalLogger
}

// WithContext returns a copy of ctx carrying l.
func WithContext(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, LoggerKey, l)
}
