// Package httplog wires the engine's logging through zap. Every warning the
// original C implementation dropped to stderr via HTTP_WARN/HTTP_INFO has a
// one-to-one call site here; nothing the protocol machinery observes is
// silently swallowed.
package httplog

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu  sync.RWMutex
	log *zap.Logger = zap.NewNop()
)

// Options configures the process-wide logger. A zero-value Options logs
// human-readable output to stderr at info level.
type Options struct {
	// Level is one of "debug", "info", "warn", "error". Defaults to "info".
	Level string
	// FilePath, if set, additionally writes JSON lines to a rotating file
	// via lumberjack instead of stderr only.
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
}

// Init installs the process-wide logger. Safe to call once at startup;
// concurrent Get() calls observe either the nop logger or the configured one.
func Init(opts Options) error {
	level := zapcore.InfoLevel
	switch opts.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(os.Stderr), level),
	}

	if opts.FilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    fallback(opts.MaxSizeMB, 50),
			MaxBackups: fallback(opts.MaxBackups, 3),
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(rotator), level))
	}

	l := zap.New(zapcore.NewTee(cores...))

	mu.Lock()
	log = l
	mu.Unlock()
	return nil
}

func fallback(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Get returns the process-wide logger.
func Get() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Sync flushes any buffered log entries. Call before process exit.
func Sync() {
	_ = Get().Sync()
}
