// Package observability builds the structured logger used by the patcher.
package observability

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/RanceJen/roguelike-sg7/internal/config"
)

// NewLogger creates a structured logger that writes every entry, and zap's
// own internal errors, to sink.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console"; sink must be non-nil.
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig, sink io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var (
		enc  zapcore.Encoder
		opts []zap.Option
	)
	switch cfg.Format {
	case "json":
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(encCfg)
	case "console":
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
		opts = append(opts, zap.AddCaller())
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	ws := zapcore.Lock(zapcore.AddSync(sink))
	opts = append(opts, zap.ErrorOutput(ws), zap.AddStacktrace(zapcore.DPanicLevel))
	return zap.New(zapcore.NewCore(enc, ws, zap.NewAtomicLevelAt(level)), opts...), nil
}
