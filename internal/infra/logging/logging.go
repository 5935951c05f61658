// File: internal/infra/logging/logging.go
package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"vendpay-gateway/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New creates a zerolog logger configured from config.
// Supports "trace" | "debug" | "info" | "warn" | "error" levels
// and "json" | "console" formats. Sampling can be enabled to reduce noise in prod.
func New(cfg config.LogConfig, dev bool) *zerolog.Logger {
	level, _ := zerolog.ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	var base zerolog.Logger
	if strings.ToLower(cfg.Format) == "console" || dev {
		out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		base = zerolog.New(out).With().Timestamp().Logger()
	} else {
		base = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	if cfg.Sampling && !dev {
		// Simple sampling: keep first 100, then 1 every 100 thereafter.
		sampled := base.Sample(&zerolog.BasicSampler{N: 100})
		return &sampled
	}
	return &base
}

// With attaches common context fields such as trace_id, bill_id, channel.
type ctxKey string

const (
	ctxTraceID ctxKey = "trace_id"
	ctxBillID  ctxKey = "bill_id"
	ctxChannel ctxKey = "channel"
)

func With(ctx context.Context, base *zerolog.Logger) *zerolog.Logger {
	l := base.With()
	if v := ctx.Value(ctxTraceID); v != nil {
		l = l.Str("trace_id", v.(string))
	}
	if v := ctx.Value(ctxBillID); v != nil {
		l = l.Int64("bill_id", v.(int64))
	}
	if v := ctx.Value(ctxChannel); v != nil {
		l = l.Str("channel", v.(string))
	}
	logger := l.Logger()
	return &logger
}

// TraceDuration logs start and end with elapsed duration at TRACE level.
// Usage: defer logging.TraceDuration(logger, "ConfirmUC.Confirm")()
func TraceDuration(logger *zerolog.Logger, name string) func() {
	start := time.Now()
	logger.Trace().Str("method", name).Msg("start")
	return func() {
		elapsed := time.Since(start)
		logger.Trace().Str("method", name).Dur("duration", elapsed).Msg("finish")
	}
}

// Helpers to put IDs into context.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxTraceID, id)
}
func WithBillID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxBillID, id)
}
func WithChannel(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxChannel, id)
}

// CarryTrace copies the trace id (if any) from src onto dst. Used when a
// handler switches from the request context to a longer-lived one but the
// logs should still correlate with the originating request.
func CarryTrace(src, dst context.Context) context.Context {
	if v := src.Value(ctxTraceID); v != nil {
		return context.WithValue(dst, ctxTraceID, v)
	}
	return dst
}

// Expose global (optional). Prefer injection where possible.
var Global = log.Logger
