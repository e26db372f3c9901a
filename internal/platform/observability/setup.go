package observability

import (
	"context"
	"log/slog"
	"time"
)

// Config captures observability toggles.
type Config struct {
	Enabled bool
}

// ShutdownFunc allows callers to tear down any observability exporters.
type ShutdownFunc func(context.Context) error

// Recorder emits log-backed spans and metrics. A nil or disabled Recorder
// is a no-op.
type Recorder struct {
	cfg    Config
	logger *slog.Logger
}

// Setup builds a Recorder over logger.
func Setup(ctx context.Context, cfg Config, logger *slog.Logger) (*Recorder, ShutdownFunc, error) {
	r := &Recorder{cfg: cfg, logger: logger}
	if logger != nil {
		if cfg.Enabled {
			logger.InfoContext(ctx, "[OBSERVABILITY] log-backed spans and metrics enabled")
		} else {
			logger.InfoContext(ctx, "[OBSERVABILITY] disabled")
		}
	}
	return r, func(context.Context) error { return nil }, nil
}

// Enabled reports whether observability has been toggled on.
func (r *Recorder) Enabled() bool {
	return r != nil && r.cfg.Enabled && r.logger != nil
}

// StartSpan records a lightweight span lifecycle around an operation.
func (r *Recorder) StartSpan(ctx context.Context, component, operation string) (context.Context, func(error)) {
	if !r.Enabled() {
		return ctx, func(error) {}
	}

	start := time.Now()
	r.logger.LogAttrs(ctx, slog.LevelDebug, "obs span start",
		slog.String("component", component),
		slog.String("operation", operation),
	)

	return ctx, func(err error) {
		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelError
		}

		attrs := []slog.Attr{
			slog.String("component", component),
			slog.String("operation", operation),
			slog.Duration("duration", time.Since(start)),
		}
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
		}

		r.logger.LogAttrs(ctx, level, "obs span end", attrs...)
	}
}

// RecordMetric emits a best-effort metric datapoint via the configured logger.
func (r *Recorder) RecordMetric(ctx context.Context, name string, value float64, labels map[string]string) {
	if !r.Enabled() {
		return
	}

	attrs := []slog.Attr{
		slog.String("metric", name),
		slog.Float64("value", value),
	}
	for k, v := range labels {
		attrs = append(attrs, slog.String(k, v))
	}

	r.logger.LogAttrs(ctx, slog.LevelDebug, "obs metric", attrs...)
}
