// Package logging builds the bot's zerolog loggers and carries request,
// user and run identifiers through context.Context.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"promo-bot/internal/config"
)

// New returns the root logger. Levels are trace, debug, info, warn and error;
// anything else means info. dev forces console output and disables sampling.
func New(cfg config.LogConfig, dev bool) *zerolog.Logger {
	return newWithWriter(os.Stdout, cfg, dev)
}

func newWithWriter(w io.Writer, cfg config.LogConfig, dev bool) *zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if dev || strings.EqualFold(cfg.Format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(w).Level(level).With().Timestamp().Logger()
	if cfg.Sampling && !dev {
		// warnings and above are never sampled
		l = l.Sample(zerolog.LevelSampler{
			DebugSampler: &zerolog.BasicSampler{N: 100},
			InfoSampler:  &zerolog.BasicSampler{N: 100},
		})
	}
	return &l
}

// ids travel as one value so each With* call copies instead of nesting.
type ids struct {
	trace string
	tgID  int64
	run   string
}

type idsKey struct{}

func idsFrom(ctx context.Context) ids {
	v, _ := ctx.Value(idsKey{}).(ids)
	return v
}

func withIDs(ctx context.Context, edit func(*ids)) context.Context {
	v := idsFrom(ctx)
	edit(&v)
	return context.WithValue(ctx, idsKey{}, v)
}

func WithTraceID(ctx context.Context, id string) context.Context {
	return withIDs(ctx, func(v *ids) { v.trace = id })
}

func WithTgID(ctx context.Context, id int64) context.Context {
	return withIDs(ctx, func(v *ids) { v.tgID = id })
}

func WithRunID(ctx context.Context, id string) context.Context {
	return withIDs(ctx, func(v *ids) { v.run = id })
}

func TraceIDFrom(ctx context.Context) string { return idsFrom(ctx).trace }

// With returns a child of base carrying whichever of trace_id, tg_id and
// run_id are set on ctx.
func With(ctx context.Context, base *zerolog.Logger) *zerolog.Logger {
	v := idsFrom(ctx)
	if v == (ids{}) {
		return base
	}
	c := base.With()
	if v.trace != "" {
		c = c.Str("trace_id", v.trace)
	}
	if v.tgID != 0 {
		c = c.Int64("tg_id", v.tgID)
	}
	if v.run != "" {
		c = c.Str("run_id", v.run)
	}
	l := c.Logger()
	return &l
}

// TraceDuration logs entry and exit of name at trace level:
//
//	defer logging.TraceDuration(logger, "PromotionUC.Run")()
func TraceDuration(logger *zerolog.Logger, name string) func() {
	if logger.GetLevel() > zerolog.TraceLevel {
		return func() {}
	}
	start := time.Now()
	logger.Trace().Str("method", name).Msg("start")
	return func() {
		logger.Trace().Str("method", name).Dur("duration", time.Since(start)).Msg("finish")
	}
}

// Redact keeps the first four and last two characters of a secret. Short
// values are hidden entirely; dev shows everything.
func Redact(s string, dev bool) string {
	switch {
	case dev:
		return s
	case len(s) <= 8:
		return "***"
	}
	return s[:4] + "..." + s[len(s)-2:]
}
