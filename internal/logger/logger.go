// Package logger builds the service's zerolog sink and bridges it to
// log/slog so application code (including the HTTP access log) can log
// through the standard library's logging interface while still emitting
// zerolog's structured JSON.
package logger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level     string
	Console   bool
	SampleN   int
	Component string
}

type ctxKey string

const (
	ctxReqIDKey         ctxKey = "request_id"
	ctxHitClass         ctxKey = "hit_class"
	ctxHitClassRecorder ctxKey = "hit_class_recorder"
)

func WithRequestID(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		reqID = NewID()
	}
	return context.WithValue(ctx, ctxReqIDKey, reqID)
}

// HitClassRecorder is a mutable per-request slot for the tile cache
// outcome ("hit"/"miss"/"coalesced"/"error"). It exists because the
// access-log middleware logs only after the handler it wraps has
// returned, by which point any context.WithValue the handler attached is
// out of reach (contexts are immutable and the handler never sees the
// middleware's own context variable). Installing a *HitClassRecorder into
// the context before calling the handler, the same way httpapi's
// statusRecorder captures the response status, lets WithHitClass write
// through to a slot the middleware already holds.
type HitClassRecorder struct {
	val string
}

// Value returns the hit class recorded so far, or "" if WithHitClass was
// never called for this request.
func (r *HitClassRecorder) Value() string {
	if r == nil {
		return ""
	}
	return r.val
}

// WithHitClassRecorder installs an empty HitClassRecorder into ctx and
// returns both the derived context and the recorder, so a caller can read
// it back once the request it's attached to has completed.
func WithHitClassRecorder(ctx context.Context) (context.Context, *HitClassRecorder) {
	rec := &HitClassRecorder{}
	return context.WithValue(ctx, ctxHitClassRecorder, rec), rec
}

// WithHitClass records hit as the current request's tile cache outcome.
// It writes through to the HitClassRecorder installed by
// WithHitClassRecorder (if any) and also attaches hit as a context value,
// so any logger built from the returned context via FromContext carries
// the hit_class field directly.
func WithHitClass(ctx context.Context, hit string) context.Context {
	if hit == "" {
		return ctx
	}
	if rec, ok := ctx.Value(ctxHitClassRecorder).(*HitClassRecorder); ok {
		rec.val = hit
	}
	return context.WithValue(ctx, ctxHitClass, hit)
}

func NewID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func safeUint32(n int) uint32 {
	if n <= 0 {
		return 0
	}
	if n > int(math.MaxUint32) {
		return math.MaxUint32
	}
	return uint32(n)
}

func Build(cfg Config, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "timestamp"
	zerolog.LevelFieldName = "level"
	zerolog.MessageFieldName = "msg"

	if cfg.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	base := zerolog.New(out)

	if cfg.SampleN > 0 {
		n := safeUint32(cfg.SampleN)
		if n > 0 {
			base = base.Sample(&zerolog.BasicSampler{N: n})
		}
	}

	lvl := strings.ToLower(strings.TrimSpace(cfg.Level))
	switch lvl {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx := base.With().Timestamp()
	if cfg.Component != "" {
		ctx = ctx.Str("component", cfg.Component)
	}
	return ctx.Logger()
}

// FromContext returns a child logger with whatever request-scoped fields
// ctx carries (request_id, hit_class) applied.
func FromContext(ctx context.Context, parent *zerolog.Logger) *zerolog.Logger {
	var base zerolog.Logger
	if parent == nil {
		base = zerolog.New(io.Discard)
	} else {
		base = *parent
	}
	w := base.With()
	if v := ctx.Value(ctxReqIDKey); v != nil {
		if s, ok := v.(string); ok && s != "" {
			w = w.Str("request_id", s)
		}
	}
	if v := ctx.Value(ctxHitClass); v != nil {
		if s, ok := v.(string); ok && s != "" {
			w = w.Str("hit_class", s)
		}
	}
	l := w.Logger()
	return &l
}
