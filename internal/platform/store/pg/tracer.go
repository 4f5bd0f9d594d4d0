package pg

import (
	"context"
	"strings"

	"orgcore/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one executed statement
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives statement events
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs every statement at info and slow ones at warn, whatever the root level
// Arguments are omitted: they carry tenant data
func Tracer(root logger.Logger) QueryTracer {
	return zlTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type zlTracer struct{ log logger.Logger }

func (z zlTracer) OnQuery(ctx context.Context, ev QueryEvent) {
	e := z.log.Info()
	if ev.Slow || ev.Err != nil {
		e = z.log.Warn()
	}
	e.Ctx(ctx).
		Float64("elapsed_ms", float64(ev.ElapsedUS)/1000).
		Bool("slow", ev.Slow).
		Str("sql", compact(ev.SQL)).
		Err(ev.Err).
		Msg("pg query")
}

// compact folds whitespace runs so multi-line SQL fits on one log line
func compact(s string) string { return strings.Join(strings.Fields(s), " ") }
