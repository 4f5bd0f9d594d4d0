package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	ptime "orgcore/internal/platform/time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probe(err error) Pinger { return PingFunc(func(context.Context) error { return err }) }

func readiness(t *testing.T, checks map[string]Pinger) ReadyResponse {
	t.Helper()
	h := &handlers{deps: Deps{
		Clock:  ptime.NewFixed(time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)),
		Checks: checks,
		Order:  []string{"pg", "redis", "docstore"},
	}}
	out, err := h.ready(httptest.NewRequest(stdhttp.MethodGet, "/meta/ready", nil))
	require.NoError(t, err)
	return out.(ReadyResponse)
}

func TestReadyAggregation(t *testing.T) {
	down := errors.New("connection refused")
	cases := []struct {
		name   string
		checks map[string]Pinger
		want   string
	}{
		{"all up", map[string]Pinger{"pg": probe(nil), "redis": probe(nil)}, "ok"},
		{"redis down degrades", map[string]Pinger{"pg": probe(nil), "redis": probe(down)}, "degraded"},
		{"pg down fails", map[string]Pinger{"pg": probe(down), "redis": probe(nil)}, "fail"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, readiness(t, tc.checks).Status)
		})
	}
}

func TestReadySkipsAbsentBackends(t *testing.T) {
	res := readiness(t, map[string]Pinger{"pg": probe(nil)})
	require.Len(t, res.Checks, 3)
	assert.Equal(t, "ok", res.Checks[0].Status)
	assert.Equal(t, "skipped", res.Checks[1].Status)
	assert.Equal(t, "skipped", res.Checks[2].Status)
	assert.Equal(t, "2026-02-01T09:00:00Z", res.Now)
}
