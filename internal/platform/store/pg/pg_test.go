package pg

import (
	"bytes"
	"context"
	"errors"
	"testing"

	kit "orgcore/internal/platform/testkit"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

func TestOpenRejectsBadURL(t *testing.T) {
	if _, err := Open(context.Background(), Config{URL: "postgres://u:p@localhost:notaport/db"}, nil, nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestOpenAppliesConfigThroughSeam(t *testing.T) {
	var seen *pgxpool.Config
	kit.Swap(t, &newPool, func(_ context.Context, c *pgxpool.Config) (*pgxpool.Pool, error) {
		seen = c
		return nil, errors.New("no database in unit tests")
	})
	_, err := Open(context.Background(), Config{URL: "postgres://u:p@localhost:5432/db", MaxConns: 7}, nil,
		func(c *pgxpool.Config) { c.ConnConfig.RuntimeParams["application_name"] = "orgcore-test" })
	if err == nil {
		t.Fatalf("seam error should propagate")
	}
	if seen == nil || seen.MaxConns != 7 || seen.ConnConfig.RuntimeParams["application_name"] != "orgcore-test" {
		t.Fatalf("config not applied: %+v", seen)
	}
}

func TestTracerOmitsArgsAndCompactsSQL(t *testing.T) {
	var buf bytes.Buffer
	tr := Tracer(zerolog.New(&buf))
	tr.OnQuery(context.Background(), QueryEvent{
		SQL:  "SELECT id\n\t FROM platform_settings\n WHERE id = $1",
		Args: []any{"secret-org"},
		Slow: true,
	})
	out := buf.String()
	kit.MustContain(t, out, `"sql":"SELECT id FROM platform_settings WHERE id = $1"`)
	kit.MustContain(t, out, `"level":"warn"`)
	if bytes.Contains(buf.Bytes(), []byte("secret-org")) {
		t.Fatalf("args leaked into log: %s", out)
	}
}

func TestCloseNil(t *testing.T) {
	var p *PG
	p.Close()
	(&PG{}).Close()
}
