// Package schema applies the embedded postgres schema
package schema

import (
	"context"
	_ "embed"
	"strings"

	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/logger"
	"orgcore/internal/platform/store"
)

//go:embed schema.sql
var embedded string

// Statements returns the schema split into executable statements
func Statements() []string {
	var out []string
	for _, part := range strings.Split(embedded, "\n;;\n") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Apply runs every statement in one transaction; reapplying is a no-op
func Apply(ctx context.Context, tx store.TxRunner) error {
	stmts := Statements()
	err := tx.Tx(ctx, func(q store.RowQuerier) error {
		for i, s := range stmts {
			if _, err := q.Exec(ctx, s); err != nil {
				return perr.Wrapf(err, perr.ErrorCodeDB, "schema statement %d", i+1)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Named("schema").Info().Int("statements", len(stmts)).Msg("schema applied")
	return nil
}
