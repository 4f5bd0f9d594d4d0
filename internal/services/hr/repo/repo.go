// Package repo provides postgres bindings for domain.Repo
package repo

import (
	"context"

	"orgcore/internal/core/governance"
	"orgcore/internal/modkit/repokit"
	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/store"
	"orgcore/internal/services/hr/domain"
)

type (
	// PG is a postgres binder for domain.Repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

var _ domain.Repo = (*queries)(nil)

// NewPG returns a postgres binder for Repo
func NewPG() repokit.Binder[domain.Repo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.Repo { return &queries{q: q} }

// labels scans the two governance columns
type labels struct{ res, class string }

func (l labels) tag() governance.Tag {
	return governance.Tag{Residency: governance.Residency(l.res), Classification: governance.Classification(l.class)}
}

func res(t governance.Tag) string   { return string(t.Residency) }
func class(t governance.Tag) string { return string(t.Classification) }

// one runs a write that must hit exactly one row
func one(ctx context.Context, q repokit.Queryer, op, sql string, args ...any) error {
	ok, err := store.ExecOne(ctx, q, sql, args...)
	if err != nil {
		return perr.FromPostgres(err, op)
	}
	if !ok {
		return perr.WithOp(perr.ErrNotFound, op)
	}
	return nil
}
