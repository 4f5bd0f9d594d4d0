// Package repokit provides the shared repository seams and the policy base
// every tenant scoped repository applies
package repokit

import (
	"context"

	"orgcore/internal/core/authz"
	"orgcore/internal/platform/store"
)

// Queryer is the read and write surface for SQL repos
type Queryer = store.RowQuerier

// TxRunner can execute a function inside a transaction
type TxRunner = store.TxRunner

type (
	// Rows are the result set of a query
	Rows = store.Rows
	// Row is a single row result
	Row = store.Row
	// CommandTag is the result of a write
	CommandTag = store.CommandTag
)

// InTenant runs fn in a transaction whose row level security is pinned to the
// context's org, with the repo bound to that transaction
func InTenant[T any](ctx context.Context, tx TxRunner, a *authz.Context, b Binder[T], fn func(ctx context.Context, repo T) error) error {
	if err := a.Verify(); err != nil {
		return err
	}
	return store.RunInTenant(ctx, tx, a.OrgID(), func(ctx context.Context, q store.RowQuerier) error {
		return fn(ctx, MustBind(b, q))
	})
}
