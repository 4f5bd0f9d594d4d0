package store

import (
	"context"

	perr "orgcore/internal/platform/errors"
)

// setTenantSQL scopes row level security policies to one org for the current transaction
const setTenantSQL = `SELECT set_config('app.org_id', $1, true)`

// RunInTenant runs fn in a transaction whose RLS session variable is pinned to orgID
//
// Called under a transaction already pinned to orgID, fn joins it and commits
// or rolls back with the outer work. A transaction pinned to another org is refused
func RunInTenant(ctx context.Context, tx TxRunner, orgID string, fn func(ctx context.Context, q RowQuerier) error) error {
	if t, ok := ctx.Value(txKey{}).(openTx); ok {
		if t.orgID != orgID {
			return perr.WithOp(perr.New(perr.ErrorCodeForbidden, "transaction is pinned to another org"), "store.run_in_tenant")
		}
		return fn(ctx, t.q)
	}
	ctx = WithTenant(ctx, orgID)
	return tx.Tx(ctx, func(q RowQuerier) error {
		var applied string
		if err := q.QueryRow(ctx, setTenantSQL, orgID).Scan(&applied); err != nil {
			return err
		}
		return fn(withTx(ctx, orgID, q), q)
	})
}
