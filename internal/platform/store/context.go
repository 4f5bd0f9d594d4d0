package store

import "context"

type tenantKey struct{}

// WithTenant marks ctx with the org whose rows a transaction may see
func WithTenant(ctx context.Context, orgID string) context.Context {
	return context.WithValue(ctx, tenantKey{}, orgID)
}

// TenantID returns the org set by WithTenant
func TenantID(ctx context.Context) (string, bool) {
	s, _ := ctx.Value(tenantKey{}).(string)
	return s, s != ""
}

type txKey struct{}

type openTx struct {
	orgID string
	q     RowQuerier
}

func withTx(ctx context.Context, orgID string, q RowQuerier) context.Context {
	return context.WithValue(ctx, txKey{}, openTx{orgID: orgID, q: q})
}

// Querier returns the transaction RunInTenant opened on ctx, or def outside one
func Querier(ctx context.Context, def RowQuerier) RowQuerier {
	if t, ok := ctx.Value(txKey{}).(openTx); ok {
		return t.q
	}
	return def
}
