// Package storetest provides a transaction runner for service tests whose
// repositories are in memory fakes
package storetest

import (
	"context"
	"errors"
	"sync"

	"orgcore/internal/platform/store"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNoSQL is returned by any statement the fake does not understand
var ErrNoSQL = errors.New("storetest: sql not supported")

// Tx runs fn inline and answers the tenant pinning statement
// It records the orgs transactions were pinned to
type Tx struct {
	mu      sync.Mutex
	Tenants []string
	// Fail makes the next Tx call return this error without running fn
	Fail error
}

type row struct {
	val string
	err error
}

func (r row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) == 1 {
		if s, ok := dest[0].(*string); ok {
			*s = r.val
			return nil
		}
	}
	return ErrNoSQL
}

// Exec implements store.RowQuerier
func (t *Tx) Exec(context.Context, string, ...any) (store.CommandTag, error) {
	return pgconn.NewCommandTag(""), ErrNoSQL
}

// Query implements store.RowQuerier
func (t *Tx) Query(context.Context, string, ...any) (store.Rows, error) { return nil, ErrNoSQL }

// QueryRow answers the set_config call issued by store.RunInTenant
func (t *Tx) QueryRow(_ context.Context, _ string, args ...any) store.Row {
	if len(args) == 1 {
		if org, ok := args[0].(string); ok {
			t.mu.Lock()
			t.Tenants = append(t.Tenants, org)
			t.mu.Unlock()
			return row{val: org}
		}
	}
	return row{err: ErrNoSQL}
}

// Tx implements store.TxRunner
func (t *Tx) Tx(_ context.Context, fn func(q store.RowQuerier) error) error {
	t.mu.Lock()
	fail := t.Fail
	t.Fail = nil
	t.mu.Unlock()
	if fail != nil {
		return fail
	}
	return fn(t)
}
