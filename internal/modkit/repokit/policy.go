package repokit

import (
	"context"

	"orgcore/internal/core/authz"
	"orgcore/internal/core/governance"
	"orgcore/internal/platform/cache"
	perr "orgcore/internal/platform/errors"
)

// ErrImmutable rejects updates and deletes of append only records
var ErrImmutable = perr.New(perr.ErrorCodeForbidden, "records are append only")

// Policy is the behaviour every tenant scoped repository shares
// Scope is empty for repositories without cached read paths
type Policy struct {
	Cache *cache.OrgCache
	Scope cache.Scope
}

// BeforeWrite checks the write target org and labels against the context
func (p Policy) BeforeWrite(a *authz.Context, orgID string, tag governance.Tag) error {
	return authz.AssertWritable(a, orgID, tag)
}

// AfterRead checks a loaded record; a foreign or over-classified record raises, it is never filtered
func AfterRead[T authz.Record](a *authz.Context, rec T) (T, error) {
	if err := authz.AssertReadable(a, rec); err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

// AfterLoad finishes a by id lookup: a missing row is denied exactly like a
// foreign one, then the record goes through AfterRead
func AfterLoad[T authz.Record](a *authz.Context, rec T, err error) (T, error) {
	if err != nil {
		var zero T
		return zero, authz.AssertLoaded(a, err)
	}
	return AfterRead(a, rec)
}

// AfterReadAll applies AfterRead to every record
func AfterReadAll[T authz.Record](a *authz.Context, recs []T) ([]T, error) {
	for _, r := range recs {
		if err := authz.AssertReadable(a, r); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

// AfterWrite drops the org's cached reads for the policy scope
func (p Policy) AfterWrite(ctx context.Context, orgID string, tags ...governance.Tag) error {
	if p.Cache == nil || p.Scope == "" {
		return nil
	}
	return p.Cache.InvalidateOrgCache(ctx, orgID, p.Scope, tags...)
}

// Cached reads through the org cache under the policy scope; the loaded
// records are still checked on every read
func Cached[T authz.Record](ctx context.Context, p Policy, a *authz.Context, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if err := a.Verify(); err != nil {
		return nil, err
	}
	if p.Cache == nil || p.Scope == "" {
		recs, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return AfterReadAll(a, recs)
	}
	recs, err := cache.Remember(ctx, p.Cache, a.OrgID(), p.Scope, key, load, a.Governance())
	if err != nil {
		return nil, err
	}
	return AfterReadAll(a, recs)
}

// Immutable is embedded by append only repositories
type Immutable struct{}

// Update always fails
func (Immutable) Update(context.Context, string, any) error { return ErrImmutable }

// Delete always fails
func (Immutable) Delete(context.Context, string) error { return ErrImmutable }
