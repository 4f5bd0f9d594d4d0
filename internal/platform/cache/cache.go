// Package cache provides the org scoped read cache
//
// Every entry is tagged with its org and scope, and invalidation always names
// both. There is deliberately no way to flush the whole cache from here
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"orgcore/internal/core/governance"
	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/logger"
	"orgcore/internal/platform/metrics"

	cachelib "github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
)

// Scope groups cached reads of one kind inside an org
type Scope string

// Scopes with cached read paths
const (
	ScopeChecklistTemplates Scope = "checklistTemplates"
	ScopeChecklistInstances Scope = "checklistInstances"
	ScopeComplianceItems    Scope = "complianceItems"
	ScopeDepartments        Scope = "departments"
	ScopeRoles              Scope = "roles"
)

// Backend is the typed gocache surface the org cache drives
type Backend = cachelib.CacheInterface[string]

// OrgCache tags entries by org and scope
type OrgCache struct {
	backend Backend
	ttl     time.Duration
	log     *logger.Logger
}

// New wraps backend; ttl bounds staleness for entries that miss an invalidation
func New(backend Backend, ttl time.Duration) *OrgCache {
	if backend == nil {
		backend = NewNoop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &OrgCache{backend: backend, ttl: ttl, log: logger.Named("orgcache")}
}

// Type reports the backend kind
func (c *OrgCache) Type() string { return c.backend.GetType() }

func validate(orgID string, scope Scope) error {
	var issues []perr.FieldIssue
	if strings.TrimSpace(orgID) == "" {
		issues = append(issues, perr.FieldIssue{Field: "orgId", Message: "cache tags require an org"})
	}
	if strings.TrimSpace(string(scope)) == "" {
		issues = append(issues, perr.FieldIssue{Field: "scope", Message: "cache tags require a scope"})
	}
	if len(issues) > 0 {
		return perr.Invalid(issues...)
	}
	return nil
}

// Tag is the base tag of an org scope
func Tag(orgID string, scope Scope) string { return "org:" + orgID + ":" + string(scope) }

// QualifiedTag narrows a scope tag to one governance label pair
func QualifiedTag(orgID string, scope Scope, q governance.Tag) string {
	return Tag(orgID, scope) + ":" + string(q.Classification) + ":" + string(q.Residency)
}

func tags(orgID string, scope Scope, qs []governance.Tag) []string {
	out := []string{Tag(orgID, scope)}
	for _, q := range qs {
		out = append(out, QualifiedTag(orgID, scope, q))
	}
	return out
}

// RegisterOrgCacheTag returns the tags a cached read must carry
func (c *OrgCache) RegisterOrgCacheTag(orgID string, scope Scope, qualifiers ...governance.Tag) ([]string, error) {
	if err := validate(orgID, scope); err != nil {
		return nil, err
	}
	return tags(orgID, scope, qualifiers), nil
}

// InvalidateOrgCache drops every entry tagged for (orgID, scope); qualifiers
// additionally drop the narrower tags
func (c *OrgCache) InvalidateOrgCache(ctx context.Context, orgID string, scope Scope, qualifiers ...governance.Tag) error {
	if err := validate(orgID, scope); err != nil {
		return err
	}
	if err := c.backend.Invalidate(ctx, store.WithInvalidateTags(tags(orgID, scope, qualifiers))); err != nil {
		return perr.Infra(err, "invalidate org cache")
	}
	metrics.CacheInvalidations.WithLabelValues(string(scope)).Inc()
	return nil
}

func key(orgID string, scope Scope, k string) string { return Tag(orgID, scope) + ":key:" + k }

// Remember returns the cached value for (orgID, scope, k) or loads, caches and returns it
// Cache failures degrade to a direct load
func Remember[T any](ctx context.Context, c *OrgCache, orgID string, scope Scope, k string, load func(context.Context) (T, error), qualifiers ...governance.Tag) (T, error) {
	var zero T
	tagList, err := c.RegisterOrgCacheTag(orgID, scope, qualifiers...)
	if err != nil {
		return zero, err
	}
	ck := key(orgID, scope, k)

	if raw, err := c.backend.Get(ctx, ck); err == nil && raw != "" {
		var v T
		if jerr := json.Unmarshal([]byte(raw), &v); jerr == nil {
			return v, nil
		}
		c.log.Warn().Str("key", ck).Msg("dropping undecodable cache entry")
		_ = c.backend.Delete(ctx, ck)
	}

	v, err := load(ctx)
	if err != nil {
		return zero, err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}
	if err := c.backend.Set(ctx, ck, string(raw), store.WithTags(tagList), store.WithExpiration(c.ttl)); err != nil {
		c.log.Warn().Err(err).Str("key", ck).Msg("cache set failed")
	}
	return v, nil
}
