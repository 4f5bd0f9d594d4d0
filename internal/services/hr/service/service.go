// Package service implements the HR use cases over the authorization core
//
// Every use case checks capability or delegation first, then runs its repo
// calls in a tenant pinned transaction whose reads pass the record guards.
// Writes append their audit event inside the same transaction, so a failed
// append rolls the write back
package service

import (
	"context"
	"time"

	"orgcore/internal/core/authz"
	"orgcore/internal/modkit/repokit"
	"orgcore/internal/platform/cache"
	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/ratelimit"
	ptime "orgcore/internal/platform/time"
	auditdomain "orgcore/internal/services/audit/domain"
	"orgcore/internal/services/hr/domain"
)

// Service defines the HR service contract
type Service interface {
	domain.ServicePort
}

// Svc implements Service
type Svc struct {
	db      repokit.TxRunner
	binder  repokit.Binder[domain.Repo]
	clock   ptime.Clock
	limiter *ratelimit.Limiter
	audit   auditdomain.Appender

	// writes on records without cached reads
	policy repokit.Policy
	// department reads go through the org cache
	departments repokit.Policy
}

var _ Service = (*Svc)(nil)

// Options are the collaborators of Svc; nil members fall back to process local defaults
type Options struct {
	Clock   ptime.Clock
	Limiter *ratelimit.Limiter
	Cache   *cache.OrgCache
	Audit   auditdomain.Appender
}

// New constructs the HR service
func New(db repokit.TxRunner, binder repokit.Binder[domain.Repo], opt Options) *Svc {
	if db == nil {
		panic("hr.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("hr.Service requires a non nil Repo binder")
	}
	if opt.Audit == nil {
		panic("hr.Service requires an audit Appender")
	}
	if opt.Limiter == nil {
		opt.Limiter = ratelimit.New(ratelimit.Config{}, nil)
	}
	if opt.Cache == nil {
		opt.Cache = cache.New(nil, 0)
	}
	return &Svc{
		db:          db,
		binder:      binder,
		clock:       ptime.Or(opt.Clock),
		limiter:     opt.Limiter,
		audit:       opt.Audit,
		departments: repokit.Policy{Cache: opt.Cache, Scope: cache.ScopeDepartments},
	}
}

func (s *Svc) now() time.Time { return s.clock.Now().UTC().Truncate(time.Microsecond) }

func (s *Svc) tx(ctx context.Context, a *authz.Context, fn func(ctx context.Context, r domain.Repo) error) error {
	return repokit.InTenant(ctx, s.db, a, s.binder, fn)
}

// record appends the audit event for a write; call it with the transaction's ctx
func (s *Svc) record(ctx context.Context, a *authz.Context, action, targetType, targetID string, meta map[string]any) error {
	if _, err := s.audit.Append(ctx, a, auditdomain.Entry{Action: action, TargetType: targetType, TargetID: targetID, Metadata: meta}); err != nil {
		return perr.Wrap(err, perr.CodeOf(err), "record hr audit event")
	}
	return nil
}

// throttle applies the advisory mutation limit for action
func (s *Svc) throttle(ctx context.Context, a *authz.Context, action string) error {
	return s.limiter.Enforce(ctx, ratelimit.Key{OrgID: a.OrgID(), UserID: a.UserID(), IP: a.IPAddress(), Action: action})
}
