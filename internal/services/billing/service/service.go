// Package service implements the billing catalog, assignments and the runtime resolver
package service

import (
	"context"
	"time"

	"orgcore/internal/core/authz"
	"orgcore/internal/modkit/repokit"
	"orgcore/internal/platform/docstore"
	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/logger"
	"orgcore/internal/platform/store"
	ptime "orgcore/internal/platform/time"
	auditdomain "orgcore/internal/services/audit/domain"
	"orgcore/internal/services/billing/domain"
)

// DefaultMaxCASRetries bounds reload and re-derive rounds after a lost save
const DefaultMaxCASRetries = 3

// Service defines the billing service contract
type Service interface {
	domain.ServicePort
}

// Svc implements Service over a document store
type Svc struct {
	docs       docstore.Store
	clock      ptime.Clock
	maxRetries int
	audit      auditdomain.Appender
	tx         repokit.TxRunner
}

var _ Service = (*Svc)(nil)

// Option configures Svc
type Option func(*Svc)

// WithClock sets the clock used for asOf defaults and timestamps
func WithClock(c ptime.Clock) Option { return func(s *Svc) { s.clock = ptime.Or(c) } }

// WithMaxRetries bounds optimistic concurrency retries; values below 1 keep the default
func WithMaxRetries(n int) Option {
	return func(s *Svc) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

// WithAudit records admin writes through ap
func WithAudit(ap auditdomain.Appender) Option { return func(s *Svc) { s.audit = ap } }

// WithTx runs each admin write and its audit append in one tenant transaction on tx
func WithTx(tx repokit.TxRunner) Option { return func(s *Svc) { s.tx = tx } }

// New constructs the billing service
func New(docs docstore.Store, opts ...Option) *Svc {
	if docs == nil {
		panic("billing.Service requires a non nil document store")
	}
	s := &Svc{docs: docs, clock: ptime.System{}, maxRetries: DefaultMaxCASRetries}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Svc) now() time.Time { return s.clock.Now().UTC().Truncate(time.Microsecond) }

func (s *Svc) storage(override docstore.Store) docstore.Store {
	if override != nil {
		return override
	}
	return s.docs
}

// mutate loads doc, applies fn, then appends the audit entry for the result
// and saves it as one unit, retrying lost races up to the bound. fn runs again
// on every retry; a nil list from fn skips the save and the audit entry
func mutate[T any, R any](ctx context.Context, s *Svc, a *authz.Context, st docstore.Store, doc string, fn func([]T) ([]T, R, error), entry func(R) auditdomain.Entry) (R, error) {
	var zero R
	for attempt := 1; ; attempt++ {
		list, cur, err := docstore.LoadJSON[[]T](ctx, st, doc)
		if err != nil {
			return zero, err
		}
		next, out, err := fn(list)
		if err != nil {
			return zero, err
		}
		if next == nil {
			return out, nil
		}
		err = s.atomic(ctx, a, func(ctx context.Context) error {
			if err := s.record(ctx, a, entry(out)); err != nil {
				return err
			}
			_, err := docstore.SaveJSON(ctx, st, cur, next)
			return err
		})
		if err == nil {
			return out, nil
		}
		if !docstore.IsConflict(err) || attempt >= s.maxRetries {
			return zero, err
		}
		logger.C(ctx).Warn().Str("document", doc).Int("attempt", attempt).Msg("billing document save conflicted, retrying")
	}
}

// atomic runs fn in a tenant transaction when the service has one; the
// audit append and a postgres document save then commit or roll back together
func (s *Svc) atomic(ctx context.Context, a *authz.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return store.RunInTenant(ctx, s.tx, a.OrgID(), func(ctx context.Context, _ store.RowQuerier) error {
		return fn(ctx)
	})
}

func (s *Svc) record(ctx context.Context, a *authz.Context, e auditdomain.Entry) error {
	if s.audit == nil {
		return nil
	}
	if _, err := s.audit.Append(ctx, a, e); err != nil {
		return perr.Wrap(err, perr.CodeOf(err), "record billing audit event")
	}
	return nil
}

func loadList[T any](ctx context.Context, st docstore.Store, doc string) ([]T, error) {
	list, _, err := docstore.LoadJSON[[]T](ctx, st, doc)
	return list, err
}
