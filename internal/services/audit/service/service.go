// Package service contains the audit workflows
package service

import (
	"context"
	"io"
	"strings"
	"time"

	"orgcore/internal/core/authz"
	"orgcore/internal/core/permissions"
	"orgcore/internal/modkit/repokit"
	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/logger"
	ptime "orgcore/internal/platform/time"
	"orgcore/internal/services/audit/domain"
	"orgcore/internal/services/audit/repo"

	"github.com/oklog/ulid/v2"
)

// Service defines the audit service contract
type Service interface {
	domain.ServicePort
}

const (
	defaultLimit = 100
	maxLimit     = 500

	// ActionRetentionSweep is recorded after every sweep
	ActionRetentionSweep = "audit.retention.sweep"
)

// Svc implements Service
type Svc struct {
	db      repokit.TxRunner
	binder  repokit.Binder[repo.Repo]
	clock   ptime.Clock
	entropy io.Reader
}

// Option configures Svc
type Option func(*Svc)

// WithClock sets the clock used for event ids and timestamps
func WithClock(c ptime.Clock) Option { return func(s *Svc) { s.clock = ptime.Or(c) } }

// New constructs the audit service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], opts ...Option) *Svc {
	if db == nil {
		panic("audit.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("audit.Service requires a non nil Repo binder")
	}
	s := &Svc{db: db, binder: binder, clock: ptime.System{}, entropy: ulid.DefaultEntropy()}
	for _, o := range opts {
		o(s)
	}
	return s
}

var policy = repokit.Policy{}

// Append records e for the context's org, actor and source
// Called under an open tenant transaction it writes through that transaction
func (s *Svc) Append(ctx context.Context, a *authz.Context, e domain.Entry) (domain.Event, error) {
	if strings.TrimSpace(e.Action) == "" {
		return domain.Event{}, perr.Validationf("action", "action is required")
	}
	if err := policy.BeforeWrite(a, a.OrgID(), a.Governance()); err != nil {
		return domain.Event{}, err
	}
	now := s.clock.Now().UTC().Truncate(time.Microsecond)
	ev := domain.Event{
		ID:            ulid.MustNew(ulid.Timestamp(now), s.entropy).String(),
		OrgID:         a.OrgID(),
		ActorUserID:   a.UserID(),
		Action:        e.Action,
		TargetType:    e.TargetType,
		TargetID:      e.TargetID,
		AuditSource:   a.AuditSource(),
		CorrelationID: a.CorrelationID(),
		Metadata:      e.Metadata,
		Governance:    a.Governance(),
		OccurredAt:    now,
	}
	err := repokit.InTenant(ctx, s.db, a, s.binder, func(ctx context.Context, r repo.Repo) error {
		return r.Insert(ctx, ev)
	})
	if err != nil {
		return domain.Event{}, err
	}
	return ev, nil
}

// List returns the org's live events, newest first
func (s *Svc) List(ctx context.Context, a *authz.Context, f domain.Filter) ([]domain.Event, error) {
	if err := authz.AssertCapability(a, permissions.CanReadAuditLog); err != nil {
		return nil, err
	}
	switch {
	case f.Limit <= 0:
		f.Limit = defaultLimit
	case f.Limit > maxLimit:
		f.Limit = maxLimit
	}
	var out []domain.Event
	err := repokit.InTenant(ctx, s.db, a, s.binder, func(ctx context.Context, r repo.Repo) error {
		evs, err := r.List(ctx, a.OrgID(), f)
		if err != nil {
			return err
		}
		out, err = repokit.AfterReadAll(a, evs)
		return err
	})
	return out, err
}

// Update always fails; audit events are immutable whatever the caller holds
func (s *Svc) Update(ctx context.Context, _ *authz.Context, id string, _ domain.Entry) error {
	logger.C(ctx).Warn().Str("event_id", id).Msg("audit event update refused")
	return repokit.Immutable{}.Update(ctx, id, nil)
}

// Delete always fails; retention is the only way events leave the log
func (s *Svc) Delete(ctx context.Context, _ *authz.Context, id string) error {
	logger.C(ctx).Warn().Str("event_id", id).Msg("audit event delete refused")
	return repokit.Immutable{}.Delete(ctx, id)
}

// SweepRetention soft deletes the org's events older than before and records the sweep
func (s *Svc) SweepRetention(ctx context.Context, a *authz.Context, before time.Time) (domain.SweepResult, error) {
	if err := authz.AssertCapability(a, permissions.CanPurgeAuditLog); err != nil {
		return domain.SweepResult{}, err
	}
	if err := authz.AssertTenantWrite(a, a.OrgID()); err != nil {
		return domain.SweepResult{}, err
	}
	now := s.clock.Now().UTC()
	if before.IsZero() || before.After(now) {
		return domain.SweepResult{}, perr.Validationf("before", "before must be set and not in the future")
	}

	var n int64
	err := repokit.InTenant(ctx, s.db, a, s.binder, func(ctx context.Context, r repo.Repo) error {
		var err error
		if n, err = r.MarkDeletedBefore(ctx, a.OrgID(), before.UTC(), now); err != nil {
			return err
		}
		// joins this transaction, a failed append keeps the events live
		_, err = s.Append(ctx, a, domain.Entry{
			Action:     ActionRetentionSweep,
			TargetType: "audit",
			Metadata:   map[string]any{"before": before.UTC().Format(time.RFC3339), "retired": n},
		})
		return err
	})
	if err != nil {
		return domain.SweepResult{}, err
	}
	logger.C(ctx).Info().
		Str("tenant_id", a.OrgID()).
		Time("before", before).
		Int64("retired", n).
		Str("audit_source", a.AuditSource()).
		Msg("audit retention sweep")

	return domain.SweepResult{Before: before.UTC(), Retired: n}, nil
}
