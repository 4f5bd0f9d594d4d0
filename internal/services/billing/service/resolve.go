package service

import (
	"context"
	"time"

	"orgcore/internal/core/authz"
	"orgcore/internal/platform/docstore"
	"orgcore/internal/platform/logger"
	"orgcore/internal/platform/metrics"
	"orgcore/internal/services/billing/domain"

	"github.com/samber/lo"
)

// ResolveTenantBillingPlan returns the caller org's current entitlement
//
// It runs the activation step first and persists any transition as one
// document write. A missing, inactive or non compliant entitlement yields
// nil without error; only infrastructure failures are returned
func (s *Svc) ResolveTenantBillingPlan(ctx context.Context, a *authz.Context, opts domain.ResolveOptions) (*domain.Resolution, error) {
	if err := a.Verify(); err != nil {
		return nil, err
	}
	asOf := s.now()
	if opts.AsOf != nil {
		asOf = opts.AsOf.UTC()
	}
	st := s.storage(opts.Storage)
	tenant := a.OrgID()

	assignments, err := s.activate(ctx, st, tenant, asOf)
	if err != nil {
		return nil, err
	}
	log := logger.C(ctx).Debug().Str("tenant_id", tenant).Time("as_of", asOf)

	current, ok := lo.Find(assignments, func(x domain.Assignment) bool {
		return x.Tenant == tenant && x.Status == domain.AssignmentActive
	})
	if !ok {
		log.Msg("no active billing assignment")
		return nil, nil
	}
	if err := authz.AssertReadable(a, current); err != nil {
		log.Str("assignment_id", current.ID).Msg("billing assignment not readable")
		return nil, nil
	}

	plans, _, err := docstore.LoadJSON[[]domain.BillingPlan](ctx, st, domain.PlansDocument)
	if err != nil {
		return nil, err
	}
	plan, ok := lo.Find(plans, func(p domain.BillingPlan) bool { return p.ID == current.PlanID })
	if !ok || !plan.Entitles(asOf) {
		log.Str("plan_id", current.PlanID).Msg("billing plan not entitling")
		return nil, nil
	}
	if err := authz.AssertCompliance(a, authz.OpRead, plan.GovernanceTag()); err != nil {
		log.Str("plan_id", plan.ID).Msg("billing plan not readable")
		return nil, nil
	}
	return &domain.Resolution{Assignment: current, Plan: plan}, nil
}

// activate converges the stored assignments for tenant at asOf
//
// A lost race reloads and derives again. Once the bound is spent the
// in memory derivation is used as is; activation is idempotent, so the
// concurrent writer has stored the same outcome or the next read converges
func (s *Svc) activate(ctx context.Context, st docstore.Store, tenant string, asOf time.Time) ([]domain.Assignment, error) {
	for attempt := 1; ; attempt++ {
		list, cur, err := docstore.LoadJSON[[]domain.Assignment](ctx, st, domain.AssignmentsDocument)
		if err != nil {
			return nil, err
		}
		next, ch := domain.ActivateDue(list, tenant, asOf)
		if ch.Historical {
			logger.C(ctx).Debug().Str("tenant_id", tenant).Time("as_of", asOf).Msg("billing asOf predates active assignment, evaluating read only")
		}
		if !ch.Changed() {
			return next, nil
		}

		_, err = docstore.SaveJSON(ctx, st, cur, next)
		switch {
		case err == nil:
			metrics.BillingTransitions.WithLabelValues("activated").Add(float64(len(ch.Activated)))
			metrics.BillingTransitions.WithLabelValues("retired").Add(float64(len(ch.Retired)))
			logger.C(ctx).Info().
				Str("tenant_id", tenant).
				Time("as_of", asOf).
				Strs("activated", ch.Activated).
				Strs("retired", ch.Retired).
				Msg("billing assignments transitioned")
			return next, nil
		case !docstore.IsConflict(err):
			return nil, err
		}

		logger.C(ctx).Warn().Str("tenant_id", tenant).Int("attempt", attempt).Msg("billing activation conflicted")
		if attempt >= s.maxRetries {
			logger.C(ctx).Warn().Str("tenant_id", tenant).Msg("billing activation retries spent, using derived state")
			return next, nil
		}
	}
}
