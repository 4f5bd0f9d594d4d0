package service

import (
	"context"
	"strings"
	"time"

	"orgcore/internal/core/authz"
	"orgcore/internal/core/governance"
	"orgcore/internal/core/permissions"
	perr "orgcore/internal/platform/errors"
	auditdomain "orgcore/internal/services/audit/domain"
	"orgcore/internal/services/billing/domain"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// labels resolves optional request labels, defaulting to def
func labels(residency, classification string, def governance.Tag) (governance.Tag, error) {
	if residency == "" && classification == "" {
		return def, nil
	}
	if residency == "" {
		residency = string(def.Residency)
	}
	if classification == "" {
		classification = string(def.Classification)
	}
	return governance.ParseTag(residency, classification)
}

func checkWindow(from time.Time, to *time.Time) error {
	if from.IsZero() {
		return perr.Validationf("effectiveFrom", "effectiveFrom is required")
	}
	if to != nil && !to.After(from) {
		return perr.Validationf("effectiveTo", "effectiveTo must be after effectiveFrom")
	}
	return nil
}

func entry(action, targetType, targetID string, meta map[string]any) auditdomain.Entry {
	return auditdomain.Entry{Action: action, TargetType: targetType, TargetID: targetID, Metadata: meta}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// CreatePlan adds a catalog entry owned by the caller's org
func (s *Svc) CreatePlan(ctx context.Context, a *authz.Context, in domain.CreatePlanInput) (domain.BillingPlan, error) {
	if err := authz.AssertCapability(a, permissions.CanManageBillingPlans); err != nil {
		return domain.BillingPlan{}, err
	}
	tag, err := labels(in.DataResidency, in.DataClassification, a.Governance())
	if err != nil {
		return domain.BillingPlan{}, err
	}
	if err := authz.AssertWritable(a, a.OrgID(), tag); err != nil {
		return domain.BillingPlan{}, err
	}
	if err := checkWindow(in.EffectiveFrom, in.EffectiveTo); err != nil {
		return domain.BillingPlan{}, err
	}
	status := in.Status
	if status == "" {
		status = domain.PlanDraft
	}
	now := s.now()
	plan := domain.BillingPlan{
		ID:            uuid.NewString(),
		OrgID:         a.OrgID(),
		StripePriceID: strings.TrimSpace(in.StripePriceID),
		Currency:      strings.ToUpper(in.Currency),
		AmountCents:   in.AmountCents,
		Cadence:       in.Cadence,
		Status:        status,
		EffectiveFrom: in.EffectiveFrom.UTC(),
		EffectiveTo:   utcPtr(in.EffectiveTo),
		Tag:           tag,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	return mutate(ctx, s, a, s.docs, domain.PlansDocument, func(plans []domain.BillingPlan) ([]domain.BillingPlan, domain.BillingPlan, error) {
		if lo.ContainsBy(plans, func(p domain.BillingPlan) bool {
			return p.OrgID == plan.OrgID && p.StripePriceID == plan.StripePriceID
		}) {
			return nil, plan, perr.New(perr.ErrorCodeDuplicateKey, "a plan with this stripe price already exists")
		}
		return append(plans, plan), plan, nil
	}, func(p domain.BillingPlan) auditdomain.Entry {
		return entry("billing.plan.create", "billingPlan", p.ID, map[string]any{"stripePriceId": p.StripePriceID, "status": p.Status})
	})
}

// UpdatePlan changes a plan's status or effective window
// Assignments are never touched; a plan that stops entitling only makes resolution return nothing
func (s *Svc) UpdatePlan(ctx context.Context, a *authz.Context, id string, in domain.UpdatePlanInput) (domain.BillingPlan, error) {
	if err := authz.AssertCapability(a, permissions.CanManageBillingPlans); err != nil {
		return domain.BillingPlan{}, err
	}
	now := s.now()
	return mutate(ctx, s, a, s.docs, domain.PlansDocument, func(plans []domain.BillingPlan) ([]domain.BillingPlan, domain.BillingPlan, error) {
		_, i, ok := lo.FindIndexOf(plans, func(p domain.BillingPlan) bool { return p.ID == id })
		if !ok {
			return nil, domain.BillingPlan{}, authz.AssertLoaded(a, perr.ErrNotFound)
		}
		p := plans[i]
		if err := authz.AssertReadable(a, p); err != nil {
			return nil, p, err
		}
		if err := authz.AssertWritable(a, p.OrgID, p.Tag); err != nil {
			return nil, p, err
		}
		if p.Status == domain.PlanArchived && in.Status != nil && *in.Status != domain.PlanArchived {
			return nil, p, perr.InvalidArgf("an archived plan cannot be reinstated")
		}
		if in.Status != nil {
			p.Status = *in.Status
		}
		if in.EffectiveFrom != nil {
			p.EffectiveFrom = in.EffectiveFrom.UTC()
		}
		switch {
		case in.ClearEffectiveTo:
			p.EffectiveTo = nil
		case in.EffectiveTo != nil:
			p.EffectiveTo = utcPtr(in.EffectiveTo)
		}
		if err := checkWindow(p.EffectiveFrom, p.EffectiveTo); err != nil {
			return nil, p, err
		}
		p.UpdatedAt = now
		next := append([]domain.BillingPlan(nil), plans...)
		next[i] = p
		return next, p, nil
	}, func(p domain.BillingPlan) auditdomain.Entry {
		return entry("billing.plan.update", "billingPlan", p.ID, map[string]any{"status": p.Status})
	})
}

// ListPlans returns the caller org's catalog
func (s *Svc) ListPlans(ctx context.Context, a *authz.Context) ([]domain.BillingPlan, error) {
	if err := authz.AssertCapability(a, permissions.CanReadBilling); err != nil {
		return nil, err
	}
	plans, err := loadList[domain.BillingPlan](ctx, s.docs, domain.PlansDocument)
	if err != nil {
		return nil, err
	}
	own := lo.Filter(plans, func(p domain.BillingPlan, _ int) bool { return p.OrgID == a.OrgID() })
	for _, p := range own {
		if err := authz.AssertReadable(a, p); err != nil {
			return nil, err
		}
	}
	return own, nil
}

// AssignPlan creates a PENDING assignment of one of the caller org's plans to a tenant
func (s *Svc) AssignPlan(ctx context.Context, a *authz.Context, in domain.AssignPlanInput) (domain.Assignment, error) {
	if err := authz.AssertCapability(a, permissions.CanManageBillingPlans); err != nil {
		return domain.Assignment{}, err
	}
	if strings.TrimSpace(in.TenantID) == "" {
		return domain.Assignment{}, perr.Validationf("tenantId", "tenantId is required")
	}
	if err := checkWindow(in.EffectiveFrom, in.EffectiveTo); err != nil {
		return domain.Assignment{}, err
	}
	plans, err := loadList[domain.BillingPlan](ctx, s.docs, domain.PlansDocument)
	if err != nil {
		return domain.Assignment{}, err
	}
	plan, ok := lo.Find(plans, func(p domain.BillingPlan) bool { return p.ID == in.PlanID && p.OrgID == a.OrgID() })
	if !ok {
		return domain.Assignment{}, perr.Validationf("planId", "unknown billing plan")
	}
	if plan.Status == domain.PlanArchived || plan.Status == domain.PlanRetired {
		return domain.Assignment{}, perr.Validationf("planId", "billing plan is no longer assignable")
	}
	tag, err := labels(in.DataResidency, in.DataClassification, plan.Tag)
	if err != nil {
		return domain.Assignment{}, err
	}
	if err := authz.AssertWritable(a, plan.OrgID, tag); err != nil {
		return domain.Assignment{}, err
	}

	now := s.now()
	asg := domain.Assignment{
		ID:            uuid.NewString(),
		Tenant:        in.TenantID,
		PlanID:        plan.ID,
		Status:        domain.AssignmentPending,
		EffectiveFrom: in.EffectiveFrom.UTC(),
		EffectiveTo:   utcPtr(in.EffectiveTo),
		Tag:           tag,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return mutate(ctx, s, a, s.docs, domain.AssignmentsDocument, func(list []domain.Assignment) ([]domain.Assignment, domain.Assignment, error) {
		return append(list, asg), asg, nil
	}, func(x domain.Assignment) auditdomain.Entry {
		return entry("billing.assignment.create", "billingAssignment", x.ID, map[string]any{"tenantId": x.Tenant, "planId": x.PlanID})
	})
}

// EndAssignment retires an assignment of one of the caller org's plans
// Ending a retired assignment returns it unchanged
func (s *Svc) EndAssignment(ctx context.Context, a *authz.Context, id string) (domain.Assignment, error) {
	if err := authz.AssertCapability(a, permissions.CanManageBillingPlans); err != nil {
		return domain.Assignment{}, err
	}
	plans, err := loadList[domain.BillingPlan](ctx, s.docs, domain.PlansDocument)
	if err != nil {
		return domain.Assignment{}, err
	}
	owned := lo.SliceToMap(lo.Filter(plans, func(p domain.BillingPlan, _ int) bool { return p.OrgID == a.OrgID() }),
		func(p domain.BillingPlan) (string, struct{}) { return p.ID, struct{}{} })

	now := s.now()
	return mutate(ctx, s, a, s.docs, domain.AssignmentsDocument, func(list []domain.Assignment) ([]domain.Assignment, domain.Assignment, error) {
		_, i, ok := lo.FindIndexOf(list, func(x domain.Assignment) bool { return x.ID == id })
		if !ok {
			return nil, domain.Assignment{}, authz.AssertLoaded(a, perr.ErrNotFound)
		}
		x := list[i]
		// an assignment names the subscribing tenant; the caller owns it through the plan
		if _, mine := owned[x.PlanID]; !mine {
			return nil, domain.Assignment{}, authz.AssertTenantWrite(a, "")
		}
		if err := authz.AssertCompliance(a, authz.OpWrite, x.Tag); err != nil {
			return nil, domain.Assignment{}, err
		}
		if x.Status == domain.AssignmentRetired {
			return nil, x, nil
		}
		x.Status = domain.AssignmentRetired
		if x.EffectiveTo == nil || x.EffectiveTo.After(now) {
			x.EffectiveTo = &now
		}
		x.UpdatedAt = now
		next := append([]domain.Assignment(nil), list...)
		next[i] = x
		return next, x, nil
	}, func(x domain.Assignment) auditdomain.Entry {
		return entry("billing.assignment.end", "billingAssignment", x.ID, map[string]any{"tenantId": x.Tenant})
	})
}

// ListAssignments returns assignments visible to the caller
//
// Holders of manageBillingPlans see assignments of their org's plans; everyone
// else with readBilling sees only their own org's assignments
func (s *Svc) ListAssignments(ctx context.Context, a *authz.Context, f domain.AssignmentFilter) ([]domain.Assignment, error) {
	if err := authz.AssertCapability(a, permissions.CanReadBilling); err != nil {
		return nil, err
	}
	list, err := loadList[domain.Assignment](ctx, s.docs, domain.AssignmentsDocument)
	if err != nil {
		return nil, err
	}
	match := func(x domain.Assignment) bool {
		return (f.TenantID == "" || x.Tenant == f.TenantID) && (f.Status == "" || x.Status == f.Status)
	}

	if !authz.Can(a, permissions.CanManageBillingPlans) {
		own := lo.Filter(list, func(x domain.Assignment, _ int) bool { return x.Tenant == a.OrgID() && match(x) })
		for _, x := range own {
			if err := authz.AssertReadable(a, x); err != nil {
				return nil, err
			}
		}
		return own, nil
	}

	plans, err := loadList[domain.BillingPlan](ctx, s.docs, domain.PlansDocument)
	if err != nil {
		return nil, err
	}
	owned := lo.SliceToMap(lo.Filter(plans, func(p domain.BillingPlan, _ int) bool { return p.OrgID == a.OrgID() }),
		func(p domain.BillingPlan) (string, struct{}) { return p.ID, struct{}{} })
	out := lo.Filter(list, func(x domain.Assignment, _ int) bool {
		_, mine := owned[x.PlanID]
		return mine && match(x)
	})
	// tenant ownership was settled by the plan filter above
	for _, x := range out {
		if err := authz.AssertCompliance(a, authz.OpRead, x.Tag); err != nil {
			return nil, err
		}
	}
	return out, nil
}
