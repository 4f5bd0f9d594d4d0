// Package http provides http transport for billing
package http

import (
	stdhttp "net/http"
	"time"

	"orgcore/internal/modkit/httpkit"
	perr "orgcore/internal/platform/errors"
	"orgcore/internal/services/billing/domain"
)

// Register mounts billing endpoints
func Register(r httpkit.Router, s domain.ServicePort) {
	httpkit.RegisterGovernanceRules()
	h := &handlers{svc: s}

	httpkit.GetJSON(r, "/current", h.current)
	httpkit.GetJSON(r, "/plans", h.listPlans)
	httpkit.PostJSON[domain.CreatePlanInput](r, "/plans", h.createPlan)
	httpkit.PatchJSON[domain.UpdatePlanInput](r, "/plans/{id}", h.updatePlan)
	httpkit.GetJSON(r, "/assignments", h.listAssignments)
	httpkit.PostJSON[domain.AssignPlanInput](r, "/assignments", h.assign)
	httpkit.Post(r, "/assignments/{id}/end", h.end)
}

type handlers struct{ svc domain.ServicePort }

// swagger:route GET /billing/current Billing billingCurrent
// @Summary Resolve the caller org's current plan
// @Description Activates due assignments first. Returns null data when the org has no entitlement
// @Tags Billing
// @Produce json
// @Param asOf query string false "RFC3339 instant, defaults to now"
// @Success 200 {object} domain.Resolution "ok"
// @Security BearerAuth
// @Router /billing/current [get]
func (h *handlers) current(r *stdhttp.Request) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	var opts domain.ResolveOptions
	if v := r.URL.Query().Get("asOf"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, perr.Validationf("asOf", "asOf must be RFC3339")
		}
		opts.AsOf = &t
	}
	return h.svc.ResolveTenantBillingPlan(r.Context(), a, opts)
}

// swagger:route GET /billing/plans Billing billingPlans
// @Summary List the caller org's billing plans
// @Tags Billing
// @Produce json
// @Success 200 {array} domain.BillingPlan "ok"
// @Security BearerAuth
// @Router /billing/plans [get]
func (h *handlers) listPlans(r *stdhttp.Request) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	return h.svc.ListPlans(r.Context(), a)
}

// swagger:route POST /billing/plans Billing billingCreatePlan
// @Summary Create a billing plan
// @Tags Billing
// @Accept json
// @Produce json
// @Param payload body domain.CreatePlanInput true "Plan"
// @Success 201 {object} domain.BillingPlan "created"
// @Security BearerAuth
// @Router /billing/plans [post]
func (h *handlers) createPlan(r *stdhttp.Request, in domain.CreatePlanInput) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	p, err := h.svc.CreatePlan(r.Context(), a, in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(p), nil
}

// swagger:route PATCH /billing/plans/{id} Billing billingUpdatePlan
// @Summary Change a plan's status or effective window
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path string true "Plan id"
// @Param payload body domain.UpdatePlanInput true "Changes"
// @Success 200 {object} domain.BillingPlan "ok"
// @Security BearerAuth
// @Router /billing/plans/{id} [patch]
func (h *handlers) updatePlan(r *stdhttp.Request, in domain.UpdatePlanInput) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	return h.svc.UpdatePlan(r.Context(), a, httpkit.Param(r, "id"), in)
}

// swagger:route GET /billing/assignments Billing billingAssignments
// @Summary List plan assignments visible to the caller
// @Tags Billing
// @Produce json
// @Param tenantId query string false "Tenant"
// @Param status query string false "PENDING, ACTIVE or RETIRED"
// @Success 200 {array} domain.Assignment "ok"
// @Security BearerAuth
// @Router /billing/assignments [get]
func (h *handlers) listAssignments(r *stdhttp.Request) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	f := domain.AssignmentFilter{TenantID: q.Get("tenantId"), Status: domain.AssignmentStatus(q.Get("status"))}
	switch f.Status {
	case "", domain.AssignmentPending, domain.AssignmentActive, domain.AssignmentRetired:
	default:
		return nil, perr.Validationf("status", "status must be PENDING, ACTIVE or RETIRED")
	}
	return h.svc.ListAssignments(r.Context(), a, f)
}

// swagger:route POST /billing/assignments Billing billingAssign
// @Summary Assign a plan to a tenant
// @Tags Billing
// @Accept json
// @Produce json
// @Param payload body domain.AssignPlanInput true "Assignment"
// @Success 201 {object} domain.Assignment "created"
// @Security BearerAuth
// @Router /billing/assignments [post]
func (h *handlers) assign(r *stdhttp.Request, in domain.AssignPlanInput) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	x, err := h.svc.AssignPlan(r.Context(), a, in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(x), nil
}

// swagger:route POST /billing/assignments/{id}/end Billing billingEnd
// @Summary Retire an assignment
// @Tags Billing
// @Produce json
// @Param id path string true "Assignment id"
// @Success 200 {object} domain.Assignment "ok"
// @Security BearerAuth
// @Router /billing/assignments/{id}/end [post]
func (h *handlers) end(r *stdhttp.Request) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	return h.svc.EndAssignment(r.Context(), a, httpkit.Param(r, "id"))
}
