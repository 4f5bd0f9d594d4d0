// Package http provides http transport for the audit log
package http

import (
	stdhttp "net/http"
	"strconv"
	"time"

	"orgcore/internal/modkit/httpkit"
	perr "orgcore/internal/platform/errors"
	"orgcore/internal/services/audit/domain"
)

// Register mounts audit endpoints
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}

	httpkit.GetJSON(r, "/events", h.list)
	httpkit.PostJSON[domain.SweepInput](r, "/retention/sweep", h.sweep)
}

type handlers struct{ svc domain.ServicePort }

func parseFilter(r *stdhttp.Request) (domain.Filter, error) {
	q := r.URL.Query()
	f := domain.Filter{Action: q.Get("action"), TargetType: q.Get("targetType"), TargetID: q.Get("targetId")}
	var issues []perr.FieldIssue
	for key, dst := range map[string]*time.Time{"since": &f.Since, "until": &f.Until} {
		if v := q.Get(key); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				issues = append(issues, perr.FieldIssue{Field: key, Message: key + " must be RFC3339"})
				continue
			}
			*dst = t
		}
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			issues = append(issues, perr.FieldIssue{Field: "limit", Message: "limit must be a positive integer"})
		}
		f.Limit = n
	}
	if len(issues) > 0 {
		return f, perr.Invalid(issues...)
	}
	return f, nil
}

// swagger:route GET /audit/events Audit auditList
// @Summary List audit events of the caller's org
// @Tags Audit
// @Produce json
// @Param action query string false "Action"
// @Param targetType query string false "Target type"
// @Param since query string false "RFC3339 lower bound"
// @Param until query string false "RFC3339 upper bound"
// @Param limit query int false "Max rows"
// @Success 200 {array} domain.Event "ok"
// @Security BearerAuth
// @Router /audit/events [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	f, err := parseFilter(r)
	if err != nil {
		return nil, err
	}
	return h.svc.List(r.Context(), a, f)
}

// swagger:route POST /audit/retention/sweep Audit auditSweep
// @Summary Soft delete the org's audit events older than a cutoff
// @Tags Audit
// @Accept json
// @Produce json
// @Param payload body domain.SweepInput true "Cutoff"
// @Success 200 {object} domain.SweepResult "ok"
// @Security BearerAuth
// @Router /audit/retention/sweep [post]
func (h *handlers) sweep(r *stdhttp.Request, in domain.SweepInput) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	return h.svc.SweepRetention(r.Context(), a, in.Before)
}
