// Package http provides http transport for hr
package http

import (
	stdhttp "net/http"

	"orgcore/internal/core/authz"
	"orgcore/internal/modkit/httpkit"
	"orgcore/internal/services/hr/domain"
)

// Register mounts hr endpoints
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}

	httpkit.GetJSON(r, "/profiles", h.listProfiles)
	httpkit.GetJSON(r, "/profiles/{id}", h.getProfile)
	httpkit.PatchJSON[domain.UpdateProfileInput](r, "/profiles/{id}", h.updateProfile)

	httpkit.GetJSON(r, "/absences", h.listAbsences)
	httpkit.PostJSON[domain.RequestAbsenceInput](r, "/absences", h.requestAbsence)
	httpkit.Post(r, "/absences/{id}/cancel", h.cancelAbsence)
	httpkit.PostJSON[domain.DecideAbsenceInput](r, "/absences/{id}/decision", h.decideAbsence)

	httpkit.PostJSON[domain.LogTimeInput](r, "/time-entries", h.logTime)
	httpkit.Post(r, "/time-entries/{id}/approve", h.approveTime)

	httpkit.GetJSON(r, "/training", h.listTraining)
	httpkit.PostJSON[domain.AssignTrainingInput](r, "/training/assignments", h.assignTraining)
	httpkit.PostJSON[domain.TrainingCompletionInput](r, "/training/completions", h.completeTraining)

	httpkit.PostJSON[domain.AcknowledgePolicyInput](r, "/policies/{id}/acknowledgments", h.acknowledge)

	httpkit.GetJSON(r, "/departments", h.listDepartments)
	httpkit.PostJSON[domain.DepartmentInput](r, "/departments", h.createDepartment)
	httpkit.PatchJSON[domain.DepartmentInput](r, "/departments/{id}", h.renameDepartment)
}

type handlers struct{ svc domain.ServicePort }

// created wraps a successful create in a 201
func created[T any](v T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return httpkit.Created(v), nil
}

// swagger:route GET /hr/profiles HR hrProfiles
// @Summary List the org's employee profiles
// @Tags HR
// @Produce json
// @Success 200 {array} domain.Profile "ok"
// @Security BearerAuth
// @Router /hr/profiles [get]
func (h *handlers) listProfiles(r *stdhttp.Request) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	return h.svc.ListProfiles(r.Context(), a)
}

// swagger:route GET /hr/profiles/{id} HR hrProfile
// @Summary Get an employee profile
// @Description A profile of another org is reported as forbidden
// @Tags HR
// @Produce json
// @Param id path string true "Profile id"
// @Success 200 {object} domain.Profile "ok"
// @Failure 403 {object} errors.Wire "access denied"
// @Security BearerAuth
// @Router /hr/profiles/{id} [get]
func (h *handlers) getProfile(r *stdhttp.Request) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	return h.svc.GetProfile(r.Context(), a, httpkit.Param(r, "id"))
}

// swagger:route PATCH /hr/profiles/{id} HR hrUpdateProfile
// @Summary Update a profile; employees may change their own email and phone
// @Tags HR
// @Accept json
// @Produce json
// @Param id path string true "Profile id"
// @Param payload body domain.UpdateProfileInput true "Changes"
// @Success 200 {object} domain.Profile "ok"
// @Security BearerAuth
// @Router /hr/profiles/{id} [patch]
func (h *handlers) updateProfile(r *stdhttp.Request, in domain.UpdateProfileInput) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	return h.svc.UpdateProfile(r.Context(), a, httpkit.Param(r, "id"), in)
}

// userFilter is the ?userId filter; "me" names the caller
func userFilter(r *stdhttp.Request, a *authz.Context) string {
	u := r.URL.Query().Get("userId")
	if u == "me" {
		return a.UserID()
	}
	return u
}

// swagger:route GET /hr/absences HR hrAbsences
// @Summary List absences
// @Description Without userId the whole org is listed, which needs absence management rights
// @Tags HR
// @Produce json
// @Param userId query string false "User id or me"
// @Success 200 {array} domain.Absence "ok"
// @Security BearerAuth
// @Router /hr/absences [get]
func (h *handlers) listAbsences(r *stdhttp.Request) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	return h.svc.ListAbsences(r.Context(), a, userFilter(r, a))
}

// swagger:route POST /hr/absences HR hrRequestAbsence
// @Summary Request leave
// @Tags HR
// @Accept json
// @Produce json
// @Param payload body domain.RequestAbsenceInput true "Request"
// @Success 201 {object} domain.Absence "created"
// @Security BearerAuth
// @Router /hr/absences [post]
func (h *handlers) requestAbsence(r *stdhttp.Request, in domain.RequestAbsenceInput) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	return created(h.svc.RequestAbsence(r.Context(), a, in))
}

func (h *handlers) cancelAbsence(r *stdhttp.Request) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	return h.svc.CancelAbsence(r.Context(), a, httpkit.Param(r, "id"))
}

func (h *handlers) decideAbsence(r *stdhttp.Request, in domain.DecideAbsenceInput) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	return h.svc.DecideAbsence(r.Context(), a, httpkit.Param(r, "id"), in)
}

// swagger:route POST /hr/time-entries HR hrLogTime
// @Summary Log worked time
// @Tags HR
// @Accept json
// @Produce json
// @Param payload body domain.LogTimeInput true "Entry"
// @Success 201 {object} domain.TimeEntry "created"
// @Failure 429 {object} errors.Wire "rate limited"
// @Security BearerAuth
// @Router /hr/time-entries [post]
func (h *handlers) logTime(r *stdhttp.Request, in domain.LogTimeInput) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	return created(h.svc.LogTime(r.Context(), a, in))
}

func (h *handlers) approveTime(r *stdhttp.Request) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	return h.svc.ApproveTimeEntry(r.Context(), a, httpkit.Param(r, "id"))
}

func (h *handlers) listTraining(r *stdhttp.Request) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	return h.svc.ListTraining(r.Context(), a, userFilter(r, a))
}

func (h *handlers) assignTraining(r *stdhttp.Request, in domain.AssignTrainingInput) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	return created(h.svc.AssignTraining(r.Context(), a, in))
}

func (h *handlers) completeTraining(r *stdhttp.Request, in domain.TrainingCompletionInput) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	return created(h.svc.RecordTrainingCompletion(r.Context(), a, in))
}

// swagger:route POST /hr/policies/{id}/acknowledgments HR hrAcknowledge
// @Summary Acknowledge a policy
// @Description Repeating an acknowledgment returns the first one
// @Tags HR
// @Accept json
// @Produce json
// @Param id path string true "Policy id"
// @Param payload body domain.AcknowledgePolicyInput true "Acknowledgment"
// @Success 200 {object} domain.PolicyAck "ok"
// @Security BearerAuth
// @Router /hr/policies/{id}/acknowledgments [post]
func (h *handlers) acknowledge(r *stdhttp.Request, in domain.AcknowledgePolicyInput) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	return h.svc.AcknowledgePolicy(r.Context(), a, httpkit.Param(r, "id"), in)
}

// swagger:route GET /hr/departments HR hrDepartments
// @Summary List departments
// @Tags HR
// @Produce json
// @Success 200 {array} domain.Department "ok"
// @Security BearerAuth
// @Router /hr/departments [get]
func (h *handlers) listDepartments(r *stdhttp.Request) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	return h.svc.ListDepartments(r.Context(), a)
}

func (h *handlers) createDepartment(r *stdhttp.Request, in domain.DepartmentInput) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	return created(h.svc.CreateDepartment(r.Context(), a, in))
}

func (h *handlers) renameDepartment(r *stdhttp.Request, in domain.DepartmentInput) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	return h.svc.RenameDepartment(r.Context(), a, httpkit.Param(r, "id"), in)
}
