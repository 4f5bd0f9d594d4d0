package service

import (
	"context"

	"orgcore/internal/core/authz"
	"orgcore/internal/core/permissions"
	"orgcore/internal/modkit/repokit"
	perr "orgcore/internal/platform/errors"
	"orgcore/internal/services/hr/domain"

	"github.com/google/uuid"
)

// RequestAbsence files a leave request for the caller or, with manageOrgAbsences, for anyone
func (s *Svc) RequestAbsence(ctx context.Context, a *authz.Context, in domain.RequestAbsenceInput) (domain.Absence, error) {
	if err := authz.AssertActorOrPrivileged(a, in.UserID, permissions.CanManageOrgAbsences); err != nil {
		return domain.Absence{}, err
	}
	if in.EndsOn.Before(in.StartsOn) {
		return domain.Absence{}, perr.Validationf("endsOn", "endsOn must not be before startsOn")
	}
	if err := s.policy.BeforeWrite(a, a.OrgID(), a.Governance()); err != nil {
		return domain.Absence{}, err
	}
	now := s.now()
	abs := domain.Absence{
		ID:         uuid.NewString(),
		OrgID:      a.OrgID(),
		UserID:     in.UserID,
		Kind:       in.Kind,
		StartsOn:   in.StartsOn.UTC(),
		EndsOn:     in.EndsOn.UTC(),
		Reason:     in.Reason,
		Status:     domain.AbsenceRequested,
		Governance: a.Governance(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := s.tx(ctx, a, func(ctx context.Context, r domain.Repo) error {
		if err := r.InsertAbsence(ctx, abs); err != nil {
			return err
		}
		return s.record(ctx, a, "absence.request", "absence", abs.ID, map[string]any{"userId": abs.UserID, "kind": abs.Kind})
	})
	if err != nil {
		return domain.Absence{}, err
	}
	return abs, nil
}

// transition loads an absence, runs check, stores the new status and records action
func (s *Svc) transition(ctx context.Context, a *authz.Context, id, action string, check func(domain.Absence) error, next func(*domain.Absence)) (domain.Absence, error) {
	var out domain.Absence
	err := s.tx(ctx, a, func(ctx context.Context, r domain.Repo) error {
		abs, err := r.Absence(ctx, id)
		if abs, err = repokit.AfterLoad(a, abs, err); err != nil {
			return err
		}
		if err := check(abs); err != nil {
			return err
		}
		if err := s.policy.BeforeWrite(a, abs.OrgID, abs.Governance); err != nil {
			return err
		}
		next(&abs)
		abs.UpdatedAt = s.now()
		if err := r.UpdateAbsence(ctx, abs); err != nil {
			return err
		}
		out = abs
		return s.record(ctx, a, action, "absence", abs.ID, map[string]any{"status": abs.Status})
	})
	if err != nil {
		return domain.Absence{}, err
	}
	return out, nil
}

// CancelAbsence withdraws a pending or approved request
func (s *Svc) CancelAbsence(ctx context.Context, a *authz.Context, id string) (domain.Absence, error) {
	return s.transition(ctx, a, id, "absence.cancel", func(abs domain.Absence) error {
		if err := authz.AssertActorOrPrivileged(a, abs.UserID, permissions.CanManageOrgAbsences); err != nil {
			return err
		}
		if abs.Status != domain.AbsenceRequested && abs.Status != domain.AbsenceApproved {
			return perr.InvalidArgf("absence is %s and cannot be cancelled", abs.Status)
		}
		return nil
	}, func(abs *domain.Absence) { abs.Status = domain.AbsenceCancelled })
}

// DecideAbsence approves or rejects a pending request
func (s *Svc) DecideAbsence(ctx context.Context, a *authz.Context, id string, in domain.DecideAbsenceInput) (domain.Absence, error) {
	if err := authz.AssertCapability(a, permissions.CanManageOrgAbsences); err != nil {
		return domain.Absence{}, err
	}
	status := domain.AbsenceRejected
	if in.Decision == "approve" {
		status = domain.AbsenceApproved
	}
	return s.transition(ctx, a, id, "absence.decide", func(abs domain.Absence) error {
		if abs.Status != domain.AbsenceRequested {
			return perr.InvalidArgf("absence is %s and cannot be decided", abs.Status)
		}
		return nil
	}, func(abs *domain.Absence) {
		abs.Status = status
		abs.DecidedBy = a.UserID()
	})
}

// ListAbsences returns one user's absences, or the whole org's with manageOrgAbsences
func (s *Svc) ListAbsences(ctx context.Context, a *authz.Context, userID string) ([]domain.Absence, error) {
	var err error
	if userID == "" {
		err = authz.AssertCapability(a, permissions.CanManageOrgAbsences)
	} else {
		err = authz.AssertActorOrPrivileged(a, userID, permissions.CanManageOrgAbsences)
	}
	if err != nil {
		return nil, err
	}
	var out []domain.Absence
	err = s.tx(ctx, a, func(ctx context.Context, r domain.Repo) error {
		as, err := r.ListAbsences(ctx, a.OrgID(), userID)
		if err != nil {
			return err
		}
		out, err = repokit.AfterReadAll(a, as)
		return err
	})
	return out, err
}
