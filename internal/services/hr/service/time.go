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

// LogTime records worked minutes for the caller or, with approveOrgTimeEntries, for anyone
func (s *Svc) LogTime(ctx context.Context, a *authz.Context, in domain.LogTimeInput) (domain.TimeEntry, error) {
	if err := authz.AssertActorOrPrivileged(a, in.UserID, permissions.CanApproveOrgTimeEntries); err != nil {
		return domain.TimeEntry{}, err
	}
	if in.Minutes < 1 || in.Minutes > 24*60 {
		return domain.TimeEntry{}, perr.Validationf("minutes", "minutes must be between 1 and 1440")
	}
	if err := s.throttle(ctx, a, domain.ActionTimeEntryCreate); err != nil {
		return domain.TimeEntry{}, err
	}
	if err := s.policy.BeforeWrite(a, a.OrgID(), a.Governance()); err != nil {
		return domain.TimeEntry{}, err
	}
	now := s.now()
	te := domain.TimeEntry{
		ID:         uuid.NewString(),
		OrgID:      a.OrgID(),
		UserID:     in.UserID,
		WorkDate:   in.WorkDate.UTC(),
		Minutes:    in.Minutes,
		Note:       in.Note,
		Status:     domain.TimeSubmitted,
		Governance: a.Governance(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := s.tx(ctx, a, func(ctx context.Context, r domain.Repo) error {
		if err := r.InsertTimeEntry(ctx, te); err != nil {
			return err
		}
		return s.record(ctx, a, "timeEntry.create", "timeEntry", te.ID, map[string]any{"userId": te.UserID, "minutes": te.Minutes})
	})
	if err != nil {
		return domain.TimeEntry{}, err
	}
	return te, nil
}

// ApproveTimeEntry approves submitted time
func (s *Svc) ApproveTimeEntry(ctx context.Context, a *authz.Context, id string) (domain.TimeEntry, error) {
	if err := authz.AssertCapability(a, permissions.CanApproveOrgTimeEntries); err != nil {
		return domain.TimeEntry{}, err
	}
	if err := s.throttle(ctx, a, domain.ActionTimeEntryApprove); err != nil {
		return domain.TimeEntry{}, err
	}
	var out domain.TimeEntry
	err := s.tx(ctx, a, func(ctx context.Context, r domain.Repo) error {
		te, err := r.TimeEntry(ctx, id)
		if te, err = repokit.AfterLoad(a, te, err); err != nil {
			return err
		}
		if te.Status != domain.TimeSubmitted {
			return perr.InvalidArgf("time entry is already %s", te.Status)
		}
		if err := s.policy.BeforeWrite(a, te.OrgID, te.Governance); err != nil {
			return err
		}
		te.Status = domain.TimeApproved
		te.ApprovedBy = a.UserID()
		te.UpdatedAt = s.now()
		if err := r.UpdateTimeEntry(ctx, te); err != nil {
			return err
		}
		out = te
		return s.record(ctx, a, "timeEntry.approve", "timeEntry", te.ID, nil)
	})
	if err != nil {
		return domain.TimeEntry{}, err
	}
	return out, nil
}
