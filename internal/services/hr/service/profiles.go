package service

import (
	"context"

	"orgcore/internal/core/authz"
	"orgcore/internal/core/permissions"
	"orgcore/internal/modkit/repokit"
	"orgcore/internal/services/hr/domain"
)

var readProfiles = permissions.OrgPermissionMap{permissions.ResourceEmployeeProfile: {permissions.ActionRead}}

// GetProfile returns one profile; a missing permission or a foreign profile is denied, never missing
func (s *Svc) GetProfile(ctx context.Context, a *authz.Context, id string) (domain.Profile, error) {
	if err := authz.AssertPermissions(a, readProfiles); err != nil {
		return domain.Profile{}, err
	}
	var out domain.Profile
	err := s.tx(ctx, a, func(ctx context.Context, r domain.Repo) error {
		p, err := r.Profile(ctx, id)
		out, err = repokit.AfterLoad(a, p, err)
		return err
	})
	return out, err
}

// ListProfiles returns the org's profiles
func (s *Svc) ListProfiles(ctx context.Context, a *authz.Context) ([]domain.Profile, error) {
	if err := authz.AssertCapability(a, permissions.CanReadEmployeeProfiles); err != nil {
		return nil, err
	}
	var out []domain.Profile
	err := s.tx(ctx, a, func(ctx context.Context, r domain.Repo) error {
		ps, err := r.ListProfiles(ctx, a.OrgID())
		if err != nil {
			return err
		}
		out, err = repokit.AfterReadAll(a, ps)
		return err
	})
	return out, err
}

// UpdateProfile changes a profile
// Employees may change their own contact fields; anything else needs manageEmployeeProfiles
func (s *Svc) UpdateProfile(ctx context.Context, a *authz.Context, id string, in domain.UpdateProfileInput) (domain.Profile, error) {
	var out domain.Profile
	err := s.tx(ctx, a, func(ctx context.Context, r domain.Repo) error {
		p, err := r.Profile(ctx, id)
		if p, err = repokit.AfterLoad(a, p, err); err != nil {
			return err
		}
		if in.OnlyContact() {
			err = authz.AssertActorOrPrivileged(a, p.UserID, permissions.CanManageEmployeeProfiles)
		} else {
			err = authz.AssertCapability(a, permissions.CanManageEmployeeProfiles)
		}
		if err != nil {
			return err
		}
		if err := s.policy.BeforeWrite(a, p.OrgID, p.Governance); err != nil {
			return err
		}
		set := func(dst *string, v *string) {
			if v != nil {
				*dst = *v
			}
		}
		set(&p.DisplayName, in.DisplayName)
		set(&p.JobTitle, in.JobTitle)
		set(&p.DepartmentID, in.DepartmentID)
		set(&p.Email, in.Email)
		set(&p.Phone, in.Phone)
		p.UpdatedAt = s.now()
		if err := r.UpdateProfile(ctx, p); err != nil {
			return err
		}
		out = p
		return s.record(ctx, a, "profile.update", "employeeProfile", p.ID, map[string]any{"contactOnly": in.OnlyContact()})
	})
	if err != nil {
		return domain.Profile{}, err
	}
	return out, nil
}
