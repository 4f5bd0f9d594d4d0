package service

import (
	"context"
	"strings"

	"orgcore/internal/core/authz"
	"orgcore/internal/core/permissions"
	"orgcore/internal/modkit/repokit"
	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/logger"
	"orgcore/internal/services/hr/domain"

	"github.com/google/uuid"
)

var listDepartments = permissions.OrgPermissionMap{permissions.ResourceDepartment: {permissions.ActionList}}

// ListDepartments returns the org's departments through the org cache
func (s *Svc) ListDepartments(ctx context.Context, a *authz.Context) ([]domain.Department, error) {
	if err := authz.AssertPermissions(a, listDepartments); err != nil {
		return nil, err
	}
	return repokit.Cached(ctx, s.departments, a, "all", func(ctx context.Context) ([]domain.Department, error) {
		var ds []domain.Department
		err := s.tx(ctx, a, func(ctx context.Context, r domain.Repo) error {
			var err error
			ds, err = r.ListDepartments(ctx, a.OrgID())
			return err
		})
		return ds, err
	})
}

// invalidate drops cached department reads after a committed write
// A failure is reported as unavailable so the caller knows reads may be stale
func (s *Svc) invalidate(ctx context.Context, a *authz.Context) error {
	if err := s.departments.AfterWrite(ctx, a.OrgID()); err != nil {
		logger.C(ctx).Error().Err(err).Str("tenant_id", a.OrgID()).Msg("department cache invalidation failed")
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "invalidate department cache")
	}
	return nil
}

// CreateDepartment adds a department
func (s *Svc) CreateDepartment(ctx context.Context, a *authz.Context, in domain.DepartmentInput) (domain.Department, error) {
	if err := authz.AssertCapability(a, permissions.CanManageDepartments); err != nil {
		return domain.Department{}, err
	}
	if err := s.departments.BeforeWrite(a, a.OrgID(), a.Governance()); err != nil {
		return domain.Department{}, err
	}
	now := s.now()
	d := domain.Department{
		ID:         uuid.NewString(),
		OrgID:      a.OrgID(),
		Name:       strings.TrimSpace(in.Name),
		Governance: a.Governance(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := s.tx(ctx, a, func(ctx context.Context, r domain.Repo) error {
		if err := r.InsertDepartment(ctx, d); err != nil {
			return err
		}
		return s.record(ctx, a, "department.create", "department", d.ID, map[string]any{"name": d.Name})
	})
	if err != nil {
		return domain.Department{}, err
	}
	return d, s.invalidate(ctx, a)
}

// RenameDepartment changes a department's name
func (s *Svc) RenameDepartment(ctx context.Context, a *authz.Context, id string, in domain.DepartmentInput) (domain.Department, error) {
	if err := authz.AssertCapability(a, permissions.CanManageDepartments); err != nil {
		return domain.Department{}, err
	}
	var out domain.Department
	err := s.tx(ctx, a, func(ctx context.Context, r domain.Repo) error {
		d, err := r.Department(ctx, id)
		if d, err = repokit.AfterLoad(a, d, err); err != nil {
			return err
		}
		if err := s.departments.BeforeWrite(a, d.OrgID, d.Governance); err != nil {
			return err
		}
		d.Name = strings.TrimSpace(in.Name)
		d.UpdatedAt = s.now()
		if err := r.UpdateDepartment(ctx, d); err != nil {
			return err
		}
		out = d
		return s.record(ctx, a, "department.rename", "department", d.ID, map[string]any{"name": d.Name})
	})
	if err != nil {
		return domain.Department{}, err
	}
	return out, s.invalidate(ctx, a)
}
