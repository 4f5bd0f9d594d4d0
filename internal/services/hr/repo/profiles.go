package repo

import (
	"context"

	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/store"
	"orgcore/internal/services/hr/domain"
)

const (
	profileCols = `id, org_id, user_id, display_name, job_title, coalesce(department_id::text, ''), email, phone,
       data_residency, data_classification, created_at, updated_at`

	profileByIDSQL = `select ` + profileCols + ` from employee_profiles where id = $1`

	profilesSQL = `select ` + profileCols + ` from employee_profiles where org_id = $1 order by display_name, id`

	updateProfileSQL = `
update employee_profiles
set display_name = $3, job_title = $4, department_id = nullif($5, '')::uuid, email = $6, phone = $7, updated_at = $8
where id = $1 and org_id = $2`
)

func scanProfile(row store.Row) (domain.Profile, error) {
	var (
		p domain.Profile
		l labels
	)
	err := row.Scan(&p.ID, &p.OrgID, &p.UserID, &p.DisplayName, &p.JobTitle, &p.DepartmentID, &p.Email, &p.Phone,
		&l.res, &l.class, &p.CreatedAt, &p.UpdatedAt)
	p.Governance = l.tag()
	return p, err
}

func (r *queries) Profile(ctx context.Context, id string) (domain.Profile, error) {
	p, err := store.One(ctx, r.q, scanProfile, profileByIDSQL, id)
	return p, perr.FromPostgres(err, "load profile")
}

func (r *queries) ListProfiles(ctx context.Context, orgID string) ([]domain.Profile, error) {
	ps, err := store.Many(ctx, r.q, scanProfile, profilesSQL, orgID)
	return ps, perr.FromPostgres(err, "list profiles")
}

func (r *queries) UpdateProfile(ctx context.Context, p domain.Profile) error {
	return one(ctx, r.q, "update profile", updateProfileSQL,
		p.ID, p.OrgID, p.DisplayName, p.JobTitle, p.DepartmentID, p.Email, p.Phone, p.UpdatedAt)
}
