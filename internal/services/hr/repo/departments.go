package repo

import (
	"context"

	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/store"
	"orgcore/internal/services/hr/domain"
)

const (
	deptCols = `id, org_id, name, data_residency, data_classification, created_at, updated_at`

	deptsSQL = `select ` + deptCols + ` from departments where org_id = $1 order by name, id`

	deptByIDSQL = `select ` + deptCols + ` from departments where id = $1`

	insertDeptSQL = `insert into departments (` + deptCols + `) values ($1, $2, $3, $4, $5, $6, $7)`

	renameDeptSQL = `update departments set name = $3, updated_at = $4 where id = $1 and org_id = $2`
)

func scanDept(row store.Row) (domain.Department, error) {
	var (
		d domain.Department
		l labels
	)
	err := row.Scan(&d.ID, &d.OrgID, &d.Name, &l.res, &l.class, &d.CreatedAt, &d.UpdatedAt)
	d.Governance = l.tag()
	return d, err
}

func (r *queries) ListDepartments(ctx context.Context, orgID string) ([]domain.Department, error) {
	ds, err := store.Many(ctx, r.q, scanDept, deptsSQL, orgID)
	return ds, perr.FromPostgres(err, "list departments")
}

func (r *queries) Department(ctx context.Context, id string) (domain.Department, error) {
	d, err := store.One(ctx, r.q, scanDept, deptByIDSQL, id)
	return d, perr.FromPostgres(err, "load department")
}

func (r *queries) InsertDepartment(ctx context.Context, d domain.Department) error {
	_, err := r.q.Exec(ctx, insertDeptSQL, d.ID, d.OrgID, d.Name, res(d.Governance), class(d.Governance), d.CreatedAt, d.UpdatedAt)
	return perr.FromPostgres(err, "insert department")
}

func (r *queries) UpdateDepartment(ctx context.Context, d domain.Department) error {
	return one(ctx, r.q, "rename department", renameDeptSQL, d.ID, d.OrgID, d.Name, d.UpdatedAt)
}
