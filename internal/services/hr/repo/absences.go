package repo

import (
	"context"

	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/store"
	"orgcore/internal/services/hr/domain"
)

const (
	absenceCols = `id, org_id, user_id, kind, starts_on, ends_on, reason, status, decided_by,
       data_residency, data_classification, created_at, updated_at`

	insertAbsenceSQL = `
insert into absences (` + absenceCols + `)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	absenceByIDSQL = `select ` + absenceCols + ` from absences where id = $1`

	absencesSQL = `
select ` + absenceCols + `
from absences
where org_id = $1 and ($2 = '' or user_id = $2)
order by starts_on desc, id`

	updateAbsenceSQL = `
update absences set status = $3, decided_by = $4, updated_at = $5
where id = $1 and org_id = $2`
)

func scanAbsence(row store.Row) (domain.Absence, error) {
	var (
		a      domain.Absence
		l      labels
		status string
	)
	err := row.Scan(&a.ID, &a.OrgID, &a.UserID, &a.Kind, &a.StartsOn, &a.EndsOn, &a.Reason, &status, &a.DecidedBy,
		&l.res, &l.class, &a.CreatedAt, &a.UpdatedAt)
	a.Status = domain.AbsenceStatus(status)
	a.Governance = l.tag()
	return a, err
}

func (r *queries) InsertAbsence(ctx context.Context, a domain.Absence) error {
	_, err := r.q.Exec(ctx, insertAbsenceSQL, a.ID, a.OrgID, a.UserID, a.Kind, a.StartsOn, a.EndsOn, a.Reason,
		string(a.Status), a.DecidedBy, res(a.Governance), class(a.Governance), a.CreatedAt, a.UpdatedAt)
	return perr.FromPostgres(err, "insert absence")
}

func (r *queries) Absence(ctx context.Context, id string) (domain.Absence, error) {
	a, err := store.One(ctx, r.q, scanAbsence, absenceByIDSQL, id)
	return a, perr.FromPostgres(err, "load absence")
}

func (r *queries) ListAbsences(ctx context.Context, orgID, userID string) ([]domain.Absence, error) {
	as, err := store.Many(ctx, r.q, scanAbsence, absencesSQL, orgID, userID)
	return as, perr.FromPostgres(err, "list absences")
}

func (r *queries) UpdateAbsence(ctx context.Context, a domain.Absence) error {
	return one(ctx, r.q, "update absence", updateAbsenceSQL, a.ID, a.OrgID, string(a.Status), a.DecidedBy, a.UpdatedAt)
}
