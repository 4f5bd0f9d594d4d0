package repo

import (
	"context"

	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/store"
	"orgcore/internal/services/hr/domain"
)

const (
	timeCols = `id, org_id, user_id, work_date, minutes, note, status, approved_by,
       data_residency, data_classification, created_at, updated_at`

	insertTimeSQL = `
insert into time_entries (` + timeCols + `)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	timeByIDSQL = `select ` + timeCols + ` from time_entries where id = $1`

	updateTimeSQL = `
update time_entries set status = $3, approved_by = $4, updated_at = $5
where id = $1 and org_id = $2`
)

func scanTime(row store.Row) (domain.TimeEntry, error) {
	var (
		t      domain.TimeEntry
		l      labels
		status string
	)
	err := row.Scan(&t.ID, &t.OrgID, &t.UserID, &t.WorkDate, &t.Minutes, &t.Note, &status, &t.ApprovedBy,
		&l.res, &l.class, &t.CreatedAt, &t.UpdatedAt)
	t.Status = domain.TimeEntryStatus(status)
	t.Governance = l.tag()
	return t, err
}

func (r *queries) InsertTimeEntry(ctx context.Context, t domain.TimeEntry) error {
	_, err := r.q.Exec(ctx, insertTimeSQL, t.ID, t.OrgID, t.UserID, t.WorkDate, t.Minutes, t.Note, string(t.Status),
		t.ApprovedBy, res(t.Governance), class(t.Governance), t.CreatedAt, t.UpdatedAt)
	return perr.FromPostgres(err, "insert time entry")
}

func (r *queries) TimeEntry(ctx context.Context, id string) (domain.TimeEntry, error) {
	t, err := store.One(ctx, r.q, scanTime, timeByIDSQL, id)
	return t, perr.FromPostgres(err, "load time entry")
}

func (r *queries) UpdateTimeEntry(ctx context.Context, t domain.TimeEntry) error {
	return one(ctx, r.q, "update time entry", updateTimeSQL, t.ID, t.OrgID, string(t.Status), t.ApprovedBy, t.UpdatedAt)
}
