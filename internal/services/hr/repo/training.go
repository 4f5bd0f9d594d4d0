package repo

import (
	"context"

	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/store"
	"orgcore/internal/services/hr/domain"
)

const (
	trainingCols = `id, org_id, user_id, course, status, due_on, completed_at, assigned_by,
       data_residency, data_classification, created_at, updated_at`

	insertTrainingSQL = `
insert into training_records (` + trainingCols + `)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	trainingSQL = `
select ` + trainingCols + `
from training_records
where org_id = $1 and ($2 = '' or user_id = $2)
order by created_at desc, id`

	ackSQL = `
insert into policy_acknowledgments
  (org_id, policy_id, user_id, recorded_by, acknowledged_at, data_residency, data_classification)
values ($1, $2, $3, $4, $5, $6, $7)
on conflict (org_id, policy_id, user_id) do update set policy_id = excluded.policy_id
returning org_id, policy_id, user_id, recorded_by, acknowledged_at, data_residency, data_classification`
)

func scanTraining(row store.Row) (domain.TrainingRecord, error) {
	var (
		t      domain.TrainingRecord
		l      labels
		status string
	)
	err := row.Scan(&t.ID, &t.OrgID, &t.UserID, &t.Course, &status, &t.DueOn, &t.CompletedAt, &t.AssignedBy,
		&l.res, &l.class, &t.CreatedAt, &t.UpdatedAt)
	t.Status = domain.TrainingStatus(status)
	t.Governance = l.tag()
	return t, err
}

func (r *queries) InsertTraining(ctx context.Context, t domain.TrainingRecord) error {
	_, err := r.q.Exec(ctx, insertTrainingSQL, t.ID, t.OrgID, t.UserID, t.Course, string(t.Status), t.DueOn,
		t.CompletedAt, t.AssignedBy, res(t.Governance), class(t.Governance), t.CreatedAt, t.UpdatedAt)
	return perr.FromPostgres(err, "insert training record")
}

func (r *queries) ListTraining(ctx context.Context, orgID, userID string) ([]domain.TrainingRecord, error) {
	ts, err := store.Many(ctx, r.q, scanTraining, trainingSQL, orgID, userID)
	return ts, perr.FromPostgres(err, "list training records")
}

func (r *queries) UpsertAck(ctx context.Context, a domain.PolicyAck) (domain.PolicyAck, error) {
	var l labels
	err := r.q.QueryRow(ctx, ackSQL, a.OrgID, a.PolicyID, a.UserID, a.RecordedBy, a.AcknowledgedAt,
		res(a.Governance), class(a.Governance)).
		Scan(&a.OrgID, &a.PolicyID, &a.UserID, &a.RecordedBy, &a.AcknowledgedAt, &l.res, &l.class)
	if err != nil {
		return domain.PolicyAck{}, perr.FromPostgres(err, "acknowledge policy")
	}
	a.Governance = l.tag()
	return a, nil
}
