// Package repo provides postgres access for audit events
package repo

import (
	"context"
	"encoding/json"
	"time"

	"orgcore/internal/core/governance"
	"orgcore/internal/modkit/repokit"
	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/store"
	"orgcore/internal/services/audit/domain"
)

// Repo is the persistence surface for audit events
// There is no update path; retention marks rows deleted without removing them
type Repo interface {
	Insert(ctx context.Context, e domain.Event) error
	List(ctx context.Context, orgID string, f domain.Filter) ([]domain.Event, error)
	MarkDeletedBefore(ctx context.Context, orgID string, before, now time.Time) (int64, error)
}

type (
	// PG binds the repo to a Queryer
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns the postgres binder
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

const (
	insertSQL = `
insert into audit_events
  (id, org_id, actor_user_id, action, target_type, target_id, audit_source,
   correlation_id, metadata, data_residency, data_classification, occurred_at)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	listSQL = `
select id, org_id, actor_user_id, action, target_type, target_id, audit_source,
       correlation_id, metadata, data_residency, data_classification, occurred_at
from audit_events
where org_id = $1
  and deleted_at is null
  and ($2 = '' or action = $2)
  and ($3 = '' or target_type = $3)
  and ($4 = '' or target_id = $4)
  and ($5::timestamptz is null or occurred_at >= $5)
  and ($6::timestamptz is null or occurred_at < $6)
order by occurred_at desc, id desc
limit $7`

	sweepSQL = `
update audit_events
set deleted_at = $3
where org_id = $1
  and occurred_at < $2
  and deleted_at is null`
)

func (r *queries) Insert(ctx context.Context, e domain.Event) error {
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode audit metadata")
	}
	_, err = r.q.Exec(ctx, insertSQL,
		e.ID, e.OrgID, e.ActorUserID, e.Action, e.TargetType, e.TargetID, e.AuditSource,
		e.CorrelationID, meta, string(e.Governance.Residency), string(e.Governance.Classification), e.OccurredAt,
	)
	return perr.FromPostgres(err, "insert audit event")
}

func optTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func scanEvent(row store.Row) (domain.Event, error) {
	var (
		e          domain.Event
		meta       []byte
		res, class string
	)
	if err := row.Scan(&e.ID, &e.OrgID, &e.ActorUserID, &e.Action, &e.TargetType, &e.TargetID,
		&e.AuditSource, &e.CorrelationID, &meta, &res, &class, &e.OccurredAt); err != nil {
		return e, err
	}
	e.Governance = governance.Tag{Residency: governance.Residency(res), Classification: governance.Classification(class)}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &e.Metadata); err != nil {
			return e, perr.Wrap(err, perr.ErrorCodeJSON, "decode audit metadata")
		}
	}
	e.OccurredAt = e.OccurredAt.UTC()
	return e, nil
}

func (r *queries) List(ctx context.Context, orgID string, f domain.Filter) ([]domain.Event, error) {
	out, err := store.Many(ctx, r.q, scanEvent, listSQL,
		orgID, f.Action, f.TargetType, f.TargetID, optTime(f.Since), optTime(f.Until), f.Limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "list audit events")
	}
	return out, nil
}

func (r *queries) MarkDeletedBefore(ctx context.Context, orgID string, before, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, sweepSQL, orgID, before, now)
	if err != nil {
		return 0, perr.FromPostgres(err, "sweep audit events")
	}
	return tag.RowsAffected(), nil
}
