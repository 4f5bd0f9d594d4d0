package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/store"
	ptime "orgcore/internal/platform/time"

	"github.com/jackc/pgx/v5"
)

const (
	loadSQL = `
SELECT value, updated_at
FROM platform_settings
WHERE id = $1`

	insertSQL = `
INSERT INTO platform_settings (id, value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO NOTHING`

	updateSQL = `
UPDATE platform_settings
SET value = $2, updated_at = $3
WHERE id = $1 AND updated_at = $4`
)

// PG stores documents in the platform_settings table
// Inside a transaction opened by store.RunInTenant it reads and writes through that transaction
type PG struct {
	q     store.RowQuerier
	clock ptime.Clock
}

// NewPG binds the store to a querier; a nil clock uses the system clock
func NewPG(q store.RowQuerier, clock ptime.Clock) *PG {
	return &PG{q: q, clock: ptime.Or(clock)}
}

// Load implements Store
func (p *PG) Load(ctx context.Context, id string) (Document, error) {
	var (
		raw []byte
		at  time.Time
	)
	err := store.Querier(ctx, p.q).QueryRow(ctx, loadSQL, id).Scan(&raw, &at)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{ID: id}, nil
	}
	if err != nil {
		return Document{ID: id}, perr.FromPostgres(err, "load document "+id)
	}
	return Document{ID: id, Value: raw, UpdatedAt: at.UTC(), Exists: true}, nil
}

// Save implements Store
func (p *PG) Save(ctx context.Context, prev Document, value json.RawMessage) (Document, error) {
	if prev.ID == "" {
		return prev, perr.Validationf("id", "document id is required")
	}
	next := Document{
		ID:        prev.ID,
		Value:     value,
		UpdatedAt: nextVersion(p.clock.Now(), prev.UpdatedAt),
		Exists:    true,
	}

	var (
		applied bool
		err     error
	)
	q := store.Querier(ctx, p.q)
	if prev.Exists {
		applied, err = store.ExecOne(ctx, q, updateSQL, prev.ID, []byte(value), next.UpdatedAt, prev.UpdatedAt)
	} else {
		applied, err = store.ExecOne(ctx, q, insertSQL, prev.ID, []byte(value), next.UpdatedAt)
	}
	if err != nil {
		return prev, perr.FromPostgres(err, "save document "+prev.ID)
	}
	if !applied {
		return prev, conflict(prev.ID)
	}
	return next, nil
}
