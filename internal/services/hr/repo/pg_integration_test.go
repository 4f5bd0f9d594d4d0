//go:build integration_pg

package repo

import (
	"context"
	"testing"
	"time"

	"orgcore/internal/core/governance"
	"orgcore/internal/platform/store"
	"orgcore/internal/platform/store/pgtest"
	"orgcore/internal/services/hr/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var official = governance.Tag{Residency: governance.ResidencyUKOnly, Classification: governance.ClassificationOfficial}

func TestByIDReadsReturnForeignRows(t *testing.T) {
	ctx := context.Background()
	st := pgtest.Start(t)
	pgtest.Seed(t, st, "org-b", "UK_ONLY", "OFFICIAL", nil)
	r := NewPG().Bind(st.PG)

	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	abs := domain.Absence{
		ID: uuid.NewString(), OrgID: "org-b", UserID: "u-2", Kind: "annual",
		StartsOn: now, EndsOn: now.Add(48 * time.Hour), Status: domain.AbsenceRequested,
		Governance: official, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, r.InsertAbsence(ctx, abs))

	got, err := r.Absence(ctx, abs.ID)
	require.NoError(t, err)
	assert.Equal(t, "org-b", got.OrgID, "the read guard, not the query, rejects foreign rows")

	list, err := r.ListAbsences(ctx, "org-a", "")
	require.NoError(t, err)
	assert.Empty(t, list)

	// updates are still fenced on org
	abs.Status = domain.AbsenceApproved
	abs.OrgID = "org-a"
	require.Error(t, r.UpdateAbsence(ctx, abs))
}

func TestUpsertAckKeepsFirst(t *testing.T) {
	ctx := context.Background()
	st := pgtest.Start(t)
	pgtest.Seed(t, st, "org-a", "UK_ONLY", "OFFICIAL", nil)

	first := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	var a, b domain.PolicyAck
	err := store.RunInTenant(ctx, st.PG, "org-a", func(ctx context.Context, q store.RowQuerier) error {
		r := NewPG().Bind(q)
		var err error
		a, err = r.UpsertAck(ctx, domain.PolicyAck{OrgID: "org-a", PolicyID: "pol-1", UserID: "u-2", RecordedBy: "u-2", AcknowledgedAt: first, Governance: official})
		if err != nil {
			return err
		}
		b, err = r.UpsertAck(ctx, domain.PolicyAck{OrgID: "org-a", PolicyID: "pol-1", UserID: "u-2", RecordedBy: "u-9", AcknowledgedAt: first.Add(time.Hour), Governance: official})
		return err
	})
	require.NoError(t, err)
	assert.True(t, b.AcknowledgedAt.Equal(a.AcknowledgedAt))
	assert.Equal(t, "u-2", b.RecordedBy)
}
