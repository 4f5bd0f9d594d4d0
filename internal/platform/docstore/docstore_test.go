package docstore

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	ptime "orgcore/internal/platform/time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plans struct {
	Items []string `json:"items"`
}

func TestMemoryLoadMissing(t *testing.T) {
	m := NewMemory(nil)
	doc, err := m.Load(context.Background(), "platform-billing-plans")
	require.NoError(t, err)
	assert.False(t, doc.Exists)
	assert.Equal(t, "platform-billing-plans", doc.ID)

	v, doc, err := LoadJSON[plans](context.Background(), m, "platform-billing-plans")
	require.NoError(t, err)
	assert.Empty(t, v.Items)
	assert.False(t, doc.Exists)
}

func TestMemoryOptimisticConcurrency(t *testing.T) {
	ctx := context.Background()
	clock := ptime.NewFixed(ptime.Date(2026, time.February, 6))
	m := NewMemory(clock)

	_, empty, err := LoadJSON[plans](ctx, m, "doc")
	require.NoError(t, err)

	v1, err := SaveJSON(ctx, m, empty, plans{Items: []string{"a"}})
	require.NoError(t, err)
	assert.True(t, v1.Exists)

	// a second creator racing on the same absent document loses
	_, err = SaveJSON(ctx, m, empty, plans{Items: []string{"b"}})
	assert.True(t, IsConflict(err))

	// same clock instant still yields a strictly newer version
	v2, err := SaveJSON(ctx, m, v1, plans{Items: []string{"a", "c"}})
	require.NoError(t, err)
	assert.True(t, v2.UpdatedAt.After(v1.UpdatedAt))

	// writer holding the stale version is rejected and does not clobber
	_, err = SaveJSON(ctx, m, v1, plans{Items: []string{"stale"}})
	assert.True(t, IsConflict(err))

	got, cur, err := LoadJSON[plans](ctx, m, "doc")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, got.Items)
	assert.True(t, cur.UpdatedAt.Equal(v2.UpdatedAt))
}

func TestMemoryIsolatesBuffers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)
	raw := json.RawMessage(`{"items":["a"]}`)
	doc, err := m.Save(ctx, Document{ID: "doc"}, raw)
	require.NoError(t, err)
	raw[2] = 'X'
	doc.Value[2] = 'Y'

	loaded, err := m.Load(ctx, "doc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":["a"]}`, string(loaded.Value))

	_, err = m.Save(ctx, Document{}, raw)
	assert.Error(t, err)
}

func TestLoadJSONRejectsCorruptDocument(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)
	_, err := m.Save(ctx, Document{ID: "doc"}, json.RawMessage(`{"items":`))
	require.NoError(t, err)
	_, _, err = LoadJSON[plans](ctx, m, "doc")
	assert.Error(t, err)
}

func TestNextVersion(t *testing.T) {
	prev := time.Date(2026, 2, 6, 10, 0, 0, 500_000, time.UTC)
	assert.Equal(t, prev.Add(time.Microsecond), nextVersion(prev.Add(-time.Hour), prev))
	now := prev.Add(time.Second + 123)
	assert.Equal(t, now.Truncate(time.Microsecond), nextVersion(now, prev))
	assert.Equal(t, now.Truncate(time.Microsecond), nextVersion(now, time.Time{}))
}
