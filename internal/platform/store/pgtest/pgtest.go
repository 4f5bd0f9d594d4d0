//go:build integration_pg

// Package pgtest starts a throwaway postgres with the orgcore schema for integration tests
package pgtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"orgcore/internal/platform/store"
	"orgcore/internal/platform/store/schema"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// AppRole is the unprivileged role services connect as; superusers bypass row level security
const AppRole = "orgcore_app"

// Start runs postgres, applies the schema as the superuser and returns a
// store connected as AppRole
func Start(t *testing.T) *store.Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "postgres",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	url := func(user, pass string) string {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable", user, pass, host, port.Port())
	}

	admin, err := store.Open(ctx, store.Config{PG: store.PGConfig{Enabled: true, URL: url("postgres", "postgres")}})
	require.NoError(t, err)
	defer func() { _ = admin.Close(ctx) }()

	require.NoError(t, schema.Apply(ctx, admin.PG))
	for _, s := range []string{
		`create role ` + AppRole + ` login password 'app'`,
		`grant select, insert, update, delete on all tables in schema public to ` + AppRole,
	} {
		_, err := admin.PG.Exec(ctx, s)
		require.NoError(t, err)
	}

	st, err := store.Open(ctx, store.Config{PG: store.PGConfig{Enabled: true, URL: url(AppRole, "app")}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}

// Seed inserts an organization and its members
func Seed(t *testing.T, st *store.Store, orgID, residency, classification string, members map[string]string) {
	t.Helper()
	ctx := context.Background()
	_, err := st.PG.Exec(ctx,
		`insert into organizations (id, name, data_residency, data_classification) values ($1, $1, $2, $3)`,
		orgID, residency, classification)
	require.NoError(t, err)
	for user, role := range members {
		_, err := st.PG.Exec(ctx,
			`insert into org_memberships (org_id, user_id, role_key) values ($1, $2, $3)`, orgID, user, role)
		require.NoError(t, err)
	}
}
