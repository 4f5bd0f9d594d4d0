package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"orgcore/internal/core/governance"
	perr "orgcore/internal/platform/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter(v []string) (func(context.Context) ([]string, error), *int) {
	n := 0
	return func(context.Context) ([]string, error) {
		n++
		return v, nil
	}, &n
}

func TestTagShape(t *testing.T) {
	assert.Equal(t, "org:org-1:departments", Tag("org-1", ScopeDepartments))
	q := governance.Tag{Residency: governance.ResidencyUKOnly, Classification: governance.ClassificationSecret}
	assert.Equal(t, "org:org-1:roles:SECRET:UK_ONLY", QualifiedTag("org-1", ScopeRoles, q))
}

func TestRegisterRequiresOrgAndScope(t *testing.T) {
	c := New(NewMemory(time.Minute), time.Minute)

	_, err := c.RegisterOrgCacheTag("", ScopeRoles)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))

	_, err = c.RegisterOrgCacheTag("org-1", "")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))

	tags, err := c.RegisterOrgCacheTag("org-1", ScopeRoles)
	require.NoError(t, err)
	assert.Equal(t, []string{"org:org-1:roles"}, tags)
}

func TestRememberCachesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemory(time.Minute), time.Minute)
	load, n := counter([]string{"eng", "ops"})

	for i := 0; i < 3; i++ {
		v, err := Remember(ctx, c, "org-1", ScopeDepartments, "all", load)
		require.NoError(t, err)
		assert.Equal(t, []string{"eng", "ops"}, v)
	}
	assert.Equal(t, 1, *n)

	require.NoError(t, c.InvalidateOrgCache(ctx, "org-1", ScopeDepartments))
	_, err := Remember(ctx, c, "org-1", ScopeDepartments, "all", load)
	require.NoError(t, err)
	assert.Equal(t, 2, *n)
}

func TestInvalidationStaysInsideOrgAndScope(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemory(time.Minute), time.Minute)

	loadA, na := counter([]string{"a"})
	loadB, nb := counter([]string{"b"})
	loadR, nr := counter([]string{"r"})

	_, _ = Remember(ctx, c, "org-a", ScopeDepartments, "all", loadA)
	_, _ = Remember(ctx, c, "org-b", ScopeDepartments, "all", loadB)
	_, _ = Remember(ctx, c, "org-a", ScopeRoles, "all", loadR)

	require.NoError(t, c.InvalidateOrgCache(ctx, "org-a", ScopeDepartments))

	_, _ = Remember(ctx, c, "org-a", ScopeDepartments, "all", loadA)
	_, _ = Remember(ctx, c, "org-b", ScopeDepartments, "all", loadB)
	_, _ = Remember(ctx, c, "org-a", ScopeRoles, "all", loadR)

	assert.Equal(t, 2, *na)
	assert.Equal(t, 1, *nb)
	assert.Equal(t, 1, *nr)
}

func TestRememberDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemory(time.Minute), time.Minute)
	calls := 0
	boom := errors.New("boom")
	load := func(context.Context) (int, error) {
		calls++
		return 0, boom
	}

	_, err := Remember(ctx, c, "org-1", ScopeRoles, "k", load)
	assert.ErrorIs(t, err, boom)
	_, err = Remember(ctx, c, "org-1", ScopeRoles, "k", load)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestNoopAlwaysLoads(t *testing.T) {
	ctx := context.Background()
	c := FromConfig(Config{Mode: ModeOff}, nil)
	assert.Equal(t, "noop", c.Type())

	load, n := counter([]string{"x"})
	_, _ = Remember(ctx, c, "org-1", ScopeRoles, "k", load)
	_, _ = Remember(ctx, c, "org-1", ScopeRoles, "k", load)
	assert.Equal(t, 2, *n)
	assert.NoError(t, c.InvalidateOrgCache(ctx, "org-1", ScopeRoles))
}

func TestRedisModeWithoutClientFallsBackToMemory(t *testing.T) {
	c := FromConfig(Config{Mode: ModeRedis, TTL: time.Minute}, nil)
	assert.NotEqual(t, "noop", c.Type())
}

func TestRedisBackendSharesEntries(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	first := FromConfig(Config{Mode: ModeRedis, TTL: time.Minute}, rdb)
	second := FromConfig(Config{Mode: ModeRedis, TTL: time.Minute}, rdb)

	load, n := counter([]string{"eng"})
	_, err := Remember(ctx, first, "org-1", ScopeDepartments, "all", load)
	require.NoError(t, err)
	v, err := Remember(ctx, second, "org-1", ScopeDepartments, "all", load)
	require.NoError(t, err)
	assert.Equal(t, []string{"eng"}, v)
	assert.Equal(t, 1, *n)

	require.NoError(t, second.InvalidateOrgCache(ctx, "org-1", ScopeDepartments))
	_, _ = Remember(ctx, first, "org-1", ScopeDepartments, "all", load)
	assert.Equal(t, 2, *n)
}
