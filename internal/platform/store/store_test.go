package store

import (
	"context"
	"errors"
	"testing"
	"time"

	perr "orgcore/internal/platform/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct{ err error }

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if p, ok := dest[0].(*string); ok {
		*p = "org-a"
	}
	return nil
}

type fakeRows struct {
	vals []string
	i    int
	err  error
}

func (r *fakeRows) Next() bool { r.i++; return r.i <= len(r.vals) }
func (r *fakeRows) Scan(dest ...any) error {
	*(dest[0].(*string)) = r.vals[r.i-1]
	return nil
}
func (r *fakeRows) Err() error { return r.err }
func (r *fakeRows) Close()     {}

type fakeQuerier struct {
	affected int64
	rows     []string
	rowErr   error
	sql      []string
	args     [][]any
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (CommandTag, error) {
	f.sql = append(f.sql, sql)
	f.args = append(f.args, args)
	return pgconn.NewCommandTag("UPDATE " + itoa(f.affected)), nil
}

func (f *fakeQuerier) Query(_ context.Context, sql string, args ...any) (Rows, error) {
	f.sql = append(f.sql, sql)
	return &fakeRows{vals: f.rows}, nil
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) Row {
	f.sql = append(f.sql, sql)
	f.args = append(f.args, args)
	return fakeRow{err: f.rowErr}
}

func (f *fakeQuerier) Tx(ctx context.Context, fn func(q RowQuerier) error) error { return fn(f) }

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	s := ""
	for ; n > 0; n /= 10 {
		s = string(rune('0'+n%10)) + s
	}
	return s
}

func scanString(r Row) (string, error) {
	var s string
	return s, r.Scan(&s)
}

func TestExecOne(t *testing.T) {
	ok, err := ExecOne(context.Background(), &fakeQuerier{affected: 1}, "UPDATE x")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ExecOne(context.Background(), &fakeQuerier{affected: 0}, "UPDATE x")
	require.NoError(t, err)
	assert.False(t, ok, "zero rows is a lost race, not an error")

	ok, _ = ExecOne(context.Background(), &fakeQuerier{affected: 11}, "UPDATE x")
	assert.False(t, ok)
}

func TestScalarMapsNoRows(t *testing.T) {
	v, err := Scalar[string](context.Background(), &fakeQuerier{}, "SELECT")
	require.NoError(t, err)
	assert.Equal(t, "org-a", v)

	_, err = Scalar[string](context.Background(), &fakeQuerier{rowErr: pgx.ErrNoRows}, "SELECT")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound))
}

func TestOneAndMany(t *testing.T) {
	ctx := context.Background()
	got, err := Many(ctx, &fakeQuerier{rows: []string{"a", "b"}}, scanString, "SELECT")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	one, err := One(ctx, &fakeQuerier{rows: []string{"a"}}, scanString, "SELECT")
	require.NoError(t, err)
	assert.Equal(t, "a", one)

	_, err = One(ctx, &fakeQuerier{}, scanString, "SELECT")
	assert.ErrorIs(t, err, perr.ErrNotFound)
}

func TestRunInTenantPinsSessionVariable(t *testing.T) {
	f := &fakeQuerier{}
	var seen string
	err := RunInTenant(context.Background(), f, "org-a", func(ctx context.Context, q RowQuerier) error {
		seen, _ = TenantID(ctx)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "org-a", seen)
	assert.Equal(t, setTenantSQL, f.sql[0])
	assert.Equal(t, []any{"org-a"}, f.args[0])

	f = &fakeQuerier{rowErr: errors.New("boom")}
	called := false
	err = RunInTenant(context.Background(), f, "org-a", func(context.Context, RowQuerier) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestRunInTenantJoinsOpenTransaction(t *testing.T) {
	f := &fakeQuerier{}
	ctx := context.Background()
	err := RunInTenant(ctx, f, "org-a", func(ctx context.Context, outer RowQuerier) error {
		assert.Same(t, outer, Querier(ctx, nil))
		return RunInTenant(ctx, f, "org-a", func(_ context.Context, inner RowQuerier) error {
			assert.Same(t, outer, inner)
			return nil
		})
	})
	require.NoError(t, err)
	assert.Len(t, f.sql, 1, "the joined call must not pin a second transaction")

	err = RunInTenant(ctx, f, "org-a", func(ctx context.Context, _ RowQuerier) error {
		return RunInTenant(ctx, f, "org-b", func(context.Context, RowQuerier) error {
			t.Fatal("ran under another org's transaction")
			return nil
		})
	})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeForbidden))

	def := &fakeQuerier{}
	assert.Same(t, def, Querier(ctx, def))
}

func TestRetry(t *testing.T) {
	n := 0
	err := retry(context.Background(), 3, time.Millisecond, 2*time.Millisecond, func() error {
		n++
		if n < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	err = retry(context.Background(), 2, time.Millisecond, time.Millisecond, func() error { return errors.New("down") })
	assert.EqualError(t, err, "down")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = retry(ctx, 5, time.Second, time.Second, func() error { return errors.New("down") })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenRedisAndGuard(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	s, err := Open(ctx, Config{Redis: RedisConfig{Enabled: true, Addr: mr.Addr()}})
	require.NoError(t, err)
	require.NoError(t, s.Guard(ctx))

	mr.Close()
	assert.Error(t, s.Guard(ctx))
	assert.NoError(t, s.Close(ctx))
}

func TestWithRedisInjectsClient(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s, err := Open(context.Background(), Config{}, WithRedis(c))
	require.NoError(t, err)
	assert.Same(t, c, s.Redis.(*redis.Client))
	assert.Nil(t, s.PG)

	var nilStore *Store
	assert.Error(t, nilStore.Guard(context.Background()))
}
