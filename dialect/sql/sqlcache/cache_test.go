package sqlcache

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dbdict"
	"github.com/syssam/dbdict/dialect"
	"github.com/syssam/dbdict/dialect/sql"
	"github.com/syssam/dbdict/dialect/sql/dict"
)

func usersByName(d *dict.Dictionary) *sql.SelectSpec {
	return sql.NewSelect(d).
		Columns("id", "name").
		From("users", "t0").
		Filter(sql.EQ("active", true), sql.UserParamEQ("name", "name", nil))
}

func TestCompile(t *testing.T) {
	d := dict.MustNew(dialect.Postgres)
	st, err := CompileSelect(d, usersByName(d).SetRange(10, 20), false)
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name FROM users t0 WHERE active = $1 AND name = $2 LIMIT 10 OFFSET 10", st.Query)
	assert.Zero(t, st.Skip)
	assert.Equal(t, []string{"name"}, st.UserKeys())

	args, err := st.Args(d, map[string]any{"name": "a8m"})
	require.NoError(t, err)
	assert.Equal(t, []any{true, "a8m"}, args)

	_, err = st.Args(d, nil)
	assert.ErrorContains(t, err, `missing value for parameter "name"`)

	ora := dict.MustNew(dialect.Oracle)
	st, err = CompileSelect(ora, usersByName(ora).SetRange(10, 20), false)
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name FROM users t0 WHERE active = :1 AND name = :2 AND ROWNUM <= 20", st.Query)
	assert.Equal(t, int64(10), st.Skip)
	args, err = st.Args(ora, map[string]any{"name": "a8m"})
	require.NoError(t, err)
	assert.Equal(t, []any{1, "a8m"}, args)
}

func TestCompileErrors(t *testing.T) {
	d := dict.MustNew(dialect.SQLite, dict.WithOverrides(dict.Overrides{SimulateLocking: ptr(false)}))
	_, err := CompileSelect(d, usersByName(d), true)
	assert.True(t, dbdict.IsUnsupported(err))

	b := sql.NewBuffer(d).AddError(errors.New("bad predicate"))
	_, err = Compile(d, b)
	assert.ErrorContains(t, err, "bad predicate")
}

func TestStmtsGet(t *testing.T) {
	ctx := context.Background()
	d := dict.MustNew(dialect.Postgres)
	mem := NewMemoryCache()
	s := New(mem)
	key := dbdict.CacheKey{Dialect: d.Name(), Table: "users", Operation: "select", Shape: "by-name"}

	var compiles int
	compile := func() (*Statement, error) {
		compiles++
		return CompileSelect(d, usersByName(d), false)
	}
	first, err := s.Get(ctx, key, compile)
	require.NoError(t, err)
	second, err := s.Get(ctx, key, compile)
	require.NoError(t, err)
	assert.Equal(t, 1, compiles)
	assert.Equal(t, first.Query, second.Query)
	assert.Equal(t, Stats{Hits: 1, Misses: 1}, s.Stats())
	assert.Equal(t, 1, mem.Len())

	// Values survive the encoding.
	args, err := second.Args(d, map[string]any{"name": "x"})
	require.NoError(t, err)
	assert.Equal(t, []any{true, "x"}, args)

	other := key
	other.Dialect = dialect.MySQL
	_, err = s.Get(ctx, other, func() (*Statement, error) { return &Statement{Query: "SELECT 1"}, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, mem.Len())

	require.NoError(t, s.Invalidate(ctx, dialect.Postgres))
	assert.Equal(t, 1, mem.Len())
	require.NoError(t, s.Clear(ctx))
	assert.Zero(t, mem.Len())
}

func TestStmtsCompileError(t *testing.T) {
	s := New(NewMemoryCache())
	key := dbdict.CacheKey{Dialect: dialect.Generic, Table: "users", Operation: "select"}
	_, err := s.Get(context.Background(), key, func() (*Statement, error) {
		return nil, errors.New("boom")
	})
	assert.ErrorContains(t, err, "sqlcache: compile generic:users:select:: boom")
}

func TestStmtsConcurrentMiss(t *testing.T) {
	s := New(NewMemoryCache())
	key := dbdict.CacheKey{Dialect: dialect.Generic, Table: "users", Operation: "count"}
	var (
		compiles atomic.Int32
		start    = make(chan struct{})
		wg       sync.WaitGroup
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.Get(context.Background(), key, func() (*Statement, error) {
				compiles.Add(1)
				time.Sleep(20 * time.Millisecond)
				return &Statement{Query: "SELECT COUNT(*) FROM users"}, nil
			})
			assert.NoError(t, err)
		}()
	}
	close(start)
	wg.Wait()
	assert.Equal(t, int32(1), compiles.Load())
}

func TestStmtsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryCache()
	var buf bytes.Buffer
	s := New(mem, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	key := dbdict.CacheKey{Dialect: dialect.Generic, Table: "users", Operation: "select", Shape: "all"}
	require.NoError(t, mem.Set(ctx, key.String(), []byte{0xc1}, 0))

	st, err := s.Get(ctx, key, func() (*Statement, error) { return &Statement{Query: "SELECT * FROM users"}, nil })
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users", st.Query)
	assert.Equal(t, int64(1), s.Stats().Errors)
	assert.Contains(t, buf.String(), "dropping undecodable cached statement")

	b, err := mem.Get(ctx, key.String())
	require.NoError(t, err)
	decoded, err := unmarshal(b)
	require.NoError(t, err)
	assert.Equal(t, st.Query, decoded.Query)
}

func TestMemoryCacheTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mem := NewMemoryCache()
	mem.now = func() time.Time { return now }

	require.NoError(t, mem.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, mem.Set(ctx, "b", []byte("2"), 0))
	v, err := mem.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	now = now.Add(time.Minute)
	v, err = mem.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, v)
	v, err = mem.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)
	assert.Equal(t, 1, mem.Len())

	// Returned values are copies.
	v[0] = 'x'
	v, _ = mem.Get(ctx, "b")
	assert.Equal(t, []byte("2"), v)

	require.NoError(t, mem.Delete(ctx, "b"))
	v, err = mem.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func ptr[T any](v T) *T { return &v }
