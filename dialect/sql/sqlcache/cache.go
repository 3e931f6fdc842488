package sqlcache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/syssam/dbdict"
)

// Stmts is a statement cache on top of a dbdict.Cache. Concurrent misses
// on the same key compile once.
type Stmts struct {
	cache dbdict.Cache
	ttl   time.Duration
	log   *slog.Logger
	group singleflight.Group

	hits, misses, errors atomic.Int64
}

// Option configures Stmts.
type Option func(*Stmts)

// WithTTL sets the lifetime of cached statements. Zero keeps them until
// they are invalidated.
func WithTTL(ttl time.Duration) Option {
	return func(s *Stmts) { s.ttl = ttl }
}

// WithLogger sets the logger reporting cache failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Stmts) { s.log = l }
}

// New returns a statement cache storing into c.
func New(c dbdict.Cache, opts ...Option) *Stmts {
	s := &Stmts{
		cache: c,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats holds the counters of a statement cache.
type Stats struct {
	Hits   int64
	Misses int64
	// Errors counts cache reads and writes that failed. The statement is
	// compiled again in that case.
	Errors int64
}

// Stats returns the counters of the cache.
func (s *Stmts) Stats() Stats {
	return Stats{Hits: s.hits.Load(), Misses: s.misses.Load(), Errors: s.errors.Load()}
}

// Get returns the statement cached under key, calling compile and storing
// its result on a miss. Cache failures are logged and never fail Get.
func (s *Stmts) Get(ctx context.Context, key dbdict.CacheKey, compile func() (*Statement, error)) (*Statement, error) {
	k := key.String()
	if st, ok := s.load(ctx, k); ok {
		s.hits.Add(1)
		return st, nil
	}
	v, err, _ := s.group.Do(k, func() (any, error) {
		if st, ok := s.load(ctx, k); ok {
			return st, nil
		}
		s.misses.Add(1)
		st, err := compile()
		if err != nil {
			return nil, fmt.Errorf("sqlcache: compile %s: %w", k, err)
		}
		s.store(ctx, k, st)
		return st, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Statement), nil
}

func (s *Stmts) load(ctx context.Context, k string) (*Statement, bool) {
	b, err := s.cache.Get(ctx, k)
	if err != nil {
		s.errors.Add(1)
		s.log.WarnContext(ctx, "statement cache read failed", "key", k, "error", err)
		return nil, false
	}
	if b == nil {
		return nil, false
	}
	st, err := unmarshal(b)
	if err != nil {
		s.errors.Add(1)
		s.log.WarnContext(ctx, "dropping undecodable cached statement", "key", k, "error", err)
		if err := s.cache.Delete(ctx, k); err != nil {
			s.log.WarnContext(ctx, "statement cache delete failed", "key", k, "error", err)
		}
		return nil, false
	}
	return st, true
}

func (s *Stmts) store(ctx context.Context, k string, st *Statement) {
	b, err := st.marshal()
	if err == nil {
		err = s.cache.Set(ctx, k, b, s.ttl)
	}
	if err != nil {
		s.errors.Add(1)
		s.log.WarnContext(ctx, "statement cache write failed", "key", k, "error", err)
	}
}

// Invalidate drops the statements of a product, e.g. after its
// dictionary was probed again with another server version.
func (s *Stmts) Invalidate(ctx context.Context, product string) error {
	if err := s.cache.DeletePrefix(ctx, product+":"); err != nil {
		return fmt.Errorf("sqlcache: invalidate %s: %w", product, err)
	}
	return nil
}

// Clear drops every cached statement.
func (s *Stmts) Clear(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("sqlcache: clear: %w", err)
	}
	return nil
}
