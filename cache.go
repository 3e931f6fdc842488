package dbdict

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Cache stores compiled statements. Users may implement it with their
// preferred caching solution (e.g., Redis, Memcached, in-memory).
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all values with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// CacheKey identifies a compiled statement. Statements compiled by one
// dictionary are never shared with another, so the dialect leads the key
// and DeletePrefix(dialect+":") drops a whole product.
type CacheKey struct {
	Dialect   string
	Table     string
	Operation string // select, count, update, delete, insert
	Shape     string // caller-defined fingerprint of the statement shape
	Start     int64
	End       int64
}

// String returns the string representation of the cache key.
func (k CacheKey) String() string {
	var sb strings.Builder
	sb.WriteString(k.Dialect)
	sb.WriteByte(':')
	sb.WriteString(k.Table)
	sb.WriteByte(':')
	sb.WriteString(k.Operation)
	sb.WriteByte(':')
	sb.WriteString(k.Shape)
	if k.Start != 0 || k.End != 0 {
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatInt(k.Start, 10))
		sb.WriteByte('-')
		sb.WriteString(strconv.FormatInt(k.End, 10))
	}
	return sb.String()
}
