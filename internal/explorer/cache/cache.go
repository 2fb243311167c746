// Package cache memoizes entry-repository reads for a fixed window. The
// store is process-wide and outlives any one session; a cache entry is valid
// for the configured TTL from creation, and concurrent cold lookups for the
// same key are coalesced through singleflight.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/marsha5813/crge-historical-database/internal/common/util"
	"github.com/marsha5813/crge-historical-database/internal/explorer/configuration"
	"github.com/marsha5813/crge-historical-database/internal/explorer/metrics"
	"github.com/marsha5813/crge-historical-database/internal/explorer/model"
	"github.com/marsha5813/crge-historical-database/internal/explorer/repository"
)

type storeEntry struct {
	value     interface{}
	expiresAt time.Time
}

// Store is the process-wide query result cache: a map from canonical call
// key to {value, expiry}. It is shared by every session; whether results are
// shared *across* identities is decided by ScopeToIdentity (see Wrap).
type Store struct {
	clock           util.Clock
	ttl             time.Duration
	scopeToIdentity bool

	mu      sync.Mutex
	entries map[string]storeEntry
	group   singleflight.Group
}

func NewStore(clock util.Clock, config configuration.CacheConfig) *Store {
	return &Store{
		clock:           clock,
		ttl:             config.Ttl,
		scopeToIdentity: config.ScopeToIdentity,
		entries:         map[string]storeEntry{},
	}
}

// Wrap returns a repository view that reads through the store. The view is
// bound to one upstream repository and one token, so build a new one
// whenever the session token changes; the store itself persists.
//
// With ScopeToIdentity enabled, keys include a fingerprint of token; results
// fetched under one identity are never served to another. Disabled, the
// cache is identity-blind: after a new sign-in, results cached under the
// previous session are still served until they expire.
func (s *Store) Wrap(upstream repository.EntryRepository, token string) *CachedEntryRepository {
	identity := ""
	if s.scopeToIdentity {
		identity = fingerprint(token)
	}
	return &CachedEntryRepository{store: s, upstream: upstream, identity: identity}
}

// CachedEntryRepository implements repository.EntryRepository over the
// shared store. Cached results are shared across calls; callers must treat
// returned slices as read-only.
type CachedEntryRepository struct {
	store    *Store
	upstream repository.EntryRepository
	identity string
}

func (c *CachedEntryRepository) ListDistinctValues(ctx context.Context, table string, column string) ([]string, error) {
	key := c.key("options", table, column)
	value, err := c.store.getOrPopulate(key, func() (interface{}, error) {
		return c.upstream.ListDistinctValues(ctx, table, column)
	})
	if err != nil {
		return nil, err
	}
	return value.([]string), nil
}

func (c *CachedEntryRepository) GetEntries(ctx context.Context, table string, filter model.FilterSpec) ([]*model.Entry, error) {
	key := c.key("entries", table, filter.Country, filter.Period, filter.Section, filter.Search)
	value, err := c.store.getOrPopulate(key, func() (interface{}, error) {
		return c.upstream.GetEntries(ctx, table, filter)
	})
	if err != nil {
		return nil, err
	}
	return value.([]*model.Entry), nil
}

// key builds a canonical cache key: structurally equal arguments always map
// to the same key, and quoting keeps argument values from colliding with the
// separator.
func (c *CachedEntryRepository) key(operation string, args ...string) string {
	parts := make([]string, 0, len(args)+2)
	if c.identity != "" {
		parts = append(parts, c.identity)
	}
	parts = append(parts, operation)
	for _, arg := range args {
		parts = append(parts, fmt.Sprintf("%q", arg))
	}
	return strings.Join(parts, "|")
}

// getOrPopulate returns the cached value for key when still valid, otherwise
// calls fetch once (coalescing concurrent misses) and stores the result.
// Errors are never cached.
func (s *Store) getOrPopulate(key string, fetch func() (interface{}, error)) (interface{}, error) {
	if value, ok := s.lookup(key); ok {
		metrics.CacheHits.Inc()
		return value, nil
	}
	metrics.CacheMisses.Inc()

	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Another waiter may have populated the entry while this call was
		// queued behind the in-flight one.
		if value, ok := s.lookup(key); ok {
			return value, nil
		}
		value, err := fetch()
		if err != nil {
			return nil, err
		}
		s.store(key, value)
		return value, nil
	})
	return value, err
}

func (s *Store) lookup(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || !s.clock.Now().Before(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

func (s *Store) store(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = storeEntry{value: value, expiresAt: s.clock.Now().Add(s.ttl)}
}

func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}
