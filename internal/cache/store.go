// Package cache provides a tiered key/value store: Redis when reachable,
// an in-process map otherwise. Values are JSON documents stamped with TTL
// metadata so expiry semantics are identical on both tiers.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/projectintel/internal/logger"
)

// MetaKey is the reserved field merged into every cached JSON object.
const MetaKey = "_meta"

// Meta records when a cached value expires. Expires is float unix seconds
// so readers in other processes can compare against their own clock.
type Meta struct {
	Expires float64 `json:"expires"`
	TTL     int64   `json:"ttl"`
}

type localEntry struct {
	value   json.RawMessage
	expires time.Time
}

// Store is safe for concurrent use. Redis failures degrade silently to the
// local map; absence of durability is acceptable, a lost write is not
// surfaced to callers.
type Store struct {
	client *redis.Client // nil means fallback-only for process lifetime
	log    logger.Logger

	mu    sync.RWMutex
	local map[string]localEntry

	now func() time.Time
}

// New creates a Store backed by client. A nil client puts the store in
// fallback-only mode.
func New(client *redis.Client, log logger.Logger) *Store {
	return &Store{
		client: client,
		log:    log,
		local:  make(map[string]localEntry),
		now:    time.Now,
	}
}

// Get returns the cached JSON document for key, or absent. On the Redis
// path the _meta TTL is re-derived from the backend's own remaining TTL,
// tolerating clock drift between writer and reader.
func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	if s.client != nil {
		raw, err := s.client.Get(ctx, key).Result()
		switch {
		case err == nil:
			return s.syncMeta(ctx, key, []byte(raw)), true
		case err == redis.Nil:
			// fall through to the local map
		default:
			s.log.Warn("Redis get failed, falling back to memory",
				logger.String("key", key),
				logger.Error(err),
			)
		}
	}

	return s.localGet(key)
}

// GetJSON unmarshals the cached value for key into dest.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) bool {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.log.Warn("Cached value unmarshal failed",
			logger.String("key", key),
			logger.Error(err),
		)
		return false
	}
	return true
}

// Set stores value under key for ttl. The value is stamped with _meta
// before either backend sees it; non-object values are wrapped as
// {"value": ..., "_meta": ...}.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	stamped, err := s.stamp(value, ttl)
	if err != nil {
		s.log.Error("Cache set skipped, value not serializable",
			logger.String("key", key),
			logger.Error(err),
		)
		return
	}

	if s.client != nil {
		err := s.client.SetEx(ctx, key, string(stamped), ttl).Err()
		if err == nil {
			return
		}
		s.log.Warn("Redis set failed, falling back to memory",
			logger.String("key", key),
			logger.Error(err),
		)
	}

	s.mu.Lock()
	s.local[key] = localEntry{
		value:   stamped,
		expires: s.now().Add(ttl),
	}
	s.mu.Unlock()
}

// Delete removes key from both tiers.
func (s *Store) Delete(ctx context.Context, key string) {
	if s.client != nil {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			s.log.Warn("Redis delete failed",
				logger.String("key", key),
				logger.Error(err),
			)
		}
	}

	s.mu.Lock()
	delete(s.local, key)
	s.mu.Unlock()
}

// localGet looks up key in the fallback map. Expired entries are evicted
// lazily on read and reported absent.
func (s *Store) localGet(key string) (json.RawMessage, bool) {
	s.mu.RLock()
	entry, ok := s.local[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if s.now().After(entry.expires) {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have
		// replaced the entry.
		if cur, still := s.local[key]; still && s.now().After(cur.expires) {
			delete(s.local, key)
		}
		s.mu.Unlock()
		return nil, false
	}

	out := make(json.RawMessage, len(entry.value))
	copy(out, entry.value)
	return out, true
}

// stamp marshals value and merges TTL metadata into the document.
func (s *Store) stamp(value any, ttl time.Duration) (json.RawMessage, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	meta := Meta{
		Expires: float64(s.now().Add(ttl).UnixNano()) / float64(time.Second),
		TTL:     int64(ttl.Seconds()),
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil && obj != nil {
		metaRaw, _ := json.Marshal(meta)
		obj[MetaKey] = metaRaw
		return json.Marshal(obj)
	}

	return json.Marshal(map[string]any{
		"value": json.RawMessage(raw),
		MetaKey: meta,
	})
}

// syncMeta rewrites the _meta field of a document read from Redis using the
// backend's remaining TTL. Documents without _meta pass through untouched.
func (s *Store) syncMeta(ctx context.Context, key string, raw []byte) json.RawMessage {
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		return raw
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return raw
	}
	if _, ok := obj[MetaKey]; !ok {
		return raw
	}

	meta := Meta{
		Expires: float64(s.now().Add(ttl).UnixNano()) / float64(time.Second),
		TTL:     int64(ttl.Seconds()),
	}
	metaRaw, _ := json.Marshal(meta)
	obj[MetaKey] = metaRaw

	out, err := json.Marshal(obj)
	if err != nil {
		return raw
	}
	return out
}
