// Package governor rate-limits retries against flaky upstream targets.
// It is a lightweight circuit breaker scoped per external identity (a repo,
// a social handle) rather than per upstream service: one bad key never
// blocks fetches for others, and repeated failures decay on their own once
// the cooldown window passes.
package governor

import (
	"context"
	"strings"
	"time"

	"github.com/jonesrussell/projectintel/internal/cache"
	"github.com/jonesrussell/projectintel/internal/logger"
)

// keyPrefix namespaces failure records inside the cache store.
const keyPrefix = "fetch_attempts:"

// FetchRecord tracks consecutive failures for one key.
type FetchRecord struct {
	Attempts    int     `json:"attempts"`
	LastAttempt float64 `json:"last_attempt"`
}

// Governor gates live fetches per logical key. Records are persisted in the
// cache store with TTL equal to the cooldown window, so a record that is
// never touched again simply ages out.
type Governor struct {
	store       *cache.Store
	log         logger.Logger
	maxAttempts int
	cooldown    time.Duration

	now func() time.Time
}

// New creates a Governor. maxAttempts and cooldown must be positive.
func New(store *cache.Store, maxAttempts int, cooldown time.Duration, log logger.Logger) *Governor {
	return &Governor{
		store:       store,
		log:         log,
		maxAttempts: maxAttempts,
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// ShouldFetch reports whether a live fetch for key is currently allowed.
// A record past its cooldown is outvoted by the elapsed-time check rather
// than cleared; the next recorded outcome overwrites it.
func (g *Governor) ShouldFetch(ctx context.Context, key string) bool {
	var rec FetchRecord
	if !g.store.GetJSON(ctx, g.key(key), &rec) {
		return true
	}

	if rec.Attempts < g.maxAttempts {
		return true
	}

	elapsed := g.now().Sub(unixToTime(rec.LastAttempt))
	if elapsed < g.cooldown {
		g.log.Warn("Fetch suppressed, cooling down",
			logger.String("key", key),
			logger.Int("attempts", rec.Attempts),
			logger.Duration("elapsed", elapsed),
		)
		return false
	}

	return true
}

// RecordFailure increments the failure count for key and restarts the
// cooldown TTL.
func (g *Governor) RecordFailure(ctx context.Context, key string) {
	var rec FetchRecord
	g.store.GetJSON(ctx, g.key(key), &rec)

	rec.Attempts++
	rec.LastAttempt = timeToUnix(g.now())
	g.store.Set(ctx, g.key(key), rec, g.cooldown)
}

// RecordSuccess resets the failure count for key.
func (g *Governor) RecordSuccess(ctx context.Context, key string) {
	rec := FetchRecord{
		Attempts:    0,
		LastAttempt: timeToUnix(g.now()),
	}
	g.store.Set(ctx, g.key(key), rec, g.cooldown)
}

func (g *Governor) key(key string) string {
	return keyPrefix + strings.ToLower(key)
}

func timeToUnix(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func unixToTime(s float64) time.Time {
	return time.Unix(0, int64(s*float64(time.Second)))
}
