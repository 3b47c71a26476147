package tablebase

import (
	"context"
	"sync/atomic"

	"github.com/dgraph-io/ristretto/v2"
)

// CachedProber wraps another prober with an in-memory cache keyed by FEN.
// This reduces API calls for frequently probed positions.
type CachedProber struct {
	inner  Prober
	cache  *ristretto.Cache[string, Result]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCachedProber creates a cached prober holding up to size results.
func NewCachedProber(inner Prober, size int64) (*CachedProber, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, Result]{
		NumCounters: size * 10,
		MaxCost:     size,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &CachedProber{inner: inner, cache: cache}, nil
}

// Probe returns the cached result for fen or asks the inner prober.
// Errors are not cached.
func (cp *CachedProber) Probe(ctx context.Context, fen string) (Result, error) {
	if result, ok := cp.cache.Get(fen); ok {
		cp.hits.Add(1)
		return result, nil
	}
	cp.misses.Add(1)

	result, err := cp.inner.Probe(ctx, fen)
	if err != nil {
		return Result{}, err
	}
	cp.cache.Set(fen, result, 1)
	cp.cache.Wait()
	return result, nil
}

// Suggest returns the best move for fen, or "" when there is none.
func (cp *CachedProber) Suggest(ctx context.Context, fen string) (string, error) {
	r, err := cp.Probe(ctx, fen)
	if err != nil {
		return "", err
	}
	return r.Suggest(), nil
}

// HitRate returns the cache hit rate as a percentage.
func (cp *CachedProber) HitRate() float64 {
	hits, misses := cp.hits.Load(), cp.misses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Clear empties the cache and resets the counters.
func (cp *CachedProber) Clear() {
	cp.cache.Clear()
	cp.hits.Store(0)
	cp.misses.Store(0)
}

// Close releases the cache's background goroutines.
func (cp *CachedProber) Close() {
	cp.cache.Close()
}
