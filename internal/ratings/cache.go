package ratings

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"marquee/internal/textutil"
)

// CachedFetcher memoizes another fetcher's results for a TTL, keyed by
// normalized title and year. Errors are never cached; a source that was down
// is retried on the next call.
type CachedFetcher struct {
	inner Fetcher
	cache *gocache.Cache
}

// NewCachedFetcher wraps inner with a TTL cache. A non-positive ttl disables
// expiry cleanup but still caches for the process lifetime.
func NewCachedFetcher(inner Fetcher, ttl time.Duration) *CachedFetcher {
	expiry := ttl
	cleanup := ttl
	if ttl <= 0 {
		expiry = gocache.NoExpiration
		cleanup = 0
	}
	return &CachedFetcher{
		inner: inner,
		cache: gocache.New(expiry, cleanup),
	}
}

// Fetch returns the cached set when present, delegating otherwise.
func (f *CachedFetcher) Fetch(ctx context.Context, title string, year int) (Set, error) {
	key := textutil.TitleKey(title, year)
	if cached, ok := f.cache.Get(key); ok {
		if set, ok := cached.(Set); ok {
			return set, nil
		}
	}
	set, err := f.inner.Fetch(ctx, title, year)
	if err != nil {
		return Set{}, err
	}
	f.cache.SetDefault(key, set)
	return set, nil
}
