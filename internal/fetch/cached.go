package fetch

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonathan/resume-tailor/internal/cache"
)

// PageCacheNamespace prefixes cache keys for fetched pages
const PageCacheNamespace = "page"

// DefaultPageTTL is how long a fetched page is reused
const DefaultPageTTL = 6 * time.Hour

// CachedFetcher reuses recent successful fetches of the same URL.
type CachedFetcher struct {
	store   cache.Store
	options *Options
	ttl     time.Duration
}

// NewCachedFetcher wraps URL with store. A nil store disables caching.
func NewCachedFetcher(store cache.Store, opts *Options, ttl time.Duration) *CachedFetcher {
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	return &CachedFetcher{store: store, options: opts, ttl: ttl}
}

// Fetch returns the cached page for urlStr or fetches it. Only 200 responses
// are stored.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*Result, bool, error) {
	key := cache.Key(PageCacheNamespace, urlStr)
	if f.store != nil {
		var cached Result
		found, err := f.store.GetJSON(ctx, key, &cached)
		if err != nil {
			slog.Warn("page cache read failed", slog.String("url", urlStr), slog.Any("error", err))
		} else if found {
			return &cached, true, nil
		}
	}

	result, err := URL(ctx, urlStr, f.options)
	if err != nil {
		return result, false, err
	}

	if f.store != nil {
		if err := f.store.SetJSON(ctx, key, result, f.ttl); err != nil {
			slog.Warn("page cache write failed", slog.String("url", urlStr), slog.Any("error", err))
		}
	}
	return result, false, nil
}
