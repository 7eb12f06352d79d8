package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock freezes the limiter's notion of time so refills are deterministic.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(cfg *Config) (*Limiter, *fixedClock) {
	clock := &fixedClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(cfg)
	l.now = clock.now
	return l, clock
}

func TestTokenBucket(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bucket := newTokenBucket(10, 1.0)

	for i := range 10 {
		assert.True(t, bucket.allow(now), "request %d", i+1)
	}
	assert.False(t, bucket.allow(now))

	remaining, reset := bucket.status(now)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, now.Add(10*time.Second), reset)

	later := now.Add(time.Second)
	assert.True(t, bucket.allow(later))
	assert.False(t, bucket.allow(later))
}

func TestLimiter_Allow(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := range 10 {
		allowed, info := limiter.Allow("127.0.0.1", "/score", "POST")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/score", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.InDelta(t, 6.0, info.RetryAfter.Seconds(), 0.001)
}

func TestLimiter_Refill(t *testing.T) {
	limiter, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 60, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for range 60 {
		limiter.Allow("c", "/score", "POST")
	}
	allowed, _ := limiter.Allow("c", "/score", "POST")
	require.False(t, allowed)

	clock.advance(time.Second)
	allowed, _ = limiter.Allow("c", "/score", "POST")
	assert.True(t, allowed)
}

func TestLimiter_WhitelistBlacklistDisabled(t *testing.T) {
	t.Run("whitelist", func(t *testing.T) {
		limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute,
			Whitelist: map[string]bool{"127.0.0.1": true}})
		defer limiter.Stop()
		for range 50 {
			allowed, info := limiter.Allow("127.0.0.1", "/score", "POST")
			assert.True(t, allowed)
			assert.Zero(t, info.Limit)
		}
	})

	t.Run("blacklist", func(t *testing.T) {
		limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1000, DefaultWindow: time.Minute,
			Blacklist: map[string]bool{"192.168.1.1": true}})
		defer limiter.Stop()
		allowed, _ := limiter.Allow("192.168.1.1", "/health", "GET")
		assert.False(t, allowed)
	})

	t.Run("disabled", func(t *testing.T) {
		limiter, _ := newTestLimiter(&Config{Enabled: false})
		defer limiter.Stop()
		for range 50 {
			allowed, _ := limiter.Allow("127.0.0.1", "/tailor", "POST")
			assert.True(t, allowed)
		}
	})
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/tailor", Method: "POST", Limit: 5, Window: time.Hour, Burst: 2},
		},
	})
	defer limiter.Stop()

	for range 2 {
		allowed, info := limiter.Allow("c", "/tailor", "POST")
		require.True(t, allowed)
		assert.Equal(t, 5, info.Limit)
	}
	allowed, _ := limiter.Allow("c", "/tailor", "POST")
	assert.False(t, allowed, "burst of 2 is exhausted")

	allowed, info := limiter.Allow("c", "/score", "POST")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)

	allowed, info = limiter.Allow("c", "/health", "GET")
	assert.True(t, allowed)
	assert.Zero(t, info.Limit)
}

func TestLimiter_SharedPrefixBucket(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	})
	defer limiter.Stop()

	for range 3 {
		allowed, _ := limiter.Allow("c", "/tailor", "POST")
		require.True(t, allowed)
	}

	allowed, info := limiter.Allow("c", "/tailor/stream", "POST")
	assert.False(t, allowed, "streamed sessions share the /tailor budget")
	assert.Equal(t, 20, info.Limit)

	allowed, _ = limiter.Allow("other", "/tailor/stream", "POST")
	assert.True(t, allowed)
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("127.0.0.1", "/score", "POST"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowedCount)
}

func TestLimiter_CleanupBuckets(t *testing.T) {
	limiter, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := range 4 {
		limiter.Allow(fmt.Sprintf("10.0.0.%d", i), "/score", "POST")
	}
	clock.advance(2 * time.Hour)
	limiter.Allow("10.0.0.0", "/score", "POST")

	limiter.cleanupBuckets(clock.now().Add(-time.Hour))

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Len(t, limiter.buckets, 1)
	assert.Contains(t, limiter.buckets, "10.0.0.0:/score:POST")
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, CleanupInterval: time.Millisecond})
	limiter.Stop()
	assert.NotPanics(t, limiter.Stop)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, info := limiter.Allow("127.0.0.1", "/score", "POST")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	assert.Equal(t, 20, MatchEndpoint("/tailor", "POST", configs).Limit)
	assert.Equal(t, 20, MatchEndpoint("/tailor/stream", "POST", configs).Limit)
	assert.Zero(t, MatchEndpoint("/health", "GET", configs).Limit)
	assert.Nil(t, MatchEndpoint("/score", "POST", configs))
	assert.Nil(t, MatchEndpoint("/tailor", "GET", configs))
	assert.Nil(t, MatchEndpoint("/tailoring", "POST", configs))

	nested := []EndpointConfig{
		{Path: "/tailor", Method: "POST", Limit: 20},
		{Path: "/tailor/stream/", Method: "POST", Limit: 5},
	}
	assert.Equal(t, 5, MatchEndpoint("/tailor/stream", "POST", nested).Limit)
	assert.Equal(t, 5, MatchEndpoint("/tailor/stream/x", "POST", nested).Limit)
	assert.Equal(t, 20, MatchEndpoint("/tailor/other", "POST", nested).Limit)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")

	cfg := LoadConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.True(t, cfg.Whitelist["10.0.0.2"])
	assert.NotEmpty(t, cfg.EndpointConfigs)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}
