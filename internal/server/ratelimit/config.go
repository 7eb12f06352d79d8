package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit for one route and everything beneath it.
// Requests it covers share a single bucket per client.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int           // requests allowed per Window
	Window time.Duration // refill period
	Burst  int           // bucket capacity; Limit when zero
}

// LoadConfig reads the limiter settings from RATE_LIMIT_* environment
// variables. Malformed values fall back to the defaults.
func LoadConfig() *Config {
	env := envReader("RATE_LIMIT_")
	if !env.boolean("ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    env.integer("DEFAULT_LIMIT", 1000),
		DefaultWindow:   env.duration("DEFAULT_WINDOW", time.Minute),
		CleanupInterval: env.duration("CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(env.str("WHITELIST")),
		Blacklist:       parseIPList(env.str("BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs limits the routes that call the language model or
// launch Chrome. /score and /parse are pure computation and use the default.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// a whole tailoring session, streamed or not
		{Path: "/tailor", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},

		{Path: "/analyze", Method: "POST", Limit: 60, Window: time.Hour, Burst: 5},
		{Path: "/rewrite", Method: "POST", Limit: 120, Window: time.Hour, Burst: 10},
		{Path: "/explain", Method: "POST", Limit: 120, Window: time.Hour, Burst: 10},
		{Path: "/export", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
	}
}

// envReader looks up environment variables sharing a prefix.
type envReader string

func (p envReader) str(key string) string {
	return strings.TrimSpace(os.Getenv(string(p) + key))
}

func (p envReader) integer(key string, fallback int) int {
	if n, err := strconv.Atoi(p.str(key)); err == nil {
		return n
	}
	return fallback
}

func (p envReader) boolean(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(p.str(key)); err == nil {
		return b
	}
	return fallback
}

func (p envReader) duration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(p.str(key)); err == nil {
		return d
	}
	return fallback
}

// parseIPList turns a comma-separated list of addresses into a set.
func parseIPList(list string) map[string]bool {
	set := make(map[string]bool)
	for ip := range strings.SplitSeq(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			set[ip] = true
		}
	}
	return set
}
