package ratelimit

import "strings"

// unlimitedRoutes are never rate limited, keyed by "METHOD path".
var unlimitedRoutes = map[string]bool{
	"GET /health": true,
}

// MatchEndpoint returns the configuration that governs a request, or nil when
// the default limit applies. The longest configured path that equals path or
// is a whole-segment prefix of it wins, so "/tailor" also covers
// "/tailor/stream". Unlimited routes get a config with a zero Limit.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if unlimitedRoutes[method+" "+path] {
		return &EndpointConfig{Path: path, Method: method}
	}

	var best *EndpointConfig
	for i := range configs {
		config := &configs[i]
		if config.Method != method || !coversPath(config.Path, path) {
			continue
		}
		if best == nil || len(config.Path) > len(best.Path) {
			best = config
		}
	}
	return best
}

// coversPath reports whether pattern is path itself or one of its parent segments.
func coversPath(pattern, path string) bool {
	pattern = strings.TrimSuffix(pattern, "/")
	return path == pattern || strings.HasPrefix(path, pattern+"/")
}
