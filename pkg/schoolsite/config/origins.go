package config

import (
	"net/url"
	"strings"
)

// NormalizeOrigin reduces an origin to scheme://host[:port]. Values without
// an http scheme are returned trimmed but otherwise untouched.
func NormalizeOrigin(origin string) string {
	origin = strings.TrimSpace(origin)
	if origin == "" || !strings.HasPrefix(origin, "http") {
		return origin
	}
	if u, err := url.Parse(origin); err == nil && u.Scheme != "" && u.Host != "" {
		return u.Scheme + "://" + u.Host
	}
	return strings.TrimRight(origin, "/")
}

// NormalizeOrigins normalizes each origin and drops empty entries.
func NormalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if n := NormalizeOrigin(o); n != "" {
			out = append(out, n)
		}
	}
	return out
}
