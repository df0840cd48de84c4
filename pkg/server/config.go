package server

import (
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config configures the HTTP server.
type Config struct {
	// Addr is the listen address.
	Addr string

	// Metrics mounts the Prometheus handler on /metrics.
	Metrics bool

	// Gatherer is the source of /metrics.
	// Default: prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer

	// Preview mounts the websocket live preview on /preview/ws.
	Preview bool

	// AllowedOrigins are host patterns (path.Match syntax, e.g.
	// "*.example.com") accepted for cross-origin preview connections.
	AllowedOrigins []string

	// MaxBodyBytes limits render request bodies and preview messages.
	MaxBodyBytes int64

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// ReadHeaderTimeout bounds reading request headers.
	ReadHeaderTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:              ":8080",
		Metrics:           true,
		Gatherer:          prometheus.DefaultGatherer,
		Preview:           true,
		MaxBodyBytes:      1 << 20,
		ShutdownTimeout:   10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.Gatherer == nil {
		c.Gatherer = d.Gatherer
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = d.MaxBodyBytes
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = d.ReadHeaderTimeout
	}
	return c
}

// SameOriginCheck validates that the websocket request origin matches the
// host. Requests without an Origin header are accepted.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == "" {
		return false
	}
	return originURL.Host == r.Host
}

// originChecker accepts same-origin requests and origins whose host
// matches one of patterns.
func originChecker(patterns []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		if SameOriginCheck(r) {
			return true
		}
		originURL, err := url.Parse(r.Header.Get("Origin"))
		if err != nil {
			return false
		}
		for _, p := range patterns {
			if ok, _ := path.Match(p, originURL.Host); ok {
				return true
			}
		}
		return false
	}
}
