package client

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/famomatic/ytstream/internal/cookies"
	"github.com/famomatic/ytstream/internal/extras"
	"github.com/famomatic/ytstream/internal/formats"
	"github.com/famomatic/ytstream/internal/playerjs"
)

const (
	DefaultCacheSize = 10
	DefaultCacheTTL  = 10 * time.Minute
)

// Config holds configuration for the client.
type Config struct {
	// HTTPClient is the client used for every upstream request.
	// If nil, one is built from ProxyURL and CookieJar with an
	// OpenTelemetry-instrumented transport.
	HTTPClient *http.Client

	// ProxyURL is the optional proxy URL to use for requests.
	// If HTTPClient is provided, this field is ignored.
	ProxyURL string

	// CookieJar is shared by all requests of the client. It is set on
	// HTTPClient when that has no jar of its own. Defaults to an empty
	// in-memory jar.
	CookieJar http.CookieJar

	// Lang is the default display language (BCP 47). Default "en".
	Lang string

	// CacheSize and CacheTTL bound the info cache and the player token
	// cache. Defaults 10 entries and 10 minutes.
	CacheSize int
	CacheTTL  time.Duration

	// CoalesceRequests shares one upstream retrieval among concurrent
	// identical info calls. Off by default.
	CoalesceRequests bool

	// RequestsPerSecond paces metadata requests; 0 disables pacing.
	RequestsPerSecond float64

	// Logger receives diagnostics. The zero value discards them.
	Logger zerolog.Logger

	// Registry, Extractor and Decipherer replace the built-in collaborators.
	Registry   formats.Registry
	Extractor  extras.Extractor
	Decipherer playerjs.Decipherer

	// BaseURL overrides https://www.youtube.com for every metadata and
	// player endpoint. Intended for tests.
	BaseURL string

	// RequestHeaders are added to every metadata request.
	RequestHeaders http.Header
}

func (c Config) withDefaults() Config {
	if c.Lang == "" {
		c.Lang = "en"
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.CookieJar == nil {
		if jar, err := cookies.NewJar(); err == nil {
			c.CookieJar = jar
		}
	}
	if c.Registry == nil {
		c.Registry = formats.DefaultRegistry
	}
	if c.Extractor == nil {
		c.Extractor = extras.HTMLExtractor{}
	}
	return c
}
