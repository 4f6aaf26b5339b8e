package playerjs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/famomatic/ytstream/internal/types"
)

// Fetcher downloads player scripts.
type Fetcher interface {
	Fetch(ctx context.Context, playerURL string) (string, error)
}

// ResolverConfig contains externally tunable settings for player script fetches.
type ResolverConfig struct {
	BaseURL         string
	UserAgent       string
	Headers         http.Header
	PreferredLocale string
}

const (
	defaultBaseURL         = "https://www.youtube.com"
	defaultPlayerUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultPlayerLocale    = "en_US"
)

var (
	playerPathPattern = regexp.MustCompile(`^/s/player/([A-Za-z0-9_-]+)/(.+)$`)
	localePathPattern = regexp.MustCompile(`(?i)(player(?:_[a-z0-9]+)?\.vflset)/[a-z]{2,3}_[a-z]{2,3}/base\.js$`)
	nonAlnumPattern   = regexp.MustCompile(`[^a-zA-Z0-9]+`)
)

type httpFetcher struct {
	client *http.Client
	config ResolverConfig
}

// NewFetcher returns a Fetcher issuing plain GETs through client.
func NewFetcher(client *http.Client, cfg ResolverConfig) Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpFetcher{client: client, config: cfg}
}

func (f *httpFetcher) Fetch(ctx context.Context, playerURL string) (string, error) {
	target := playerURL
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		base := f.config.BaseURL
		if base == "" {
			base = defaultBaseURL
		}
		target = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(target, "/")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("playerjs: create request: %w", err)
	}
	ua := f.config.UserAgent
	if ua == "" {
		ua = defaultPlayerUserAgent
	}
	req.Header.Set("User-Agent", ua)
	for k, values := range f.config.Headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("playerjs: fetch player script: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &types.HTTPStatusError{URL: target, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("playerjs: read player script: %w", err)
	}
	return string(body), nil
}

// NormalizePlayerURL pins the locale segment of a player script path so
// localized variants of the same player share one cache entry.
func NormalizePlayerURL(playerURL, locale string) string {
	if locale == "" {
		locale = defaultPlayerLocale
	}
	u, err := url.Parse(playerURL)
	if err != nil || u.Path == "" {
		return playerURL
	}
	if localePathPattern.MatchString(u.Path) {
		u.Path = localePathPattern.ReplaceAllString(u.Path, "${1}/"+locale+"/base.js")
	}
	return u.String()
}

// PlayerCacheKey derives "<playerID>:<variant>" from a player script URL,
// falling back to the path itself.
func PlayerCacheKey(playerURL string) string {
	path := playerURL
	if u, err := url.Parse(playerURL); err == nil && u.Path != "" {
		path = u.Path
	}
	m := playerPathPattern.FindStringSubmatch(path)
	if len(m) < 3 {
		return path
	}
	return m[1] + ":" + nonAlnumPattern.ReplaceAllString(m[2], "_")
}
