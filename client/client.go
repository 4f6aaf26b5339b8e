// Package client is the public facade: identifier resolution, cached
// metadata retrieval, format selection and streaming downloads.
package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/famomatic/ytstream/internal/formats"
	ytlog "github.com/famomatic/ytstream/internal/log"
	"github.com/famomatic/ytstream/internal/memo"
	"github.com/famomatic/ytstream/internal/orchestrator"
	"github.com/famomatic/ytstream/internal/playerjs"
	"github.com/famomatic/ytstream/internal/selector"
	"github.com/famomatic/ytstream/internal/types"
)

type (
	VideoInfo = types.VideoInfo
	Format    = types.Format
	Extras    = types.Extras
)

const (
	opBasicInfo = "getBasicInfo"
	opFullInfo  = "getFullInfo"
)

// InfoOptions are per-call metadata options.
type InfoOptions struct {
	// Lang overrides Config.Lang and is part of the cache key.
	Lang string
	// Header is added to the upstream requests of this call.
	Header http.Header
	// Debug logs formats that could not be deciphered.
	Debug bool
}

type infoRequest struct {
	op    string
	input string
	opts  InfoOptions
}

// Client is the high-level YouTube client. It is safe for concurrent use.
type Client struct {
	config     Config
	httpClient *http.Client
	engine     *orchestrator.Engine
	decipherer playerjs.Decipherer
	logger     zerolog.Logger
	info       *memo.Cache[infoRequest, *types.VideoInfo]
}

// New creates a client.
func New(config Config) *Client {
	config = config.withDefaults()
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = defaultHTTPClient(config.ProxyURL, config.CookieJar)
	} else if httpClient.Jar == nil && config.CookieJar != nil {
		cp := *httpClient
		cp.Jar = config.CookieJar
		httpClient = &cp
	}
	logger := ytlog.WithComponent(config.Logger, "client")

	decipherer := config.Decipherer
	if decipherer == nil {
		decipherer = playerjs.NewEngine(playerjs.Config{
			Fetcher:   playerjs.NewFetcher(httpClient, playerjs.ResolverConfig{BaseURL: config.BaseURL}),
			CacheSize: config.CacheSize,
			CacheTTL:  config.CacheTTL,
			Logger:    config.Logger,
		})
	}

	engineCfg := orchestrator.Config{
		HTTPClient: httpClient,
		Extractor:  config.Extractor,
		Decipherer: decipherer,
		Registry:   config.Registry,
		Logger:     config.Logger,
	}
	if base := strings.TrimRight(config.BaseURL, "/"); base != "" {
		engineCfg.WatchURL = base + "/watch?v="
		engineCfg.EmbedURL = base + "/embed/"
		engineCfg.InfoURL = base + "/get_video_info"
	}
	if config.RequestsPerSecond > 0 {
		engineCfg.Limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}

	c := &Client{
		config:     config,
		httpClient: httpClient,
		engine:     orchestrator.NewEngine(engineCfg),
		decipherer: decipherer,
		logger:     logger,
	}
	c.info = memo.New(memo.Options[infoRequest]{
		Name:     "info",
		Size:     config.CacheSize,
		TTL:      config.CacheTTL,
		Coalesce: config.CoalesceRequests,
		Remap:    c.remap,
		Key: func(r infoRequest) string {
			return r.op + "-" + r.input + "-" + r.opts.Lang
		},
	}, c.retrieve)
	return c
}

// remap turns the caller's input into a video id and settles the language
// so equivalent calls share a cache entry.
func (c *Client) remap(r infoRequest) (infoRequest, error) {
	id, err := ResolveIdentifier(r.input)
	if err != nil {
		return r, err
	}
	r.input = id
	lang := r.opts.Lang
	if lang == "" {
		lang = c.config.Lang
	}
	r.opts.Lang = orchestrator.NormalizeLang(lang)
	return r, nil
}

func (c *Client) retrieve(ctx context.Context, r infoRequest) (*types.VideoInfo, error) {
	pipelineOpts := orchestrator.Options{
		Lang:   r.opts.Lang,
		Header: c.requestHeader(r.opts.Header),
		Debug:  r.opts.Debug,
	}
	if r.op == opBasicInfo {
		return c.engine.BasicInfo(ctx, r.input, pipelineOpts)
	}
	basic, err := c.info.Call(ctx, infoRequest{op: opBasicInfo, input: r.input, opts: r.opts})
	if err != nil {
		return nil, err
	}
	return c.engine.Complete(ctx, basic, pipelineOpts)
}

func (c *Client) requestHeader(extra http.Header) http.Header {
	if len(c.config.RequestHeaders) == 0 {
		return extra
	}
	h := c.config.RequestHeaders.Clone()
	for k, vals := range extra {
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), vals...)
	}
	return h
}

// GetBasicInfo returns the metadata of a video without deciphered URLs or
// manifest formats. Results are cached.
func (c *Client) GetBasicInfo(ctx context.Context, input string, opts InfoOptions) (*VideoInfo, error) {
	return c.info.Call(ctx, infoRequest{op: opBasicInfo, input: input, opts: opts})
}

// GetFullInfo returns playable metadata: deciphered URLs, manifest formats
// merged in, normalized and sorted. Results are cached.
func (c *Client) GetFullInfo(ctx context.Context, input string, opts InfoOptions) (*VideoInfo, error) {
	return c.info.Call(ctx, infoRequest{op: opFullInfo, input: input, opts: opts})
}

// ChooseFormat picks one format according to opts.
func ChooseFormat(list []Format, opts ChooseOptions) (Format, error) {
	return formats.Choose(list, opts)
}

// FilterFormats keeps the formats matching pred.
func FilterFormats(list []Format, pred func(Format) bool) []Format {
	return formats.FilterFunc(list, pred)
}

// FilterFormatsByName keeps the formats of a named class such as
// "audioonly" or "videoandaudio".
func FilterFormatsByName(list []Format, name string) ([]Format, error) {
	return formats.Filter(list, name)
}

// SelectFormat picks a format with a selector expression such as
// "bestaudio[ext=m4a]/best[height<=720]". Alternatives separated by "/"
// are tried in order.
func SelectFormat(list []Format, expr string) (Format, error) {
	return selector.SelectString(list, expr)
}

// ChooseOptions are the selection criteria of ChooseFormat.
type ChooseOptions = formats.ChooseOptions

// Caches exposes the client's caches for inspection and invalidation.
type Caches struct {
	// Info holds basic and full info keyed "<op>-<id>-<lang>".
	Info *memo.View[*types.VideoInfo]
	// Signature holds player token sets keyed by player id. Nil when a
	// custom Decipherer without a cache is configured.
	Signature *memo.View[*playerjs.TokenSet]
}

// Caches returns read-only handles to the client caches.
func (c *Client) Caches() Caches {
	out := Caches{Info: c.info.View()}
	if cached, ok := c.decipherer.(interface {
		Cache() *memo.View[*playerjs.TokenSet]
	}); ok {
		out.Signature = cached.Cache()
	}
	return out
}
