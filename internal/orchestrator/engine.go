// Package orchestrator runs the metadata pipeline: watch page, embed
// fallback, info endpoint, player response, and the full-info enrichment.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/famomatic/ytstream/internal/extras"
	"github.com/famomatic/ytstream/internal/formats"
	"github.com/famomatic/ytstream/internal/metrics"
	"github.com/famomatic/ytstream/internal/playerjs"
	"github.com/famomatic/ytstream/internal/types"
)

const (
	DefaultWatchURL = "https://www.youtube.com/watch?v="
	DefaultEmbedURL = "https://www.youtube.com/embed/"
	DefaultLang     = "en"
)

// Config wires the pipeline to its collaborators. Zero values select the
// production endpoints and default collaborators.
type Config struct {
	HTTPClient *http.Client
	WatchURL   string
	EmbedURL   string
	InfoURL    string

	Extractor  extras.Extractor
	Decipherer playerjs.Decipherer
	Registry   formats.Registry

	// Limiter paces upstream metadata requests; nil disables pacing.
	Limiter *rate.Limiter
	Logger  zerolog.Logger
	Now     func() time.Time
}

// Options are the per-call pipeline options.
type Options struct {
	Lang   string
	Header http.Header
	Debug  bool
}

// Engine is the metadata pipeline.
type Engine struct {
	cfg    Config
	tracer trace.Tracer
	logger zerolog.Logger
}

func NewEngine(cfg Config) *Engine {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.WatchURL == "" {
		cfg.WatchURL = DefaultWatchURL
	}
	if cfg.EmbedURL == "" {
		cfg.EmbedURL = DefaultEmbedURL
	}
	if cfg.Extractor == nil {
		cfg.Extractor = extras.HTMLExtractor{}
	}
	if cfg.Decipherer == nil {
		cfg.Decipherer = playerjs.NewEngine(playerjs.Config{
			Fetcher: playerjs.NewFetcher(cfg.HTTPClient, playerjs.ResolverConfig{}),
			Logger:  cfg.Logger,
		})
	}
	if cfg.Registry == nil {
		cfg.Registry = formats.DefaultRegistry
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		cfg:    cfg,
		tracer: otel.Tracer("github.com/famomatic/ytstream/internal/orchestrator"),
		logger: cfg.Logger.With().Str("component", "pipeline").Logger(),
	}
}

// NormalizeLang canonicalizes a BCP 47 tag ("en-us" becomes "en-US"). An
// empty tag selects DefaultLang; an unparsable one is returned unchanged.
func NormalizeLang(lang string) string {
	if lang == "" {
		return DefaultLang
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	return tag.String()
}

// stage opens a span and returns a completion func that records the
// duration, the error category and the span status.
func (e *Engine) stage(ctx context.Context, name, videoID string) (context.Context, func(*error)) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "ytstream.pipeline."+name, trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(attribute.String("video.id", videoID))
	return ctx, func(errp *error) {
		metrics.PipelineDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if err := *errp; err != nil {
			metrics.PipelineErrors.WithLabelValues(name, string(types.Classify(err))).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

// get issues a paced GET and returns the body. Non-200 responses fail with
// *types.HTTPStatusError.
func (e *Engine) get(ctx context.Context, rawURL string, header http.Header) (string, error) {
	if err := e.wait(ctx); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	for k, vals := range header {
		req.Header.Del(k)
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	resp, err := e.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &types.HTTPStatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return string(body), nil
}

func mergeHeader(base http.Header, overrides map[string]string) http.Header {
	out := base.Clone()
	if out == nil {
		out = http.Header{}
	}
	for k, v := range overrides {
		out.Set(k, v)
	}
	return out
}
