package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/famomatic/ytstream/internal/metrics"
)

const (
	// DefaultUserAgent is sent with media requests unless overridden.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_3) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/80.0.3987.106 Safari/537.36"

	DefaultRefererBase = "https://www.youtube.com/watch/"
	defaultChunkSize   = 64 * 1024
)

// ByteRange selects part of a progressive file. Nil bounds are open.
type ByteRange struct {
	Start *int64
	End   *int64
}

func (r *ByteRange) header() string {
	if r == nil || (r.Start == nil && r.End == nil) {
		return ""
	}
	start, end := "0", ""
	if r.Start != nil {
		start = strconv.FormatInt(*r.Start, 10)
	}
	if r.End != nil {
		end = strconv.FormatInt(*r.End, 10)
	}
	return "bytes=" + start + "-" + end
}

// RangedConfig configures a RangedTransport.
type RangedConfig struct {
	Client  *http.Client
	URL     string
	VideoID string
	// Begin is passed to the media server as the begin query parameter.
	Begin time.Duration
	Range *ByteRange
	// Header overrides the default User-Agent, Referer and Range.
	Header    http.Header
	Retry     TransportConfig
	OnEvent   EventFunc
	ChunkSize int
	Logger    zerolog.Logger
}

// RangedTransport downloads a progressive format with one HTTP GET.
type RangedTransport struct {
	abortable
	cfg    RangedConfig
	events *emitter
	fetch  *fetcher
	logger zerolog.Logger
}

func NewRangedTransport(cfg RangedConfig) *RangedTransport {
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	t := &RangedTransport{
		cfg:    cfg,
		events: &emitter{fn: cfg.OnEvent},
		logger: cfg.Logger.With().Str("transport", "ranged").Logger(),
	}
	t.fetch = &fetcher{
		client:    cfg.Client,
		cfg:       normalizeTransportConfig(cfg.Retry),
		events:    t.events,
		transport: t.Name(),
	}
	return t
}

func (t *RangedTransport) Name() string { return "ranged" }

// URL is the request URL including the begin parameter.
func (t *RangedTransport) URL() string {
	if t.cfg.Begin <= 0 {
		return t.cfg.URL
	}
	return t.cfg.URL + "&begin=" + HumanTime(t.cfg.Begin)
}

func (t *RangedTransport) headers() http.Header {
	h := http.Header{}
	h.Set("User-Agent", DefaultUserAgent)
	h.Set("Referer", DefaultRefererBase+t.cfg.VideoID)
	if rng := t.cfg.Range.header(); rng != "" {
		h.Set("Range", rng)
	}
	for k, vals := range t.cfg.Header {
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), vals...)
	}
	return h
}

func (t *RangedTransport) Run(ctx context.Context, w io.Writer) (err error) {
	ctx, err = t.start(ctx)
	if err != nil {
		return err
	}
	defer t.finish()
	defer func() { err = t.runErr(err) }()

	rawURL := t.URL()
	resp, err := t.fetch.open(ctx, rawURL, t.headers(), http.StatusOK, http.StatusPartialContent)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	total := max(resp.ContentLength, 0)
	t.logger.Debug().Str("url", rawURL).Int("status", resp.StatusCode).Int64("total", total).Msg("ranged download started")

	var downloaded int64
	buf := make([]byte, t.cfg.ChunkSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return err
			}
			downloaded += int64(n)
			metrics.DownloadBytes.WithLabelValues(t.Name()).Add(float64(n))
			t.events.emit(Event{Kind: EventProgress, URL: rawURL, Progress: Progress{
				ChunkLength: int64(n),
				Downloaded:  downloaded,
				Total:       total,
			}})
		}
		if errors.Is(rerr, io.EOF) {
			return nil
		}
		if rerr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read media body: %w", rerr)
		}
	}
}

// HumanTime renders a duration the way the begin parameter expects it,
// e.g. "1h2m3s" or "1m30s500ms".
func HumanTime(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	var b strings.Builder
	parts := []struct {
		unit   time.Duration
		suffix string
	}{
		{time.Hour, "h"},
		{time.Minute, "m"},
		{time.Second, "s"},
		{time.Millisecond, "ms"},
	}
	for _, p := range parts {
		if n := d / p.unit; n > 0 {
			b.WriteString(strconv.FormatInt(int64(n), 10))
			b.WriteString(p.suffix)
			d -= n * p.unit
		}
	}
	if b.Len() == 0 {
		return "0s"
	}
	return b.String()
}
