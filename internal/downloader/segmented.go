package downloader

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/famomatic/ytstream/internal/metrics"
)

// Parser selects the manifest dialect of a segmented format.
type Parser string

const (
	ParserHLS  Parser = "m3u8"
	ParserDASH Parser = "dash-mpd"
)

const (
	DefaultReadahead  = 3
	DefaultLiveBuffer = 20 * time.Second
	defaultRefresh    = 5 * time.Second
)

// SegmentedConfig configures a SegmentedTransport.
type SegmentedConfig struct {
	Client *http.Client
	// URL is the HLS playlist or DASH manifest.
	URL    string
	Parser Parser
	// RepresentationID selects the DASH representation, normally the itag.
	RepresentationID string

	// Readahead is the number of segments fetched ahead of the writer.
	Readahead int
	// Begin skips media before this offset from the start of the playlist.
	Begin time.Duration
	// LiveEdge starts a live playlist LiveBuffer behind its newest segment
	// instead of at its first.
	LiveEdge   bool
	LiveBuffer time.Duration

	Header  http.Header
	Retry   TransportConfig
	OnEvent EventFunc
	Logger  zerolog.Logger
	Now     func() time.Time
}

type segment struct {
	URL      string
	Seq      int64
	Duration time.Duration
	// Offset and Limit describe a byte range; Limit 0 means the whole resource.
	Offset, Limit int64
	Init          *initSection
	Key           *segmentKey
}

type initSection struct {
	URL           string
	Offset, Limit int64
}

func (s *initSection) id() string {
	return fmt.Sprintf("%s@%d+%d", s.URL, s.Offset, s.Limit)
}

type segmentKey struct {
	Method string
	URI    string
	IV     string
}

type playlist struct {
	Segments []segment
	Live     bool
	Refresh  time.Duration
}

// source produces the current segment list of a manifest.
type source interface {
	load(ctx context.Context) (*playlist, error)
}

// SegmentedTransport downloads a HLS or DASH format segment by segment,
// refreshing live playlists until they end or the transport is aborted.
type SegmentedTransport struct {
	abortable
	cfg    SegmentedConfig
	retry  effectiveTransportConfig
	events *emitter
	logger zerolog.Logger
	fetch  *fetcher
	src    source

	keyMu sync.Mutex
	keys  map[string][]byte
}

func NewSegmentedTransport(cfg SegmentedConfig) (*SegmentedTransport, error) {
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	if cfg.Readahead <= 0 {
		cfg.Readahead = DefaultReadahead
	}
	if cfg.LiveBuffer <= 0 {
		cfg.LiveBuffer = DefaultLiveBuffer
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	t := &SegmentedTransport{
		cfg:    cfg,
		retry:  normalizeTransportConfig(cfg.Retry),
		events: &emitter{fn: cfg.OnEvent},
		logger: cfg.Logger.With().Str("transport", "segmented").Str("parser", string(cfg.Parser)).Logger(),
		keys:   map[string][]byte{},
	}
	t.fetch = &fetcher{
		client:    cfg.Client,
		header:    cloneHeader(cfg.Header),
		cfg:       t.retry,
		events:    t.events,
		transport: t.Name(),
	}
	switch cfg.Parser {
	case ParserHLS:
		t.src = &hlsSource{url: cfg.URL, fetch: t.fetch}
	case ParserDASH:
		t.src = &dashSource{url: cfg.URL, representationID: cfg.RepresentationID, fetch: t.fetch, now: cfg.Now}
	default:
		return nil, fmt.Errorf("unknown segment parser %q", cfg.Parser)
	}
	return t, nil
}

func (t *SegmentedTransport) Name() string { return "segmented" }

func (t *SegmentedTransport) Run(ctx context.Context, w io.Writer) (err error) {
	ctx, err = t.start(ctx)
	if err != nil {
		return err
	}
	defer t.finish()
	defer func() { err = t.runErr(err) }()

	var (
		lastSeq  int64 = -1
		lastInit string
		queued   int64
		written  int64
		skipped  int
		first    = true
	)
	for {
		pl, err := t.load(ctx, first)
		if err != nil {
			return err
		}
		segs := pl.Segments
		if first {
			segs = t.position(segs, pl.Live)
			first = false
		}
		fresh := segs[:0:0]
		for _, seg := range segs {
			if seg.Seq > lastSeq {
				fresh = append(fresh, seg)
			}
		}
		queued += int64(len(fresh))

		for start := 0; start < len(fresh); start += t.cfg.Readahead {
			end := min(start+t.cfg.Readahead, len(fresh))
			window := fresh[start:end]
			bodies, errs := t.fetchWindow(ctx, window)
			for i, seg := range window {
				if errs[i] != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					if shouldSkipFragmentError(errs[i], t.retry) && (t.retry.MaxSkippedFragments <= 0 || skipped < t.retry.MaxSkippedFragments) {
						skipped++
						t.logger.Warn().Err(errs[i]).Int64("seq", seg.Seq).Msg("skipping unavailable fragment")
						lastSeq = seg.Seq
						continue
					}
					return errs[i]
				}
				if seg.Init != nil && seg.Init.id() != lastInit {
					initData, err := t.fetchRange(ctx, seg.Init.URL, seg.Init.Offset, seg.Init.Limit)
					if err != nil {
						return err
					}
					if _, err := w.Write(initData); err != nil {
						return err
					}
					lastInit = seg.Init.id()
				}
				if _, err := w.Write(bodies[i]); err != nil {
					return err
				}
				lastSeq = seg.Seq
				written++
				size := int64(len(bodies[i]))
				metrics.DownloadBytes.WithLabelValues(t.Name()).Add(float64(size))
				t.events.emit(Event{Kind: EventProgress, URL: seg.URL, Progress: Progress{
					ChunkLength: size,
					Downloaded:  written,
					Total:       queued,
				}})
			}
		}

		if !pl.Live {
			return nil
		}
		refresh := pl.Refresh
		if refresh <= 0 {
			refresh = defaultRefresh
		}
		if err := waitBackoff(ctx, refresh); err != nil {
			return err
		}
	}
}

// load reads the playlist. Refreshes that fail after the fetcher's own
// retries are reconnected a bounded number of times.
func (t *SegmentedTransport) load(ctx context.Context, first bool) (*playlist, error) {
	pl, err := t.src.load(ctx)
	if err == nil || first {
		return pl, err
	}
	for attempt := 1; attempt <= t.retry.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		t.logger.Debug().Err(err).Int("attempt", attempt).Msg("reconnecting playlist")
		t.events.emit(Event{Kind: EventReconnect, URL: t.cfg.URL, Attempt: attempt, Err: err})
		if werr := waitBackoff(ctx, t.retry.backoffFor(attempt-1)); werr != nil {
			return nil, werr
		}
		pl, err = t.src.load(ctx)
		if err == nil {
			return pl, nil
		}
	}
	return nil, err
}

// position picks where the first load starts: at the live edge less the
// live buffer, or after the media preceding Begin.
func (t *SegmentedTransport) position(segs []segment, live bool) []segment {
	if len(segs) == 0 {
		return segs
	}
	if live && t.cfg.LiveEdge && t.cfg.Begin == 0 {
		var buffered time.Duration
		i := len(segs) - 1
		for i > 0 {
			buffered += segs[i].Duration
			if buffered >= t.cfg.LiveBuffer {
				break
			}
			i--
		}
		return segs[i:]
	}
	if t.cfg.Begin <= 0 {
		return segs
	}
	var elapsed time.Duration
	for i, seg := range segs {
		if elapsed+seg.Duration > t.cfg.Begin {
			return segs[i:]
		}
		elapsed += seg.Duration
	}
	return segs[len(segs)-1:]
}

// fetchWindow downloads a window of segments concurrently; results keep
// the window's order.
func (t *SegmentedTransport) fetchWindow(ctx context.Context, window []segment) ([][]byte, []error) {
	bodies := make([][]byte, len(window))
	errs := make([]error, len(window))
	var g errgroup.Group
	for i, seg := range window {
		i, seg := i, seg
		g.Go(func() error {
			bodies[i], errs[i] = t.fetchSegment(ctx, seg)
			return nil
		})
	}
	_ = g.Wait()
	return bodies, errs
}

func (t *SegmentedTransport) fetchSegment(ctx context.Context, seg segment) ([]byte, error) {
	body, err := t.fetchRange(ctx, seg.URL, seg.Offset, seg.Limit)
	if err != nil {
		return nil, err
	}
	if seg.Key == nil || strings.EqualFold(seg.Key.Method, "NONE") {
		return body, nil
	}
	if !strings.EqualFold(seg.Key.Method, "AES-128") {
		return nil, fmt.Errorf("unsupported segment encryption %q", seg.Key.Method)
	}
	key, err := t.key(ctx, seg.Key.URI)
	if err != nil {
		return nil, err
	}
	iv, err := segmentIV(seg.Key.IV, seg.Seq)
	if err != nil {
		return nil, err
	}
	return decryptAES128(body, key, iv)
}

func (t *SegmentedTransport) fetchRange(ctx context.Context, rawURL string, offset, limit int64) ([]byte, error) {
	if limit <= 0 {
		return t.fetch.get(ctx, rawURL)
	}
	header := http.Header{}
	header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+limit-1))
	resp, err := t.fetch.open(ctx, rawURL, header, http.StatusOK, http.StatusPartialContent)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// key is called from the readahead goroutines.
func (t *SegmentedTransport) key(ctx context.Context, uri string) ([]byte, error) {
	t.keyMu.Lock()
	k, ok := t.keys[uri]
	t.keyMu.Unlock()
	if ok {
		return k, nil
	}
	k, err := t.fetch.get(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("fetch key: %w", err)
	}
	if len(k) != aes.BlockSize {
		return nil, fmt.Errorf("invalid AES-128 key length %d", len(k))
	}
	t.keyMu.Lock()
	t.keys[uri] = k
	t.keyMu.Unlock()
	return k, nil
}

// segmentIV parses an explicit IV, or derives it from the media sequence
// number.
func segmentIV(raw string, seq int64) ([]byte, error) {
	if raw == "" {
		iv := make([]byte, aes.BlockSize)
		binary.BigEndian.PutUint64(iv[8:], uint64(seq))
		return iv, nil
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	iv, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid IV: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("invalid IV length %d", len(iv))
	}
	return iv, nil
}

var errBadPadding = errors.New("invalid PKCS7 padding")

func decryptAES128(data, key, iv []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("encrypted segment length %d is not a multiple of the block size", len(data))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)
	pad := int(out[len(out)-1])
	if pad == 0 || pad > aes.BlockSize || !bytes.Equal(out[len(out)-pad:], bytes.Repeat([]byte{byte(pad)}, pad)) {
		return nil, errBadPadding
	}
	return out[:len(out)-pad], nil
}
