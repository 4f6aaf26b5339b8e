package client

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/famomatic/ytstream/internal/downloader"
	"github.com/famomatic/ytstream/internal/formats"
	"github.com/famomatic/ytstream/internal/metrics"
	"github.com/famomatic/ytstream/internal/types"
)

type (
	// ByteRange selects part of a progressive file; nil bounds are open.
	ByteRange = downloader.ByteRange
	// RetryConfig tunes transport retries.
	RetryConfig = downloader.TransportConfig
)

// DefaultRetryConfig retries transient media failures three times. The
// zero RetryConfig does not retry.
func DefaultRetryConfig() RetryConfig { return downloader.DefaultTransportConfig() }

// DownloadOptions control format selection and the transport.
type DownloadOptions struct {
	// Quality, Filter, FilterFunc and Format select the format, see ChooseOptions.
	Quality    []string
	Filter     string
	FilterFunc func(Format) bool
	Format     *Format

	// Range requests part of a progressive format.
	Range *ByteRange
	// Begin starts playback at an offset: "1m30s", "01:30.000" or milliseconds.
	Begin string
	// LiveBuffer is how far behind the live edge a live format starts.
	LiveBuffer time.Duration
	// HighWaterMark is the read chunk size of progressive downloads.
	HighWaterMark int

	// RequestHeaders override the media request headers.
	RequestHeaders http.Header
	Retry          RetryConfig

	// Lang and Debug are passed to metadata retrieval.
	Lang  string
	Debug bool

	// OnEvent observes the stream lifecycle.
	OnEvent func(Event)
}

func (o DownloadOptions) chooseOptions() formats.ChooseOptions {
	return formats.ChooseOptions{Quality: o.Quality, Filter: o.Filter, FilterFunc: o.FilterFunc, Format: o.Format}
}

// Download retrieves full info for input and streams the chosen format.
// Every failure, including an invalid input, is reported through the
// stream rather than returned.
func (c *Client) Download(ctx context.Context, input string, opts DownloadOptions) *Stream {
	s, ctx := c.openStream(ctx, opts)
	s.setState(StateResolvingInfo)
	go c.run(ctx, s, opts, func(ctx context.Context) (*VideoInfo, error) {
		return c.GetFullInfo(ctx, input, InfoOptions{Lang: opts.Lang, Debug: opts.Debug})
	})
	return s
}

// DownloadFromInfo streams a format of info, which must come from
// GetFullInfo.
func (c *Client) DownloadFromInfo(ctx context.Context, info *VideoInfo, opts DownloadOptions) (*Stream, error) {
	if info == nil || !info.Full {
		return nil, types.ErrIncompleteInfo
	}
	s, ctx := c.openStream(ctx, opts)
	go c.run(ctx, s, opts, func(context.Context) (*VideoInfo, error) {
		return info, nil
	})
	return s, nil
}

func (c *Client) openStream(ctx context.Context, opts DownloadOptions) (*Stream, context.Context) {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(types.WithStreamID(ctx, id))
	metrics.ActiveStreams.Inc()
	return newStream(id, opts.OnEvent, c.logger, cancel), ctx
}

func (c *Client) run(ctx context.Context, s *Stream, opts DownloadOptions, resolve func(context.Context) (*VideoInfo, error)) {
	transportName := "none"
	defer func() { s.finish(transportName) }()

	info, err := resolve(ctx)
	if err != nil {
		s.fail(err)
		return
	}
	if s.isDestroyed() {
		s.abort()
		return
	}

	s.setState(StateSelectingFormat)
	format, err := formats.Choose(info.Formats, opts.chooseOptions())
	if err != nil {
		s.fail(err)
		return
	}
	begin, err := downloader.ParseBegin(opts.Begin)
	if err != nil {
		s.fail(err)
		return
	}
	if s.isDestroyed() {
		s.abort()
		return
	}

	s.setState(StateStreaming)
	s.emit(Event{Kind: EventInfo, Info: info, Format: &format})
	tr, err := c.transport(info, format, begin, opts, s)
	if err != nil {
		s.fail(err)
		return
	}
	if !s.attach(tr) {
		s.abort()
		return
	}
	transportName = tr.Name()
	s.logger.Debug().
		Str("video_id", info.VideoID).
		Int("itag", format.Itag).
		Str("transport", transportName).
		Msg("streaming format")

	if err := tr.Run(ctx, s.pw); err != nil {
		s.fail(err)
		return
	}
	if s.isDestroyed() {
		s.abort()
		return
	}
	s.complete()
}

// transport picks the segmented transport for HLS and DASH formats and
// the ranged transport for everything else.
func (c *Client) transport(info *VideoInfo, format Format, begin time.Duration, opts DownloadOptions, s *Stream) (downloader.Transport, error) {
	if format.Segmented() {
		parser := downloader.ParserDASH
		if format.IsHLS {
			parser = downloader.ParserHLS
		}
		return downloader.NewSegmentedTransport(downloader.SegmentedConfig{
			Client:           c.httpClient,
			URL:              format.URL,
			Parser:           parser,
			RepresentationID: format.ItagString(),
			Readahead:        info.LiveChunkReadahead,
			Begin:            begin,
			LiveEdge:         format.Live && begin == 0,
			LiveBuffer:       opts.LiveBuffer,
			Header:           opts.RequestHeaders,
			Retry:            opts.Retry,
			OnEvent:          s.relay,
			Logger:           s.logger,
		})
	}
	return downloader.NewRangedTransport(downloader.RangedConfig{
		Client:    c.httpClient,
		URL:       format.URL,
		VideoID:   info.VideoID,
		Begin:     begin,
		Range:     opts.Range,
		Header:    opts.RequestHeaders,
		Retry:     opts.Retry,
		OnEvent:   s.relay,
		ChunkSize: opts.HighWaterMark,
		Logger:    s.logger,
	}), nil
}
