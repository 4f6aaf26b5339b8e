package orchestrator

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/famomatic/ytstream/internal/formats"
	"github.com/famomatic/ytstream/internal/types"
)

const unavailableMessage = "This video is unavailable"

// FullInfo retrieves basic info and completes it.
func (e *Engine) FullInfo(ctx context.Context, videoID string, opts Options) (*types.VideoInfo, error) {
	basic, err := e.BasicInfo(ctx, videoID, opts)
	if err != nil {
		return nil, err
	}
	return e.Complete(ctx, basic, opts)
}

// Complete derives full info from basic info: format URLs deciphered, DASH
// and HLS formats merged in, every format normalized, the list sorted best
// first. basic is not modified; the result carries its own format slice.
func (e *Engine) Complete(ctx context.Context, basic *types.VideoInfo, opts Options) (info *types.VideoInfo, err error) {
	ctx, done := e.stage(ctx, "full_info", basic.VideoID)
	defer done(&err)

	dashURL, hlsURL := basic.DashManifestURL(), basic.HLSManifestURL()
	if len(basic.Formats) == 0 && dashURL == "" && hlsURL == "" {
		return nil, &types.UnavailableError{Reason: unavailableMessage}
	}

	clone := *basic
	clone.Formats = slices.Clone(basic.Formats)
	info = &clone

	playerURL, err := e.resolve(info.HTML5Player)
	if err != nil {
		return nil, fmt.Errorf("resolve player script: %w", err)
	}
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	tokens, err := e.cfg.Decipherer.GetTokens(ctx, playerURL)
	if err != nil {
		return nil, fmt.Errorf("decipher tokens: %w", err)
	}
	if err := e.cfg.Decipherer.DecipherFormats(info.Formats, tokens, opts.Debug); err != nil {
		return nil, fmt.Errorf("decipher formats: %w", err)
	}

	manifests, err := e.manifests(ctx, info.VideoID, dashURL, hlsURL, opts)
	if err != nil {
		return nil, err
	}

	info.Formats = formats.Merge(info.Formats, manifests...)
	formats.NormalizeAll(info.Formats, e.cfg.Registry)
	if info.IsLive() {
		for i := range info.Formats {
			info.Formats[i].Live = true
		}
	}
	formats.Sort(info.Formats)
	info.Full = true

	e.logger.Debug().
		Str("video_id", info.VideoID).
		Int("formats", len(info.Formats)).
		Bool("dash", dashURL != "").
		Bool("hls", hlsURL != "").
		Msg("full info resolved")
	return info, nil
}

// manifests fetches the DASH and HLS manifests concurrently and returns
// them in that order. Absent manifests are skipped.
func (e *Engine) manifests(ctx context.Context, videoID, dashURL, hlsURL string, opts Options) (out []formats.Manifest, err error) {
	if dashURL == "" && hlsURL == "" {
		return nil, nil
	}
	ctx, done := e.stage(ctx, "manifest", videoID)
	defer done(&err)

	var dash, hls formats.Manifest
	g, gctx := errgroup.WithContext(ctx)
	if dashURL != "" {
		g.Go(func() error {
			u, err := e.resolve(dashURL)
			if err != nil {
				return err
			}
			if err := e.wait(gctx); err != nil {
				return err
			}
			dash, err = formats.FetchDASHManifest(gctx, e.cfg.HTTPClient, u, opts.Header)
			return err
		})
	}
	if hlsURL != "" {
		g.Go(func() error {
			u, err := e.resolve(hlsURL)
			if err != nil {
				return err
			}
			if err := e.wait(gctx); err != nil {
				return err
			}
			hls, err = formats.FetchHLSManifest(gctx, e.cfg.HTTPClient, u, opts.Header, e.logger)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, m := range []formats.Manifest{dash, hls} {
		if m != nil {
			out = append(out, m)
		}
	}
	return out, nil
}

func (e *Engine) wait(ctx context.Context) error {
	if e.cfg.Limiter == nil {
		return nil
	}
	return e.cfg.Limiter.Wait(ctx)
}

// resolve interprets ref relative to the watch page URL.
func (e *Engine) resolve(ref string) (string, error) {
	base, err := url.Parse(e.cfg.WatchURL)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(r).String(), nil
}
