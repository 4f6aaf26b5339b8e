package downloader

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/grafov/m3u8"

	"github.com/famomatic/ytstream/internal/types"
)

// hlsSource loads an HLS media playlist. A master playlist is followed to
// its highest-bandwidth variant once; later loads go straight to it.
type hlsSource struct {
	url   string
	media string
	fetch *fetcher
}

func (s *hlsSource) load(ctx context.Context) (*playlist, error) {
	target := s.url
	if s.media != "" {
		target = s.media
	}
	p, listType, err := s.decode(ctx, target)
	if err != nil {
		return nil, err
	}
	if listType == m3u8.MASTER {
		variant := pickVariant(p.(*m3u8.MasterPlaylist))
		if variant == nil {
			return nil, &types.ManifestParseError{URL: target, Err: errors.New("master playlist has no variants")}
		}
		s.media = resolveURL(target, variant.URI)
		target = s.media
		p, listType, err = s.decode(ctx, target)
		if err != nil {
			return nil, err
		}
		if listType != m3u8.MEDIA {
			return nil, &types.ManifestParseError{URL: target, Err: errors.New("variant is not a media playlist")}
		}
	}
	return mediaPlaylist(p.(*m3u8.MediaPlaylist), target), nil
}

func (s *hlsSource) decode(ctx context.Context, target string) (m3u8.Playlist, m3u8.ListType, error) {
	body, err := s.fetch.get(ctx, target)
	if err != nil {
		return nil, 0, err
	}
	p, listType, err := m3u8.DecodeFrom(bytes.NewReader(body), true)
	if err != nil {
		return nil, 0, &types.ManifestParseError{URL: target, Err: err}
	}
	return p, listType, nil
}

func pickVariant(master *m3u8.MasterPlaylist) *m3u8.Variant {
	var best *m3u8.Variant
	for _, v := range master.Variants {
		if v == nil || v.URI == "" {
			continue
		}
		if best == nil || v.Bandwidth > best.Bandwidth {
			best = v
		}
	}
	return best
}

// mediaPlaylist converts a decoded playlist. EXT-X-KEY and EXT-X-MAP only
// appear on the segment following the tag, so both carry over to later
// segments until replaced.
func mediaPlaylist(media *m3u8.MediaPlaylist, base string) *playlist {
	out := &playlist{
		Live:    !media.Closed,
		Refresh: time.Duration(media.TargetDuration * float64(time.Second)),
	}
	key, mp := media.Key, media.Map
	for _, seg := range media.Segments {
		if seg == nil {
			continue
		}
		if seg.Key != nil {
			key = seg.Key
		}
		if seg.Map != nil {
			mp = seg.Map
		}
		item := segment{
			URL:      resolveURL(base, seg.URI),
			Seq:      int64(seg.SeqId),
			Duration: time.Duration(seg.Duration * float64(time.Second)),
			Offset:   seg.Offset,
			Limit:    seg.Limit,
		}
		if key != nil && key.Method != "" && key.Method != "NONE" {
			item.Key = &segmentKey{Method: key.Method, URI: resolveURL(base, key.URI), IV: key.IV}
		}
		if mp != nil && mp.URI != "" {
			item.Init = &initSection{URL: resolveURL(base, mp.URI), Offset: mp.Offset, Limit: mp.Limit}
		}
		out.Segments = append(out.Segments, item)
	}
	return out
}
