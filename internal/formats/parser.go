package formats

import (
	"strconv"

	"github.com/famomatic/ytstream/internal/innertube"
	"github.com/famomatic/ytstream/internal/types"
)

// Format is the rendition model shared with the rest of the module.
type Format = types.Format

// Parse flattens streamingData.formats followed by adaptiveFormats.
// The records are copied as-is; no registry data is applied.
func Parse(resp *innertube.PlayerResponse) []Format {
	if resp == nil {
		return []Format{}
	}
	out := make([]Format, 0, len(resp.StreamingData.Formats)+len(resp.StreamingData.AdaptiveFormats))
	for _, f := range resp.StreamingData.Formats {
		out = append(out, FromRaw(f))
	}
	for _, f := range resp.StreamingData.AdaptiveFormats {
		out = append(out, FromRaw(f))
	}
	return out
}

// FromRaw converts one player response record.
func FromRaw(f innertube.Format) Format {
	parsed := Format{
		Itag:            f.Itag,
		URL:             f.URL,
		MimeType:        f.MimeType,
		Quality:         f.Quality,
		QualityLabel:    f.QualityLabel,
		Bitrate:         f.Bitrate,
		AverageBitrate:  f.AverageBitrate,
		Width:           f.Width,
		Height:          f.Height,
		FPS:             f.FPS,
		AudioQuality:    f.AudioQuality,
		AudioChannels:   f.AudioChannels,
		SignatureCipher: f.SignatureCipher,
		Cipher:          f.Cipher,
	}
	if f.AudioSampleRate != "" {
		parsed.AudioSampleRate, _ = strconv.Atoi(f.AudioSampleRate)
	}
	if f.ApproxDurationMs != "" {
		parsed.ApproxDurationMs, _ = strconv.ParseInt(f.ApproxDurationMs, 10, 64)
	}
	if f.ContentLength != "" {
		parsed.ContentLength, _ = strconv.ParseInt(f.ContentLength, 10, 64)
	}
	parsed.InitRange = parseRange(f.InitRange)
	parsed.IndexRange = parseRange(f.IndexRange)
	return parsed
}

func parseRange(r *innertube.Range) *types.Range {
	if r == nil {
		return nil
	}
	s, _ := strconv.ParseInt(r.Start, 10, 64)
	e, _ := strconv.ParseInt(r.End, 10, 64)
	return &types.Range{Start: s, End: e}
}
