package formats

import (
	"regexp"
	"strings"
)

var (
	liveURLPattern = regexp.MustCompile(`/source/yt_live_broadcast/`)
	hlsURLPattern  = regexp.MustCompile(`/manifest/hls_(variant|playlist)/`)
	dashURLPattern = regexp.MustCompile(`/manifest/dash/`)
)

// Normalize merges registry metadata underneath f and recomputes the
// derived fields. Raw fields win over registry fields. Normalize is
// idempotent.
func Normalize(f Format, reg Registry) Format {
	if reg == nil {
		reg = DefaultRegistry
	}
	if e, ok := reg.Lookup(f.Itag); ok {
		if f.MimeType == "" {
			f.MimeType = e.MimeType
		}
		if f.QualityLabel == "" {
			f.QualityLabel = e.QualityLabel
		}
		if f.Bitrate == 0 {
			f.Bitrate = e.Bitrate
		}
		if f.AudioBitrate == 0 {
			f.AudioBitrate = e.AudioBitrate
		}
	}

	f.HasVideo = f.QualityLabel != ""
	f.HasAudio = f.AudioBitrate != 0
	f.Container = containerOf(f.MimeType)
	f.Codecs = codecsOf(f.MimeType)
	f.VideoCodec, f.AudioCodec = "", ""
	if f.Codecs != "" {
		parts := strings.Split(f.Codecs, ", ")
		if f.HasVideo {
			f.VideoCodec = parts[0]
		}
		if f.HasAudio {
			f.AudioCodec = parts[len(parts)-1]
		}
	}
	f.Live = liveURLPattern.MatchString(f.URL)
	f.IsHLS = hlsURLPattern.MatchString(f.URL)
	f.IsDashMPD = dashURLPattern.MatchString(f.URL)
	return f
}

// NormalizeAll normalizes every format in place.
func NormalizeAll(list []Format, reg Registry) {
	for i := range list {
		list[i] = Normalize(list[i], reg)
	}
}

func containerOf(mimeType string) string {
	if mimeType == "" {
		return ""
	}
	kind, _, _ := strings.Cut(mimeType, ";")
	_, sub, _ := strings.Cut(strings.TrimSpace(kind), "/")
	return sub
}

func codecsOf(mimeType string) string {
	return Between(mimeType, `codecs="`, `"`)
}

// Between returns the text between the first left and the next right,
// or "" when either is missing.
func Between(haystack, left, right string) string {
	i := strings.Index(haystack, left)
	if i < 0 {
		return ""
	}
	haystack = haystack[i+len(left):]
	j := strings.Index(haystack, right)
	if j < 0 {
		return ""
	}
	return haystack[:j]
}
