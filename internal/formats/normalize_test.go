package formats

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/famomatic/ytstream/internal/innertube"
)

func TestNormalizeDerivesFields(t *testing.T) {
	f := Normalize(Format{
		Itag:     18,
		URL:      "https://r1.googlevideo.com/videoplayback?itag=18",
		MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`,
	}, nil)

	want := Format{
		Itag:         18,
		URL:          "https://r1.googlevideo.com/videoplayback?itag=18",
		MimeType:     `video/mp4; codecs="avc1.42001E, mp4a.40.2"`,
		QualityLabel: "360p",
		Bitrate:      500000,
		AudioBitrate: 96,
		Container:    "mp4",
		Codecs:       "avc1.42001E, mp4a.40.2",
		VideoCodec:   "avc1.42001E",
		AudioCodec:   "mp4a.40.2",
		HasVideo:     true,
		HasAudio:     true,
	}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Fatalf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeRawFieldsWin(t *testing.T) {
	f := Normalize(Format{Itag: 22, QualityLabel: "720p60", Bitrate: 1}, nil)
	if f.QualityLabel != "720p60" || f.Bitrate != 1 {
		t.Fatalf("registry overwrote raw fields: %+v", f)
	}
	if f.AudioBitrate != 192 || f.MimeType == "" {
		t.Fatalf("registry fields not merged: %+v", f)
	}
}

func TestNormalizeURLFlags(t *testing.T) {
	tests := []struct {
		url             string
		live, hls, dash bool
	}{
		{url: "https://manifest.googlevideo.com/api/manifest/hls_playlist/id/x/itag/95/source/yt_live_broadcast/file/index.m3u8", live: true, hls: true},
		{url: "https://manifest.googlevideo.com/api/manifest/hls_variant/id/x", hls: true},
		{url: "https://manifest.googlevideo.com/api/manifest/dash/id/x/source/youtube", dash: true},
		{url: "https://r4.googlevideo.com/videoplayback/id/x/source/yt_live_broadcast/itag/22/", live: true},
		{url: "https://r4.googlevideo.com/videoplayback?source=yt_live_broadcast&itag=22"},
		{url: "https://r4.googlevideo.com/videoplayback?itag=22"},
	}
	for _, tt := range tests {
		f := Normalize(Format{Itag: 1, URL: tt.url}, StaticRegistry{})
		if f.Live != tt.live || f.IsHLS != tt.hls || f.IsDashMPD != tt.dash {
			t.Fatalf("%s: live=%v hls=%v dash=%v", tt.url, f.Live, f.IsHLS, f.IsDashMPD)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, raw := range append(sample(), Format{Itag: 140}, Format{Itag: 95, URL: "https://x/api/manifest/hls_variant/itag/95/"}) {
		once := Normalize(raw, nil)
		twice := Normalize(once, nil)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Fatalf("itag %d not idempotent (-once +twice):\n%s", raw.Itag, diff)
		}
	}
}

func TestParseFlattensFormatLists(t *testing.T) {
	resp := &innertube.PlayerResponse{StreamingData: innertube.StreamingData{
		Formats:         []innertube.Format{{Itag: 18, ContentLength: "1024"}},
		AdaptiveFormats: []innertube.Format{{Itag: 137, InitRange: &innertube.Range{Start: "0", End: "740"}}, {Itag: 140}},
	}}
	got := Parse(resp)
	if diff := cmp.Diff([]int{18, 137, 140}, itags(got)); diff != "" {
		t.Fatalf("Parse() order (-want +got):\n%s", diff)
	}
	if got[0].ContentLength != 1024 || got[1].InitRange.End != 740 {
		t.Fatalf("numeric fields not parsed: %+v", got)
	}
	if len(Parse(&innertube.PlayerResponse{})) != 0 || Parse(nil) == nil {
		t.Fatalf("missing lists must give an empty, non-nil slice")
	}
}
