package types

import "strconv"

// Format is one rendition of a video, as returned by the player response or
// a DASH/HLS manifest and enriched by the format registry.
type Format struct {
	Itag             int    `json:"itag"`
	URL              string `json:"url"`
	MimeType         string `json:"mimeType,omitempty"`
	Quality          string `json:"quality,omitempty"`
	QualityLabel     string `json:"qualityLabel,omitempty"`
	Bitrate          int    `json:"bitrate,omitempty"`
	AverageBitrate   int    `json:"averageBitrate,omitempty"`
	AudioBitrate     int    `json:"audioBitrate,omitempty"`
	Width            int    `json:"width,omitempty"`
	Height           int    `json:"height,omitempty"`
	FPS              int    `json:"fps,omitempty"`
	ContentLength    int64  `json:"contentLength,omitempty"`
	AudioQuality     string `json:"audioQuality,omitempty"`
	AudioSampleRate  int    `json:"audioSampleRate,omitempty"`
	AudioChannels    int    `json:"audioChannels,omitempty"`
	ApproxDurationMs int64  `json:"approxDurationMs,omitempty"`
	InitRange        *Range `json:"initRange,omitempty"`
	IndexRange       *Range `json:"indexRange,omitempty"`
	SignatureCipher  string `json:"signatureCipher,omitempty"`
	Cipher           string `json:"cipher,omitempty"`

	// Derived by formats.Normalize.
	Container  string `json:"container,omitempty"`
	Codecs     string `json:"codecs,omitempty"`
	VideoCodec string `json:"videoCodec,omitempty"`
	AudioCodec string `json:"audioCodec,omitempty"`
	HasVideo   bool   `json:"hasVideo"`
	HasAudio   bool   `json:"hasAudio"`
	Live       bool   `json:"isLive"`
	IsHLS      bool   `json:"isHLS"`
	IsDashMPD  bool   `json:"isDashMPD"`
}

// Range is a byte range inside a progressive file.
type Range struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// ItagString is the string form used when matching user-supplied itags.
func (f Format) ItagString() string {
	return strconv.Itoa(f.Itag)
}

// Segmented reports whether the format is served through a manifest.
func (f Format) Segmented() bool {
	return f.IsHLS || f.IsDashMPD
}
