package formats

import (
	"slices"
	"strings"
)

// Ranks are in ascending preference; a higher index is better.
var (
	audioEncodingRanks = []string{"mp4a", "mp3", "vorbis", "aac", "opus", "flac"}
	videoEncodingRanks = []string{"mp4v", "avc1", "Sorenson H.283", "MPEG-4 Visual", "VP8", "VP9", "H.264"}
)

// CompareQuality orders a before b when a is the better format. It returns
// a negative number when a ranks first, positive when b does and 0 on a tie.
func CompareQuality(a, b Format) int {
	ares, bres := resolution(a), resolution(b)
	if d := feats(b, bres) - feats(a, ares); d != 0 {
		return d
	}
	if d := bres - ares; d != 0 {
		return d
	}
	if d := b.Bitrate - a.Bitrate; d != 0 {
		return d
	}
	if as, bs := AudioScore(a), AudioScore(b); as != bs {
		if bs > as {
			return 1
		}
		return -1
	}
	return encodingRank(b, videoEncodingRanks) - encodingRank(a, videoEncodingRanks)
}

// Sort orders formats best first. Equal formats keep their input order.
func Sort(list []Format) {
	slices.SortStableFunc(list, CompareQuality)
}

// AudioScore is the audio bitrate plus a tenth of the audio codec rank.
func AudioScore(f Format) float64 {
	return float64(f.AudioBitrate) + float64(encodingRank(f, audioEncodingRanks))/10
}

func feats(f Format, res int) int {
	n := 0
	if res != 0 {
		n += 2
	}
	if f.AudioBitrate != 0 {
		n++
	}
	return n
}

// resolution reads the leading number of the quality label with its last
// character dropped, so "1080p60" and "1080p" both give 1080.
func resolution(f Format) int {
	label := f.QualityLabel
	if label == "" {
		return 0
	}
	label = label[:len(label)-1]
	n := 0
	for i := 0; i < len(label); i++ {
		c := label[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func encodingRank(f Format, ranks []string) int {
	codecs := f.Codecs
	if codecs == "" {
		codecs = codecsOf(f.MimeType)
	}
	if codecs == "" {
		return -1
	}
	for i, enc := range ranks {
		if strings.Contains(codecs, enc) {
			return i
		}
	}
	return -1
}
