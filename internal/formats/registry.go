package formats

// RegistryEntry is the static metadata known for an itag.
type RegistryEntry struct {
	MimeType     string
	QualityLabel string
	Bitrate      int
	AudioBitrate int
}

// Registry looks up static metadata by itag. Unknown itags report false.
type Registry interface {
	Lookup(itag int) (RegistryEntry, bool)
}

// StaticRegistry is a Registry backed by a fixed table.
type StaticRegistry map[int]RegistryEntry

func (r StaticRegistry) Lookup(itag int) (RegistryEntry, bool) {
	e, ok := r[itag]
	return e, ok
}

// DefaultRegistry holds the itags YouTube has served over the years.
var DefaultRegistry Registry = StaticRegistry{
	5:  {MimeType: `video/flv; codecs="Sorenson H.283, mp3"`, QualityLabel: "240p", Bitrate: 250000, AudioBitrate: 64},
	6:  {MimeType: `video/flv; codecs="Sorenson H.263, mp3"`, QualityLabel: "270p", Bitrate: 800000, AudioBitrate: 64},
	13: {MimeType: `video/3gpp; codecs="MPEG-4 Visual, aac"`, Bitrate: 500000},
	17: {MimeType: `video/3gpp; codecs="MPEG-4 Visual, aac"`, QualityLabel: "144p", Bitrate: 50000, AudioBitrate: 24},
	18: {MimeType: `video/mp4; codecs="H.264, aac"`, QualityLabel: "360p", Bitrate: 500000, AudioBitrate: 96},
	22: {MimeType: `video/mp4; codecs="H.264, aac"`, QualityLabel: "720p", Bitrate: 2000000, AudioBitrate: 192},
	34: {MimeType: `video/flv; codecs="H.264, aac"`, QualityLabel: "360p", Bitrate: 500000, AudioBitrate: 128},
	35: {MimeType: `video/flv; codecs="H.264, aac"`, QualityLabel: "480p", Bitrate: 800000, AudioBitrate: 128},
	36: {MimeType: `video/3gpp; codecs="MPEG-4 Visual, aac"`, QualityLabel: "240p", Bitrate: 175000, AudioBitrate: 32},
	37: {MimeType: `video/mp4; codecs="H.264, aac"`, QualityLabel: "1080p", Bitrate: 3000000, AudioBitrate: 192},
	38: {MimeType: `video/mp4; codecs="H.264, aac"`, QualityLabel: "3072p", Bitrate: 3500000, AudioBitrate: 192},
	43: {MimeType: `video/webm; codecs="VP8, vorbis"`, QualityLabel: "360p", Bitrate: 500000, AudioBitrate: 128},
	44: {MimeType: `video/webm; codecs="VP8, vorbis"`, QualityLabel: "480p", Bitrate: 1000000, AudioBitrate: 128},
	45: {MimeType: `video/webm; codecs="VP8, vorbis"`, QualityLabel: "720p", Bitrate: 2000000, AudioBitrate: 192},
	46: {MimeType: `audio/webm; codecs="vp8, vorbis"`, QualityLabel: "1080p", AudioBitrate: 192},
	82: {MimeType: `video/mp4; codecs="H.264, aac"`, QualityLabel: "360p", Bitrate: 500000, AudioBitrate: 96},
	83: {MimeType: `video/mp4; codecs="H.264, aac"`, QualityLabel: "240p", Bitrate: 500000, AudioBitrate: 96},
	84: {MimeType: `video/mp4; codecs="H.264, aac"`, QualityLabel: "720p", Bitrate: 2000000, AudioBitrate: 192},
	85: {MimeType: `video/mp4; codecs="H.264, aac"`, QualityLabel: "1080p", Bitrate: 3000000, AudioBitrate: 192},
	91: {MimeType: `video/ts; codecs="H.264, aac"`, QualityLabel: "144p", Bitrate: 100000, AudioBitrate: 48},
	92: {MimeType: `video/ts; codecs="H.264, aac"`, QualityLabel: "240p", Bitrate: 150000, AudioBitrate: 48},
	93: {MimeType: `video/ts; codecs="H.264, aac"`, QualityLabel: "360p", Bitrate: 500000, AudioBitrate: 128},
	94: {MimeType: `video/ts; codecs="H.264, aac"`, QualityLabel: "480p", Bitrate: 800000, AudioBitrate: 128},
	95: {MimeType: `video/ts; codecs="H.264, aac"`, QualityLabel: "720p", Bitrate: 1500000, AudioBitrate: 256},
	96: {MimeType: `video/ts; codecs="H.264, aac"`, QualityLabel: "1080p", Bitrate: 2500000, AudioBitrate: 256},

	100: {MimeType: `audio/webm; codecs="VP8, vorbis"`, QualityLabel: "360p", AudioBitrate: 128},
	101: {MimeType: `audio/webm; codecs="VP8, vorbis"`, QualityLabel: "360p", AudioBitrate: 192},
	102: {MimeType: `audio/webm; codecs="VP8, vorbis"`, QualityLabel: "720p", AudioBitrate: 192},
	120: {MimeType: `video/flv; codecs="H.264, aac"`, QualityLabel: "720p", Bitrate: 2000000, AudioBitrate: 128},
	127: {MimeType: `audio/ts; codecs="aac"`, AudioBitrate: 96},
	128: {MimeType: `audio/ts; codecs="aac"`, AudioBitrate: 96},
	132: {MimeType: `video/ts; codecs="H.264, aac"`, QualityLabel: "240p", Bitrate: 150000, AudioBitrate: 48},
	133: {MimeType: `video/mp4; codecs="H.264"`, QualityLabel: "240p", Bitrate: 300000},
	134: {MimeType: `video/mp4; codecs="H.264"`, QualityLabel: "360p", Bitrate: 400000},
	135: {MimeType: `video/mp4; codecs="H.264"`, QualityLabel: "480p", Bitrate: 1000000},
	136: {MimeType: `video/mp4; codecs="H.264"`, QualityLabel: "720p", Bitrate: 1000000},
	137: {MimeType: `video/mp4; codecs="H.264"`, QualityLabel: "1080p", Bitrate: 2500000},
	138: {MimeType: `video/mp4; codecs="H.264"`, QualityLabel: "4320p", Bitrate: 13500000},
	139: {MimeType: `audio/mp4; codecs="aac"`, AudioBitrate: 48},
	140: {MimeType: `audio/m4a; codecs="aac"`, AudioBitrate: 128},
	141: {MimeType: `audio/mp4; codecs="aac"`, AudioBitrate: 256},
	151: {MimeType: `video/ts; codecs="H.264, aac"`, QualityLabel: "720p", Bitrate: 50000, AudioBitrate: 24},
	160: {MimeType: `video/mp4; codecs="H.264"`, QualityLabel: "144p", Bitrate: 100000},
	171: {MimeType: `audio/webm; codecs="vorbis"`, AudioBitrate: 128},
	172: {MimeType: `audio/webm; codecs="vorbis"`, AudioBitrate: 192},

	242: {MimeType: `video/webm; codecs="VP9"`, QualityLabel: "240p", Bitrate: 100000},
	243: {MimeType: `video/webm; codecs="VP9"`, QualityLabel: "360p", Bitrate: 250000},
	244: {MimeType: `video/webm; codecs="VP9"`, QualityLabel: "480p", Bitrate: 500000},
	247: {MimeType: `video/webm; codecs="VP9"`, QualityLabel: "720p", Bitrate: 700000},
	248: {MimeType: `video/webm; codecs="VP9"`, QualityLabel: "1080p", Bitrate: 1500000},
	249: {MimeType: `audio/webm; codecs="opus"`, AudioBitrate: 48},
	250: {MimeType: `audio/webm; codecs="opus"`, AudioBitrate: 64},
	251: {MimeType: `audio/webm; codecs="opus"`, AudioBitrate: 160},
	264: {MimeType: `video/mp4; codecs="H.264"`, QualityLabel: "1440p", Bitrate: 4000000},
	266: {MimeType: `video/mp4; codecs="H.264"`, QualityLabel: "2160p", Bitrate: 12500000},
	271: {MimeType: `video/webm; codecs="VP9"`, QualityLabel: "1440p", Bitrate: 9000000},
	272: {MimeType: `video/webm; codecs="VP9"`, QualityLabel: "4320p", Bitrate: 20000000},
	278: {MimeType: `video/webm; codecs="VP9"`, QualityLabel: "144p 30fps", Bitrate: 80000},
	298: {MimeType: `video/mp4; codecs="H.264"`, QualityLabel: "720p", Bitrate: 3000000},
	299: {MimeType: `video/mp4; codecs="H.264"`, QualityLabel: "1080p", Bitrate: 5500000},
	300: {MimeType: `video/ts; codecs="H.264, aac"`, QualityLabel: "720p", Bitrate: 1318000, AudioBitrate: 48},
	302: {MimeType: `video/webm; codecs="VP9"`, QualityLabel: "720p HFR", Bitrate: 2500000},
	303: {MimeType: `video/webm; codecs="VP9"`, QualityLabel: "1080p HFR", Bitrate: 5000000},
	308: {MimeType: `video/webm; codecs="VP9"`, QualityLabel: "1440p HFR", Bitrate: 10000000},
	313: {MimeType: `video/webm; codecs="VP9"`, QualityLabel: "2160p", Bitrate: 13000000},
	315: {MimeType: `video/webm; codecs="VP9"`, QualityLabel: "2160p HFR", Bitrate: 20000000},
	330: {MimeType: `video/webm; codecs="VP9"`, QualityLabel: "144p HDR, HFR", Bitrate: 80000},
	331: {MimeType: `video/webm; codecs="VP9"`, QualityLabel: "240p HDR, HFR", Bitrate: 100000},
	332: {MimeType: `video/webm; codecs="VP9"`, QualityLabel: "360p HDR, HFR", Bitrate: 250000},
	333: {MimeType: `video/webm; codecs="VP9"`, QualityLabel: "240p HDR, HFR", Bitrate: 500000},
	334: {MimeType: `video/webm; codecs="VP9"`, QualityLabel: "720p HDR, HFR", Bitrate: 1000000},
	335: {MimeType: `video/webm; codecs="VP9"`, QualityLabel: "1080p HDR, HFR", Bitrate: 1500000},
	336: {MimeType: `video/webm; codecs="VP9"`, QualityLabel: "1440p HDR, HFR", Bitrate: 5000000},
	337: {MimeType: `video/webm; codecs="VP9"`, QualityLabel: "2160p HDR, HFR", Bitrate: 12000000},
}
