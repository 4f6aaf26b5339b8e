package innertube

import "encoding/json"

// PlayerResponse is the player_response document carried by the player
// config and the get_video_info payload. Only the parts the pipeline reads
// are modelled.
type PlayerResponse struct {
	PlayabilityStatus PlayabilityStatus `json:"playabilityStatus"`
	StreamingData     StreamingData     `json:"streamingData"`
	VideoDetails      VideoDetails      `json:"videoDetails"`
	Microformat       Microformat       `json:"microformat"`
}

type PlayabilityStatus struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
	// LiveStreamability is present only while a broadcast is live.
	LiveStreamability json.RawMessage `json:"liveStreamability,omitempty"`
}

// IsUnplayable reports the UNPLAYABLE status, the only one treated as fatal.
func (p *PlayabilityStatus) IsUnplayable() bool {
	return p.Status == "UNPLAYABLE"
}

// IsLive reports whether the player offered live playback.
func (p *PlayabilityStatus) IsLive() bool {
	return len(p.LiveStreamability) > 0 && string(p.LiveStreamability) != "null"
}

type StreamingData struct {
	Formats         []Format `json:"formats"`
	AdaptiveFormats []Format `json:"adaptiveFormats"`
	DashManifestURL string   `json:"dashManifestUrl"`
	HlsManifestURL  string   `json:"hlsManifestUrl"`
}

// Format is one raw record of formats or adaptiveFormats. Numeric fields
// the upstream sends as strings stay strings here.
type Format struct {
	Itag             int    `json:"itag"`
	URL              string `json:"url"`
	MimeType         string `json:"mimeType"`
	Bitrate          int    `json:"bitrate"`
	AverageBitrate   int    `json:"averageBitrate"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	FPS              int    `json:"fps"`
	Quality          string `json:"quality"`
	QualityLabel     string `json:"qualityLabel"`
	AudioQuality     string `json:"audioQuality"`
	AudioSampleRate  string `json:"audioSampleRate"`
	AudioChannels    int    `json:"audioChannels"`
	ContentLength    string `json:"contentLength"`
	ApproxDurationMs string `json:"approxDurationMs"`
	InitRange        *Range `json:"initRange"`
	IndexRange       *Range `json:"indexRange"`
	SignatureCipher  string `json:"signatureCipher"`
	Cipher           string `json:"cipher"`
}

type Range struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type VideoDetails struct {
	Title            string `json:"title"`
	LengthSeconds    string `json:"lengthSeconds"`
	Author           string `json:"author"`
	ChannelID        string `json:"channelId"`
	ShortDescription string `json:"shortDescription"`
	IsLive           bool   `json:"isLive"`
}

type Microformat struct {
	Renderer MicroformatRenderer `json:"playerMicroformatRenderer"`
}

// MicroformatRenderer holds the page metadata repeated in the player
// response. It backs up the fields scraped from markup.
type MicroformatRenderer struct {
	Description      Text   `json:"description"`
	OwnerProfileURL  string `json:"ownerProfileUrl"`
	OwnerChannelName string `json:"ownerChannelName"`
	ChannelID        string `json:"externalChannelId"`
	Category         string `json:"category"`
	PublishDate      string `json:"publishDate"`
}

type Text struct {
	SimpleText string `json:"simpleText"`
}
