package types

import (
	"net/url"

	"github.com/famomatic/ytstream/internal/innertube"
)

// VideoInfo is the aggregate result of a metadata retrieval.
//
// Basic info (Full == false) carries the formats exactly as the player
// response listed them. Full info has deciphered URLs, manifest formats
// merged in, every format normalized and the list sorted best first.
type VideoInfo struct {
	VideoID       string `json:"videoId"`
	VideoURL      string `json:"videoUrl"`
	Title         string `json:"title"`
	LengthSeconds string `json:"lengthSeconds"`

	PlayerResponse *innertube.PlayerResponse `json:"playerResponse,omitempty"`
	Extras

	Formats       []Format `json:"formats"`
	HTML5Player   string   `json:"html5player,omitempty"`
	AgeRestricted bool     `json:"ageRestricted"`
	Full          bool     `json:"full"`

	// Query is the decoded info endpoint payload.
	Query url.Values `json:"-"`
	// LiveChunkReadahead is the upstream readahead hint for live streams.
	LiveChunkReadahead int `json:"liveChunkReadahead,omitempty"`
}

// DashManifestURL returns the DASH manifest URL of the player response, if any.
func (v *VideoInfo) DashManifestURL() string {
	if v == nil || v.PlayerResponse == nil {
		return ""
	}
	return v.PlayerResponse.StreamingData.DashManifestURL
}

// HLSManifestURL returns the HLS manifest URL of the player response, if any.
func (v *VideoInfo) HLSManifestURL() string {
	if v == nil || v.PlayerResponse == nil {
		return ""
	}
	return v.PlayerResponse.StreamingData.HlsManifestURL
}

// IsLive reports whether the player response describes a live broadcast.
func (v *VideoInfo) IsLive() bool {
	if v == nil || v.PlayerResponse == nil {
		return false
	}
	return v.PlayerResponse.PlayabilityStatus.IsLive() || v.PlayerResponse.VideoDetails.IsLive
}
