package innertube

import (
	"encoding/json"
	"errors"
)

// PlayerConfig is the `ytplayer.config` blob of the watch page, or the
// PLAYER_CONFIG of the embed page.
type PlayerConfig struct {
	STS    json.RawMessage `json:"sts"`
	Args   PlayerArgs      `json:"args"`
	Assets PlayerAssets    `json:"assets"`
}

// PlayerArgs holds the player arguments we read from the config.
type PlayerArgs struct {
	// PlayerResponse is either a JSON string holding the document or the
	// document itself.
	PlayerResponse json.RawMessage `json:"player_response"`
}

// PlayerAssets lists the player script locations.
type PlayerAssets struct {
	JS string `json:"js"`
}

// ParsePlayerConfig decodes a config blob.
func ParsePlayerConfig(raw []byte) (*PlayerConfig, error) {
	var cfg PlayerConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SignatureTimestamp returns the sts value as a string, accepting both
// numeric and string encodings.
func (c *PlayerConfig) SignatureTimestamp() string {
	if c == nil || len(c.STS) == 0 {
		return ""
	}
	var n json.Number
	if err := json.Unmarshal(c.STS, &n); err == nil {
		return n.String()
	}
	var s string
	if err := json.Unmarshal(c.STS, &s); err == nil {
		return s
	}
	return ""
}

// RawPlayerResponse returns the player_response document bytes from the
// config args, unwrapping the string encoding when present.
func (c *PlayerConfig) RawPlayerResponse() []byte {
	if c == nil {
		return nil
	}
	raw := c.Args.PlayerResponse
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		return []byte(s)
	}
	return raw
}

var errEmptyPlayerResponse = errors.New("empty player_response")

// ParsePlayerResponse decodes a player_response document.
func ParsePlayerResponse(raw []byte) (*PlayerResponse, error) {
	if len(raw) == 0 {
		return nil, errEmptyPlayerResponse
	}
	var resp PlayerResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
