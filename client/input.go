package client

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/famomatic/ytstream/internal/types"
)

var (
	videoIDPattern = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)
	pathURLPattern = regexp.MustCompile(`^https?://(youtu\.be/|(www\.)?youtube\.com/(embed|v|shorts|live)/)`)

	queryHosts = map[string]bool{
		"youtube.com":        true,
		"www.youtube.com":    true,
		"m.youtube.com":      true,
		"music.youtube.com":  true,
		"gaming.youtube.com": true,
	}
)

// Reasons carried by *InvalidInputError.
const (
	ReasonUnsupportedHost = "unsupported_host"
	ReasonMissingID       = "missing_video_id"
	ReasonMalformedID     = "malformed_video_id"
)

// ResolveIdentifier accepts a raw video id or a watch, short, embed or
// youtu.be link and returns the 11 character video id.
func ResolveIdentifier(input string) (string, error) {
	s := strings.TrimSpace(input)
	if videoIDPattern.MatchString(s) {
		return s, nil
	}
	return idFromURL(s)
}

func idFromURL(link string) (string, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return "", &types.InvalidInputError{Input: link, Reason: ReasonMissingID, Err: types.ErrNoIdentifierFound}
	}
	id := parsed.Query().Get("v")
	if pathURLPattern.MatchString(link) && id == "" {
		segments := strings.Split(parsed.Path, "/")
		id = segments[len(segments)-1]
	} else if host := strings.ToLower(parsed.Hostname()); host != "" && !queryHosts[host] {
		return "", &types.InvalidInputError{Input: link, Reason: ReasonUnsupportedHost, Err: types.ErrNotPlatformDomain}
	}
	if id == "" {
		return "", &types.InvalidInputError{Input: link, Reason: ReasonMissingID, Err: types.ErrNoIdentifierFound}
	}
	if len(id) > 11 {
		id = id[:11]
	}
	if !videoIDPattern.MatchString(id) {
		return "", &types.InvalidInputError{Input: link, Reason: ReasonMalformedID, Err: types.ErrMalformedIdentifier}
	}
	return id, nil
}

// IsValidID reports whether id has the shape of a video id.
func IsValidID(id string) bool {
	return videoIDPattern.MatchString(id)
}

// IsValidURL reports whether link resolves to a video id.
func IsValidURL(link string) bool {
	_, err := idFromURL(link)
	return err == nil
}
