package types

import (
	"errors"
	"fmt"
)

var (
	// ErrNotPlatformDomain indicates a URL whose host is not a YouTube host.
	ErrNotPlatformDomain = errors.New("not a YouTube domain")
	// ErrNoIdentifierFound indicates a YouTube URL without a video id.
	ErrNoIdentifierFound = errors.New("no video id found")
	// ErrMalformedIdentifier indicates an id with the wrong shape or charset.
	ErrMalformedIdentifier = errors.New("video id does not match expected format")

	// ErrVideoUnavailable indicates that the video is unavailable (deleted, private, etc.).
	ErrVideoUnavailable = errors.New("video unavailable")
	ErrConfigNotFound   = errors.New("could not find player config")
	ErrConfigParse      = errors.New("error parsing player config")
	ErrUpstream         = errors.New("upstream error")
	// ErrPlayerResponseParse indicates a player_response that is not valid JSON.
	ErrPlayerResponseParse = errors.New("error parsing player_response")
	ErrNotPlayable         = errors.New("video not playable")
	ErrManifestParse       = errors.New("error parsing manifest")

	ErrUnsupportedFilter    = errors.New("filter not supported")
	ErrNoFormatsAfterFilter = errors.New("No formats found with custom filter")
	ErrNoSuchFormat         = errors.New("No such format found")

	// ErrIncompleteInfo is returned when a download is started from basic info.
	ErrIncompleteInfo = errors.New("cannot use info from getBasicInfo, use getFullInfo")
	// ErrAborted is reported by a stream that was destroyed by its caller.
	ErrAborted = errors.New("stream aborted")
)

// InvalidInputError carries the reason an identifier could not be resolved.
type InvalidInputError struct {
	Input  string
	Reason string
	Err    error
}

func (e *InvalidInputError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%v: %q", e.Err, e.Input)
	}
	return fmt.Sprintf("%v (%s): %q", e.Err, e.Reason, e.Input)
}

func (e *InvalidInputError) Unwrap() error { return e.Err }

// UnavailableError is returned when the watch page shows an unavailable notice.
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string {
	if e.Reason == "" {
		return ErrVideoUnavailable.Error()
	}
	return e.Reason
}

func (e *UnavailableError) Is(target error) bool { return target == ErrVideoUnavailable }

// ConfigParseError wraps the JSON diagnostic of a malformed player config.
type ConfigParseError struct {
	Err error
}

func (e *ConfigParseError) Error() string {
	return fmt.Sprintf("%v: %v", ErrConfigParse, e.Err)
}

func (e *ConfigParseError) Is(target error) bool { return target == ErrConfigParse }
func (e *ConfigParseError) Unwrap() error        { return e.Err }

// UpstreamError is the failure reported by the info endpoint itself.
type UpstreamError struct {
	Code   string
	Reason string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Code %s: %s", e.Code, e.Reason)
}

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// PlayerResponseParseError wraps the JSON diagnostic of a malformed player_response.
type PlayerResponseParseError struct {
	Err error
}

func (e *PlayerResponseParseError) Error() string {
	return fmt.Sprintf("%v: %v", ErrPlayerResponseParse, e.Err)
}

func (e *PlayerResponseParseError) Is(target error) bool { return target == ErrPlayerResponseParse }
func (e *PlayerResponseParseError) Unwrap() error        { return e.Err }

// NotPlayableError indicates an UNPLAYABLE playability status.
type NotPlayableError struct {
	Reason string
}

func (e *NotPlayableError) Error() string {
	if e.Reason == "" {
		return ErrNotPlayable.Error()
	}
	return e.Reason
}

func (e *NotPlayableError) Is(target error) bool { return target == ErrNotPlayable }

// ManifestParseError indicates a DASH or HLS manifest that could not be read.
type ManifestParseError struct {
	URL  string
	Line int
	Err  error
}

func (e *ManifestParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%v: %s line %d: %v", ErrManifestParse, e.URL, e.Line, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", ErrManifestParse, e.URL, e.Err)
}

func (e *ManifestParseError) Is(target error) bool { return target == ErrManifestParse }
func (e *ManifestParseError) Unwrap() error        { return e.Err }

// HTTPStatusError indicates a non-2xx response from an upstream endpoint.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected http status=%d url=%s", e.StatusCode, e.URL)
}
