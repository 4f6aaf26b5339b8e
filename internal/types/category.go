package types

import (
	"context"
	"errors"
)

// ErrorCategory is a stable, low-cardinality name for a class of failure.
type ErrorCategory string

const (
	CategoryNone         ErrorCategory = ""
	CategoryInvalidInput ErrorCategory = "invalid_input"
	CategoryUnavailable  ErrorCategory = "unavailable"
	CategoryNotPlayable  ErrorCategory = "not_playable"
	CategoryUpstream     ErrorCategory = "upstream"
	CategoryParse        ErrorCategory = "parse"
	CategoryHTTPStatus   ErrorCategory = "http_status"
	CategoryNoFormat     ErrorCategory = "no_format"
	CategoryBadFilter    ErrorCategory = "bad_filter"
	CategoryIncomplete   ErrorCategory = "incomplete_info"
	CategoryAborted      ErrorCategory = "aborted"
	CategoryCanceled     ErrorCategory = "canceled"
	CategoryTransport    ErrorCategory = "transport"
)

// Classify maps err onto its category. Unrecognized errors are transport
// failures.
func Classify(err error) ErrorCategory {
	if err == nil {
		return CategoryNone
	}
	var status *HTTPStatusError
	switch {
	case errors.Is(err, ErrNotPlatformDomain), errors.Is(err, ErrNoIdentifierFound), errors.Is(err, ErrMalformedIdentifier):
		return CategoryInvalidInput
	case errors.Is(err, ErrVideoUnavailable):
		return CategoryUnavailable
	case errors.Is(err, ErrNotPlayable):
		return CategoryNotPlayable
	case errors.Is(err, ErrUpstream):
		return CategoryUpstream
	case errors.Is(err, ErrConfigNotFound), errors.Is(err, ErrConfigParse),
		errors.Is(err, ErrPlayerResponseParse), errors.Is(err, ErrManifestParse):
		return CategoryParse
	case errors.Is(err, ErrNoFormatsAfterFilter), errors.Is(err, ErrNoSuchFormat):
		return CategoryNoFormat
	case errors.Is(err, ErrUnsupportedFilter):
		return CategoryBadFilter
	case errors.Is(err, ErrIncompleteInfo):
		return CategoryIncomplete
	case errors.Is(err, ErrAborted):
		return CategoryAborted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CategoryCanceled
	case errors.As(err, &status):
		return CategoryHTTPStatus
	default:
		return CategoryTransport
	}
}
