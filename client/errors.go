package client

import "github.com/famomatic/ytstream/internal/types"

var (
	ErrNotPlatformDomain   = types.ErrNotPlatformDomain
	ErrNoIdentifierFound   = types.ErrNoIdentifierFound
	ErrMalformedIdentifier = types.ErrMalformedIdentifier

	ErrVideoUnavailable    = types.ErrVideoUnavailable
	ErrConfigNotFound      = types.ErrConfigNotFound
	ErrConfigParse         = types.ErrConfigParse
	ErrUpstream            = types.ErrUpstream
	ErrPlayerResponseParse = types.ErrPlayerResponseParse
	ErrNotPlayable         = types.ErrNotPlayable
	ErrManifestParse       = types.ErrManifestParse

	ErrUnsupportedFilter    = types.ErrUnsupportedFilter
	ErrNoFormatsAfterFilter = types.ErrNoFormatsAfterFilter
	ErrNoSuchFormat         = types.ErrNoSuchFormat

	ErrIncompleteInfo = types.ErrIncompleteInfo
	ErrAborted        = types.ErrAborted
)

// Typed errors carrying failure detail.
type (
	InvalidInputError        = types.InvalidInputError
	UnavailableError         = types.UnavailableError
	ConfigParseError         = types.ConfigParseError
	UpstreamError            = types.UpstreamError
	PlayerResponseParseError = types.PlayerResponseParseError
	NotPlayableError         = types.NotPlayableError
	ManifestParseError       = types.ManifestParseError
	HTTPStatusError          = types.HTTPStatusError
)

// ErrorCategory is a stable name for a class of failure.
type ErrorCategory = types.ErrorCategory

const (
	CategoryNone         = types.CategoryNone
	CategoryInvalidInput = types.CategoryInvalidInput
	CategoryUnavailable  = types.CategoryUnavailable
	CategoryNotPlayable  = types.CategoryNotPlayable
	CategoryUpstream     = types.CategoryUpstream
	CategoryParse        = types.CategoryParse
	CategoryHTTPStatus   = types.CategoryHTTPStatus
	CategoryNoFormat     = types.CategoryNoFormat
	CategoryBadFilter    = types.CategoryBadFilter
	CategoryIncomplete   = types.CategoryIncomplete
	CategoryAborted      = types.CategoryAborted
	CategoryCanceled     = types.CategoryCanceled
	CategoryTransport    = types.CategoryTransport
)

// ClassifyError maps err onto its category.
func ClassifyError(err error) ErrorCategory {
	return types.Classify(err)
}
