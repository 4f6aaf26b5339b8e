package client

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{name: "nil", err: nil, want: CategoryNone},
		{name: "not platform", err: ErrNotPlatformDomain, want: CategoryInvalidInput},
		{name: "unavailable", err: &UnavailableError{Reason: "gone"}, want: CategoryUnavailable},
		{name: "not playable", err: &NotPlayableError{Reason: "private"}, want: CategoryNotPlayable},
		{name: "upstream", err: &UpstreamError{Code: "150", Reason: "nope"}, want: CategoryUpstream},
		{name: "config parse", err: &ConfigParseError{Err: errors.New("eof")}, want: CategoryParse},
		{name: "manifest", err: &ManifestParseError{URL: "u", Err: errors.New("bad")}, want: CategoryParse},
		{name: "no format", err: fmt.Errorf("choose: %w", ErrNoSuchFormat), want: CategoryNoFormat},
		{name: "filter", err: ErrUnsupportedFilter, want: CategoryBadFilter},
		{name: "incomplete", err: ErrIncompleteInfo, want: CategoryIncomplete},
		{name: "aborted", err: ErrAborted, want: CategoryAborted},
		{name: "canceled", err: context.Canceled, want: CategoryCanceled},
		{name: "status", err: &HTTPStatusError{URL: "u", StatusCode: 500}, want: CategoryHTTPStatus},
		{name: "unknown", err: errors.New("boom"), want: CategoryTransport},
	}
	for _, tt := range tests {
		got := ClassifyError(tt.err)
		if got != tt.want {
			t.Fatalf("%s: ClassifyError()=%q want=%q", tt.name, got, tt.want)
		}
	}
}
