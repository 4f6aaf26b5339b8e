package selector

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected *Selector
	}{
		{
			input: "best",
			expected: &Selector{Fallbacks: []*StreamSpec{
				{Filters: []FormatFilter{{Type: "builtin", Value: "best"}}},
			}},
		},
		{
			input: "bestaudio[ext=m4a]",
			expected: &Selector{Fallbacks: []*StreamSpec{
				{Filters: []FormatFilter{
					{Type: "media", Value: "audio", Op: "best"},
					{Type: "ext", Value: "m4a", Op: "="},
				}},
			}},
		},
		{
			input: "bestvideo[height<=720][fps>30]",
			expected: &Selector{Fallbacks: []*StreamSpec{
				{Filters: []FormatFilter{
					{Type: "media", Value: "video", Op: "best"},
					{Type: "res", Value: "720", Op: "<="},
					{Type: "fps", Value: "30", Op: ">"},
				}},
			}},
		},
		{
			input: "bestvideo[width>=1920]/best",
			expected: &Selector{Fallbacks: []*StreamSpec{
				{Filters: []FormatFilter{
					{Type: "media", Value: "video", Op: "best"},
					{Type: "width", Value: "1920", Op: ">="},
				}},
				{Filters: []FormatFilter{{Type: "builtin", Value: "best"}}},
			}},
		},
		{
			input: "worstaudio/fps!=60",
			expected: &Selector{Fallbacks: []*StreamSpec{
				{Filters: []FormatFilter{{Type: "media", Value: "audio", Op: "worst"}}},
				{Filters: []FormatFilter{{Type: "fps", Value: "60", Op: "!="}}},
			}},
		},
		{
			input: "res:1080[proto=HLS]",
			expected: &Selector{Fallbacks: []*StreamSpec{
				{Filters: []FormatFilter{
					{Type: "res", Value: "1080", Op: ":"},
					{Type: "proto", Value: "hls", Op: "="},
				}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Fatalf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"", "best/", "bestest", "best[color=red]", "best[ext]"} {
		if _, err := Parse(input); err == nil {
			t.Fatalf("Parse(%q) expected error", input)
		}
	}
	_, err := Parse("bestvideo+bestaudio")
	if !errors.Is(err, ErrMergeUnsupported) {
		t.Fatalf("Parse(merge) error = %v, want ErrMergeUnsupported", err)
	}
}
