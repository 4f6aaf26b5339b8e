package client

import (
	"errors"
	"strings"
	"testing"

	"github.com/famomatic/ytstream/internal/types"
)

func TestResolveIdentifier_SupportedShapes(t *testing.T) {
	inputs := []string{
		"jNQXAC9IVRw",
		"  jNQXAC9IVRw ",
		"https://www.youtube.com/watch?v=jNQXAC9IVRw",
		"https://m.youtube.com/watch?v=jNQXAC9IVRw&pp=ygU=",
		"https://music.youtube.com/watch?v=jNQXAC9IVRw",
		"https://youtu.be/jNQXAC9IVRw?t=1",
		"youtube.com/watch?v=jNQXAC9IVRw",
		"https://www.youtube.com/embed/jNQXAC9IVRw",
		"https://www.youtube.com/v/jNQXAC9IVRw",
		"https://youtube.com/shorts/jNQXAC9IVRw",
		"https://www.youtube.com/live/jNQXAC9IVRw",
		"https://www.youtube.com/watch?v=jNQXAC9IVRwEXTRA",
	}
	for _, in := range inputs {
		got, err := ResolveIdentifier(in)
		if err != nil {
			t.Fatalf("ResolveIdentifier(%q) error=%v", in, err)
		}
		if got != "jNQXAC9IVRw" {
			t.Fatalf("ResolveIdentifier(%q)=%q, want jNQXAC9IVRw", in, got)
		}
	}
}

func TestResolveIdentifier_Errors(t *testing.T) {
	tests := []struct {
		in     string
		want   error
		reason string
	}{
		{in: "https://example.com/watch?v=jNQXAC9IVRw", want: ErrNotPlatformDomain, reason: ReasonUnsupportedHost},
		{in: "https://www.youtube.com/watch?list=PL123", want: ErrNoIdentifierFound, reason: ReasonMissingID},
		{in: "https://youtu.be/", want: ErrNoIdentifierFound, reason: ReasonMissingID},
		{in: "https://www.youtube.com/watch?v=jNQX*C9IVRw", want: ErrMalformedIdentifier, reason: ReasonMalformedID},
		{in: "https://www.youtube.com/watch?v=short", want: ErrMalformedIdentifier, reason: ReasonMalformedID},
	}
	for _, tt := range tests {
		_, err := ResolveIdentifier(tt.in)
		if !errors.Is(err, tt.want) {
			t.Fatalf("ResolveIdentifier(%q) err=%v, want %v", tt.in, err, tt.want)
		}
		var detail *types.InvalidInputError
		if !errors.As(err, &detail) {
			t.Fatalf("expected InvalidInputError, got %T", err)
		}
		if detail.Reason != tt.reason {
			t.Fatalf("ResolveIdentifier(%q) reason=%q, want %q", tt.in, detail.Reason, tt.reason)
		}
		if ClassifyError(err) != CategoryInvalidInput {
			t.Fatalf("ClassifyError(%v)=%q", err, ClassifyError(err))
		}
	}
}

func TestIsValidID(t *testing.T) {
	if !IsValidID("jNQXAC9IVRw") || !IsValidID("_-aZ09_-aZ0") {
		t.Fatal("expected valid ids")
	}
	for _, bad := range []string{"", "jNQXAC9IVR", "jNQXAC9IVRww", "jNQXAC9IVR!", "jNQXAC9 VRw", strings.Repeat("a", 22)} {
		if IsValidID(bad) {
			t.Fatalf("IsValidID(%q)=true", bad)
		}
	}
}

func TestIsValidURL(t *testing.T) {
	if !IsValidURL("https://youtu.be/jNQXAC9IVRw") {
		t.Fatal("expected youtu.be link to be valid")
	}
	if IsValidURL("https://vimeo.com/123") {
		t.Fatal("expected foreign host to be invalid")
	}
	if IsValidURL("jNQXAC9IVRw") {
		t.Fatal("a bare id is not a URL")
	}
}
