// Package selector parses and evaluates format selector expressions such
// as "bestaudio[ext=m4a]/best[height<=720]".
package selector

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMergeUnsupported is returned for "a+b" expressions; a stream carries
// exactly one format.
var ErrMergeUnsupported = errors.New("selector: merging formats is not supported")

// Selector is a parsed expression: alternatives tried left to right.
type Selector struct {
	Fallbacks []*StreamSpec
}

// StreamSpec is one alternative. Every filter must match.
type StreamSpec struct {
	Filters []FormatFilter
}

// FormatFilter is a single criterion, e.g. bestvideo or height<=720.
type FormatFilter struct {
	Type  string // builtin, media, ext, res, width, fps, abr, itag, proto
	Value string
	Op    string // =, !=, <, >, <=, >= or best/worst for media
}

var (
	resRegex      = regexp.MustCompile(`^(res|height|width)(:|<=|>=|=|<|>)(\d+)$`)
	modifierRegex = regexp.MustCompile(`\[([^\]]+)\]`)
)

// Parse parses a selector expression.
func Parse(s string) (*Selector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("selector: empty expression")
	}
	var sel Selector
	for _, alt := range strings.Split(s, "/") {
		if strings.Contains(alt, "+") {
			return nil, fmt.Errorf("%w: %q", ErrMergeUnsupported, alt)
		}
		spec, err := parseStreamSpec(strings.TrimSpace(alt))
		if err != nil {
			return nil, err
		}
		sel.Fallbacks = append(sel.Fallbacks, spec)
	}
	return &sel, nil
}

func parseStreamSpec(s string) (*StreamSpec, error) {
	if s == "" {
		return nil, errors.New("selector: empty alternative")
	}
	base, mods := s, ""
	if idx := strings.Index(s, "["); idx >= 0 {
		base, mods = s[:idx], s[idx:]
	}

	spec := &StreamSpec{}
	if base != "" {
		f, err := parseFilter(base)
		if err != nil {
			return nil, err
		}
		spec.Filters = append(spec.Filters, *f)
	}
	for _, m := range modifierRegex.FindAllStringSubmatch(mods, -1) {
		f, err := parseModifier(m[1])
		if err != nil {
			return nil, err
		}
		spec.Filters = append(spec.Filters, *f)
	}
	return spec, nil
}

func parseModifier(s string) (*FormatFilter, error) {
	for _, op := range []string{"<=", ">=", "!=", "=", "<", ">", ":"} {
		idx := strings.Index(s, op)
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(s[:idx])
		val := strings.TrimSpace(s[idx+len(op):])
		switch key {
		case "ext":
			return &FormatFilter{Type: "ext", Value: strings.ToLower(val), Op: op}, nil
		case "res", "height":
			return &FormatFilter{Type: "res", Value: val, Op: op}, nil
		case "width", "fps", "abr", "itag":
			return &FormatFilter{Type: key, Value: val, Op: op}, nil
		case "proto", "protocol":
			return &FormatFilter{Type: "proto", Value: strings.ToLower(val), Op: op}, nil
		default:
			return nil, fmt.Errorf("selector: unknown modifier key %q", key)
		}
	}
	return nil, fmt.Errorf("selector: unknown modifier syntax %q", s)
}

func parseFilter(s string) (*FormatFilter, error) {
	s = strings.ToLower(s)
	switch s {
	case "best", "worst":
		return &FormatFilter{Type: "builtin", Value: s}, nil
	case "bestvideo", "bv":
		return &FormatFilter{Type: "media", Value: "video", Op: "best"}, nil
	case "worstvideo", "wv":
		return &FormatFilter{Type: "media", Value: "video", Op: "worst"}, nil
	case "bestaudio", "ba":
		return &FormatFilter{Type: "media", Value: "audio", Op: "best"}, nil
	case "worstaudio", "wa":
		return &FormatFilter{Type: "media", Value: "audio", Op: "worst"}, nil
	case "videoonly":
		return &FormatFilter{Type: "media", Value: "video"}, nil
	case "audioonly":
		return &FormatFilter{Type: "media", Value: "audio"}, nil
	case "mp4", "webm", "m4a", "3gp", "ts":
		return &FormatFilter{Type: "ext", Value: s, Op: "="}, nil
	}
	if m := resRegex.FindStringSubmatch(s); m != nil {
		typ := "res"
		if m[1] == "width" {
			typ = "width"
		}
		return &FormatFilter{Type: typ, Value: m[3], Op: m[2]}, nil
	}
	// Modifier-style base tokens such as "fps!=60" or "itag=140".
	if f, err := parseModifier(s); err == nil {
		return f, nil
	}
	return nil, fmt.Errorf("selector: unknown selector %q", s)
}
