package selector

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/famomatic/ytstream/internal/formats"
	"github.com/famomatic/ytstream/internal/types"
)

// Select returns the format picked by the first alternative of sel that
// matches anything. A nil selector means "best".
func Select(list []types.Format, sel *Selector) (types.Format, error) {
	if sel == nil || len(sel.Fallbacks) == 0 {
		sel = &Selector{Fallbacks: []*StreamSpec{{Filters: []FormatFilter{{Type: "builtin", Value: "best"}}}}}
	}
	for _, spec := range sel.Fallbacks {
		if f, ok := pick(list, spec); ok {
			return f, nil
		}
	}
	return types.Format{}, fmt.Errorf("%w: no format matches the selector", types.ErrNoFormatsAfterFilter)
}

// SelectString parses expr and selects from list. Parse failures match
// types.ErrUnsupportedFilter.
func SelectString(list []types.Format, expr string) (types.Format, error) {
	sel, err := Parse(expr)
	if err != nil {
		return types.Format{}, fmt.Errorf("%w: %w", types.ErrUnsupportedFilter, err)
	}
	return Select(list, sel)
}

func pick(list []types.Format, spec *StreamSpec) (types.Format, bool) {
	var candidates []types.Format
	for _, f := range list {
		if f.URL != "" && matchesAll(f, spec.Filters) {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return types.Format{}, false
	}

	worst, audio := false, false
	for _, flt := range spec.Filters {
		switch {
		case flt.Type == "builtin" && flt.Value == "worst":
			worst = true
		case flt.Type == "media" && flt.Op == "worst":
			worst = true
			audio = flt.Value == "audio"
		case flt.Type == "media" && flt.Value == "audio":
			audio = true
		}
	}
	if audio {
		slices.SortStableFunc(candidates, func(a, b types.Format) int {
			switch as, bs := formats.AudioScore(a), formats.AudioScore(b); {
			case as > bs:
				return -1
			case as < bs:
				return 1
			}
			return 0
		})
	} else {
		formats.Sort(candidates)
	}
	if worst {
		return candidates[len(candidates)-1], true
	}
	return candidates[0], true
}

func matchesAll(f types.Format, filters []FormatFilter) bool {
	for i := range filters {
		if !matches(f, &filters[i]) {
			return false
		}
	}
	return true
}

func matches(f types.Format, filter *FormatFilter) bool {
	switch filter.Type {
	case "builtin":
		return true
	case "media":
		if filter.Value == "video" {
			return f.HasVideo && !f.HasAudio
		}
		return f.HasAudio && !f.HasVideo
	case "ext":
		eq := extension(f) == filter.Value
		if filter.Op == "!=" {
			return !eq
		}
		return eq
	case "proto":
		eq := protocol(f) == filter.Value
		if filter.Op == "!=" {
			return !eq
		}
		return eq
	case "res":
		return compare(f.Height, filter)
	case "width":
		return compare(f.Width, filter)
	case "fps":
		return compare(f.FPS, filter)
	case "abr":
		return compare(f.AudioBitrate, filter)
	case "itag":
		return compare(f.Itag, filter)
	}
	return false
}

// extension maps a format onto the file extension users select by.
func extension(f types.Format) string {
	if f.Container == "mp4" && !f.HasVideo && f.HasAudio {
		return "m4a"
	}
	if f.Container != "" {
		return f.Container
	}
	if f.IsHLS {
		return "ts"
	}
	return ""
}

func protocol(f types.Format) string {
	switch {
	case f.IsHLS:
		return "hls"
	case f.IsDashMPD:
		return "dash"
	}
	return "https"
}

func compare(a int, filter *FormatFilter) bool {
	b, err := strconv.Atoi(filter.Value)
	if err != nil {
		return false
	}
	switch strings.TrimSpace(filter.Op) {
	case ":", "=":
		return a == b
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	case "!=":
		return a != b
	}
	return false
}
