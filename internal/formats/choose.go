package formats

import (
	"fmt"
	"slices"
	"strings"

	"github.com/famomatic/ytstream/internal/types"
)

// Quality keywords understood by Choose. Any other value is an itag.
const (
	QualityHighest      = "highest"
	QualityLowest       = "lowest"
	QualityHighestAudio = "highestaudio"
	QualityLowestAudio  = "lowestaudio"
	QualityHighestVideo = "highestvideo"
	QualityLowestVideo  = "lowestvideo"
)

// ChooseOptions are the selection criteria of Choose.
type ChooseOptions struct {
	// Quality is a single keyword, or one or more itags tried in order.
	// Empty means "highest".
	Quality []string
	// Filter is a named filter class applied before Quality.
	Filter string
	// FilterFunc takes precedence over Filter when set.
	FilterFunc Predicate
	// Format, when set, is returned verbatim.
	Format *Format
}

// Choose picks one format from list.
func Choose(list []Format, opts ChooseOptions) (Format, error) {
	if opts.Format != nil {
		return *opts.Format, nil
	}

	switch {
	case opts.FilterFunc != nil:
		list = FilterFunc(list, opts.FilterFunc)
	case opts.Filter != "":
		filtered, err := Filter(list, opts.Filter)
		if err != nil {
			return Format{}, err
		}
		list = filtered
	}
	if (opts.FilterFunc != nil || opts.Filter != "") && len(list) == 0 {
		return Format{}, types.ErrNoFormatsAfterFilter
	}

	quality := opts.Quality
	if len(quality) == 0 {
		quality = []string{QualityHighest}
	}

	var (
		chosen Format
		found  bool
	)
	keyword := ""
	if len(quality) == 1 {
		keyword = quality[0]
	}
	switch keyword {
	case QualityHighest, QualityLowest:
		sorted := slices.Clone(list)
		Sort(sorted)
		if len(sorted) > 0 {
			found = true
			chosen = sorted[0]
			if keyword == QualityLowest {
				chosen = sorted[len(sorted)-1]
			}
		}
	case QualityHighestAudio, QualityLowestAudio:
		higher := keyword == QualityHighestAudio
		for _, f := range FilterFunc(list, hasAudio) {
			if !found || (higher && AudioScore(f) > AudioScore(chosen)) || (!higher && AudioScore(f) < AudioScore(chosen)) {
				chosen, found = f, true
			}
		}
	case QualityHighestVideo, QualityLowestVideo:
		higher := keyword == QualityHighestVideo
		for _, f := range FilterFunc(list, hasVideo) {
			if !found || (higher && f.Bitrate > chosen.Bitrate) || (!higher && f.Bitrate < chosen.Bitrate) {
				chosen, found = f, true
			}
		}
	default:
		for _, q := range quality {
			if i := slices.IndexFunc(list, func(f Format) bool { return f.ItagString() == q }); i >= 0 {
				chosen, found = list[i], true
				break
			}
		}
	}

	if !found {
		return Format{}, fmt.Errorf("%w: %s", types.ErrNoSuchFormat, strings.Join(quality, ","))
	}
	return chosen, nil
}
