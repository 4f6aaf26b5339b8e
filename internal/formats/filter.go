package formats

import (
	"fmt"

	"github.com/famomatic/ytstream/internal/types"
)

// Named filter classes.
const (
	FilterAudioAndVideo = "audioandvideo"
	FilterVideo         = "video"
	FilterVideoOnly     = "videoonly"
	FilterAudio         = "audio"
	FilterAudioOnly     = "audioonly"
)

// Predicate reports whether a format should be kept.
type Predicate func(Format) bool

func hasVideo(f Format) bool { return f.QualityLabel != "" }
func hasAudio(f Format) bool { return f.AudioBitrate != 0 }

// NamedPredicate returns the predicate of a named filter class.
func NamedPredicate(name string) (Predicate, error) {
	switch name {
	case FilterAudioAndVideo:
		return func(f Format) bool { return hasVideo(f) && hasAudio(f) }, nil
	case FilterVideo:
		return hasVideo, nil
	case FilterVideoOnly:
		return func(f Format) bool { return hasVideo(f) && !hasAudio(f) }, nil
	case FilterAudio:
		return hasAudio, nil
	case FilterAudioOnly:
		return func(f Format) bool { return !hasVideo(f) && hasAudio(f) }, nil
	}
	return nil, fmt.Errorf("%w: Given filter (%s) is not supported", types.ErrUnsupportedFilter, name)
}

// Filter keeps the formats of a named class.
func Filter(list []Format, name string) ([]Format, error) {
	pred, err := NamedPredicate(name)
	if err != nil {
		return nil, err
	}
	return FilterFunc(list, pred), nil
}

// FilterFunc keeps the formats for which pred returns true.
func FilterFunc(list []Format, pred Predicate) []Format {
	out := make([]Format, 0, len(list))
	for _, f := range list {
		if pred(f) {
			out = append(out, f)
		}
	}
	return out
}
