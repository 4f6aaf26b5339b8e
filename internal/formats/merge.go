package formats

import (
	"slices"
)

// Manifest maps itag to the format a DASH or HLS manifest announced.
type Manifest map[int]Format

// Merge adds the manifest formats whose itag is not already present.
// Records already in list win over manifest records. New itags are
// appended in ascending order so the result does not depend on map order.
func Merge(list []Format, manifests ...Manifest) []Format {
	seen := make(map[int]struct{}, len(list))
	out := make([]Format, 0, len(list))
	for _, f := range list {
		if _, dup := seen[f.Itag]; dup {
			continue
		}
		seen[f.Itag] = struct{}{}
		out = append(out, f)
	}
	for _, m := range manifests {
		itags := make([]int, 0, len(m))
		for itag := range m {
			itags = append(itags, itag)
		}
		slices.Sort(itags)
		for _, itag := range itags {
			if _, ok := seen[itag]; ok {
				continue
			}
			seen[itag] = struct{}{}
			out = append(out, m[itag])
		}
	}
	return out
}
