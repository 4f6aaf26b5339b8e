package downloader

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/famomatic/ytstream/internal/types"
)

// dashSource loads the segments of one representation of an MPD.
type dashSource struct {
	url              string
	representationID string
	fetch            *fetcher
	now              func() time.Time
}

type dashMPD struct {
	XMLName                   xml.Name     `xml:"MPD"`
	Type                      string       `xml:"type,attr"`
	MinimumUpdatePeriod       string       `xml:"minimumUpdatePeriod,attr"`
	AvailabilityStartTime     string       `xml:"availabilityStartTime,attr"`
	MediaPresentationDuration string       `xml:"mediaPresentationDuration,attr"`
	TimeShiftBufferDepth      string       `xml:"timeShiftBufferDepth,attr"`
	BaseURL                   string       `xml:"BaseURL"`
	Period                    []dashPeriod `xml:"Period"`
}

type dashPeriod struct {
	BaseURL       string              `xml:"BaseURL"`
	AdaptationSet []dashAdaptationSet `xml:"AdaptationSet"`
}

type dashAdaptationSet struct {
	MimeType        string               `xml:"mimeType,attr"`
	BaseURL         string               `xml:"BaseURL"`
	Representation  []dashRepresentation `xml:"Representation"`
	SegmentTemplate *dashSegmentTemplate `xml:"SegmentTemplate"`
	SegmentList     *dashSegmentList     `xml:"SegmentList"`
}

type dashRepresentation struct {
	ID              string               `xml:"id,attr"`
	Bandwidth       int                  `xml:"bandwidth,attr"`
	BaseURL         string               `xml:"BaseURL"`
	SegmentTemplate *dashSegmentTemplate `xml:"SegmentTemplate"`
	SegmentList     *dashSegmentList     `xml:"SegmentList"`
}

type dashSegmentTemplate struct {
	Timescale       int64                `xml:"timescale,attr"`
	Duration        int64                `xml:"duration,attr"`
	Initialization  string               `xml:"initialization,attr"`
	Media           string               `xml:"media,attr"`
	StartNumber     *int64               `xml:"startNumber,attr"`
	SegmentTimeline *dashSegmentTimeline `xml:"SegmentTimeline"`
}

type dashSegmentList struct {
	Timescale      int64                `xml:"timescale,attr"`
	Duration       int64                `xml:"duration,attr"`
	StartNumber    *int64               `xml:"startNumber,attr"`
	Initialization *dashURL             `xml:"Initialization"`
	SegmentURL     []dashSegmentURL     `xml:"SegmentURL"`
	Timeline       *dashSegmentTimeline `xml:"SegmentTimeline"`
}

type dashURL struct {
	SourceURL string `xml:"sourceURL,attr"`
}

type dashSegmentURL struct {
	Media string `xml:"media,attr"`
}

type dashSegmentTimeline struct {
	S []dashS `xml:"S"`
}

type dashS struct {
	T *int64 `xml:"t,attr"`
	D int64  `xml:"d,attr"`
	R int64  `xml:"r,attr"`
}

func (s *dashSource) load(ctx context.Context) (*playlist, error) {
	body, err := s.fetch.get(ctx, s.url)
	if err != nil {
		return nil, err
	}
	var mpd dashMPD
	if err := xml.Unmarshal(body, &mpd); err != nil {
		return nil, &types.ManifestParseError{URL: s.url, Err: err}
	}
	segs, err := s.segments(&mpd)
	if err != nil {
		return nil, &types.ManifestParseError{URL: s.url, Err: err}
	}
	pl := &playlist{Segments: segs, Live: mpd.Type == "dynamic", Refresh: defaultRefresh}
	if d, err := parseISODuration(mpd.MinimumUpdatePeriod); err == nil && d > 0 {
		pl.Refresh = d
	}
	return pl, nil
}

func (s *dashSource) segments(mpd *dashMPD) ([]segment, error) {
	for _, p := range mpd.Period {
		for _, a := range p.AdaptationSet {
			for _, r := range a.Representation {
				if r.ID != s.representationID {
					continue
				}
				base := s.url
				for _, ref := range []string{mpd.BaseURL, p.BaseURL, a.BaseURL, r.BaseURL} {
					if ref = strings.TrimSpace(ref); ref != "" {
						base = resolveURL(base, ref)
					}
				}
				if list := r.SegmentList; list != nil || a.SegmentList != nil {
					if list == nil {
						list = a.SegmentList
					}
					return listSegments(list, base), nil
				}
				tmpl := r.SegmentTemplate
				if tmpl == nil {
					tmpl = a.SegmentTemplate
				}
				if tmpl == nil {
					if r.BaseURL != "" {
						return []segment{{URL: base, Seq: 0}}, nil
					}
					return nil, fmt.Errorf("representation %s has no segment information", s.representationID)
				}
				return s.templateSegments(mpd, tmpl, &r, base)
			}
		}
	}
	return nil, fmt.Errorf("representation %s not found", s.representationID)
}

func listSegments(list *dashSegmentList, base string) []segment {
	var initSec *initSection
	if list.Initialization != nil && list.Initialization.SourceURL != "" {
		initSec = &initSection{URL: resolveURL(base, list.Initialization.SourceURL)}
	}
	timescale := list.Timescale
	if timescale <= 0 {
		timescale = 1
	}
	var durations []int64
	if list.Timeline != nil {
		for _, s := range list.Timeline.S {
			for i := int64(0); i <= s.R; i++ {
				durations = append(durations, s.D)
			}
		}
	}
	seq := int64(1)
	if list.StartNumber != nil {
		seq = *list.StartNumber
	}
	out := make([]segment, 0, len(list.SegmentURL))
	for i, u := range list.SegmentURL {
		d := list.Duration
		if i < len(durations) {
			d = durations[i]
		}
		out = append(out, segment{
			URL:      resolveURL(base, u.Media),
			Seq:      seq + int64(i),
			Duration: scaled(d, timescale),
			Init:     initSec,
		})
	}
	return out
}

func (s *dashSource) templateSegments(mpd *dashMPD, tmpl *dashSegmentTemplate, rep *dashRepresentation, base string) ([]segment, error) {
	timescale := tmpl.Timescale
	if timescale <= 0 {
		timescale = 1
	}
	seq := int64(1)
	if tmpl.StartNumber != nil {
		seq = *tmpl.StartNumber
	}
	var initSec *initSection
	if tmpl.Initialization != "" {
		initSec = &initSection{URL: resolveURL(base, expandTemplate(tmpl.Initialization, rep, 0, 0))}
	}

	var out []segment
	add := func(number, t, d int64) {
		out = append(out, segment{
			URL:      resolveURL(base, expandTemplate(tmpl.Media, rep, number, t)),
			Seq:      number,
			Duration: scaled(d, timescale),
			Init:     initSec,
		})
	}

	if tmpl.SegmentTimeline != nil {
		var t int64
		for _, s := range tmpl.SegmentTimeline.S {
			if s.T != nil {
				t = *s.T
			}
			// r=-1 (repeat until the next S) is treated as a single occurrence.
			for i := int64(0); i <= max(s.R, 0); i++ {
				add(seq, t, s.D)
				t += s.D
				seq++
			}
		}
		return out, nil
	}

	if tmpl.Duration <= 0 {
		return nil, errors.New("segment template has neither a timeline nor a duration")
	}
	segDur := scaled(tmpl.Duration, timescale)
	if mpd.Type != "dynamic" {
		total, err := parseISODuration(mpd.MediaPresentationDuration)
		if err != nil || total <= 0 {
			return nil, fmt.Errorf("static template needs mediaPresentationDuration: %q", mpd.MediaPresentationDuration)
		}
		count := int64((total + segDur - 1) / segDur)
		for i := int64(0); i < count; i++ {
			add(seq+i, i*tmpl.Duration, tmpl.Duration)
		}
		return out, nil
	}

	start, err := time.Parse(time.RFC3339, mpd.AvailabilityStartTime)
	if err != nil {
		return nil, fmt.Errorf("dynamic template needs availabilityStartTime: %w", err)
	}
	newest := seq + int64(s.now().Sub(start)/segDur) - 1
	window := int64(10)
	if depth, err := parseISODuration(mpd.TimeShiftBufferDepth); err == nil && depth > 0 {
		window = max(int64(depth/segDur), 1)
	}
	for n := max(newest-window+1, seq); n <= newest; n++ {
		add(n, (n-seq)*tmpl.Duration, tmpl.Duration)
	}
	return out, nil
}

func scaled(d, timescale int64) time.Duration {
	return time.Duration(d) * time.Second / time.Duration(timescale)
}

var templateIdentifier = regexp.MustCompile(`\$(RepresentationID|Number|Time|Bandwidth)(%0(\d+)d)?\$`)

// expandTemplate substitutes $RepresentationID$, $Number$, $Time$ and
// $Bandwidth$, honoring %0Nd width tags.
func expandTemplate(tmpl string, rep *dashRepresentation, number, t int64) string {
	out := templateIdentifier.ReplaceAllStringFunc(tmpl, func(m string) string {
		sub := templateIdentifier.FindStringSubmatch(m)
		var v string
		switch sub[1] {
		case "RepresentationID":
			return rep.ID
		case "Number":
			v = strconv.FormatInt(number, 10)
		case "Time":
			v = strconv.FormatInt(t, 10)
		case "Bandwidth":
			v = strconv.Itoa(rep.Bandwidth)
		}
		if width, err := strconv.Atoi(sub[3]); err == nil && len(v) < width {
			v = strings.Repeat("0", width-len(v)) + v
		}
		return v
	})
	return strings.ReplaceAll(out, "$$", "$")
}

var isoDurationPattern = regexp.MustCompile(`^P(?:(\d+(?:\.\d+)?)D)?(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// parseISODuration reads the day and time parts of an ISO 8601 duration
// ("PT2.000S", "P1DT30M").
func parseISODuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	m := isoDurationPattern.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" {
		return 0, fmt.Errorf("invalid ISO 8601 duration %q", s)
	}
	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		v, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil {
			return 0, err
		}
		total += time.Duration(v * float64(unit))
	}
	return total, nil
}
