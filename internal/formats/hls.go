package formats

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/famomatic/ytstream/internal/types"
)

var (
	absoluteURLPattern = regexp.MustCompile(`https?://[^\s"]+`)
	hlsItagPattern     = regexp.MustCompile(`/itag/(\d+)/`)
)

// ParseHLSManifest reads a master playlist and maps each absolute URL it
// contains to the itag embedded in the URL path. URL lines without an itag are skipped and
// logged; they never produce an entry.
func ParseHLSManifest(r io.Reader, logger zerolog.Logger) (Manifest, error) {
	out := Manifest{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := absoluteURLPattern.FindString(sc.Text())
		if text == "" {
			continue
		}
		m := hlsItagPattern.FindStringSubmatch(text)
		if m == nil {
			logger.Debug().Int("line", line).Msg("hls variant without itag skipped")
			continue
		}
		itag, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out[itag] = Format{Itag: itag, URL: text}
	}
	if err := sc.Err(); err != nil {
		return nil, &types.ManifestParseError{Line: line, Err: err}
	}
	return out, nil
}

// FetchHLSManifest downloads and parses an HLS master playlist.
func FetchHLSManifest(ctx context.Context, client *http.Client, url string, header http.Header, logger zerolog.Logger) (Manifest, error) {
	body, err := fetchManifest(ctx, client, url, header)
	if err != nil {
		return nil, err
	}
	m, err := ParseHLSManifest(bytes.NewReader(body), logger.With().Str("manifest", url).Logger())
	if err != nil {
		var perr *types.ManifestParseError
		if errors.As(err, &perr) {
			perr.URL = url
		}
		return nil, err
	}
	return m, nil
}
