package formats

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/famomatic/ytstream/internal/types"
)

// ParseDASHManifest scans an MPD for Representation elements. Each one
// becomes {Itag: id, URL: manifestURL}; ids that are not itags are skipped.
func ParseDASHManifest(r io.Reader, manifestURL string) (Manifest, error) {
	out := Manifest{}
	dec := xml.NewDecoder(r)
	sawElement := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &types.ManifestParseError{URL: manifestURL, Err: err}
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawElement = true
		if !strings.EqualFold(start.Name.Local, "Representation") {
			continue
		}
		for _, attr := range start.Attr {
			if !strings.EqualFold(attr.Name.Local, "id") {
				continue
			}
			itag, err := strconv.Atoi(strings.TrimSpace(attr.Value))
			if err != nil {
				break
			}
			out[itag] = Format{Itag: itag, URL: manifestURL}
			break
		}
	}
	if !sawElement {
		return nil, &types.ManifestParseError{URL: manifestURL, Err: errors.New("no XML elements")}
	}
	return out, nil
}

// FetchDASHManifest downloads and parses a DASH manifest.
func FetchDASHManifest(ctx context.Context, client *http.Client, url string, header http.Header) (Manifest, error) {
	body, err := fetchManifest(ctx, client, url, header)
	if err != nil {
		return nil, err
	}
	return ParseDASHManifest(bytes.NewReader(body), url)
}

func fetchManifest(ctx context.Context, client *http.Client, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &types.HTTPStatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}
