package innertube

import (
	"net/url"
	"strconv"
)

// InfoEndpoint is the legacy video info endpoint.
const InfoEndpoint = "https://www.youtube.com/get_video_info"

// InfoRequest describes one call to the info endpoint.
type InfoRequest struct {
	VideoID string
	Lang    string
	STS     string
}

// Query builds the query string of the info endpoint request.
func (r InfoRequest) Query() url.Values {
	q := url.Values{}
	q.Set("video_id", r.VideoID)
	q.Set("eurl", "https://youtube.googleapis.com/v/"+r.VideoID)
	q.Set("ps", "default")
	q.Set("gl", "US")
	q.Set("hl", r.Lang)
	q.Set("sts", r.STS)
	return q
}

// URL returns the full request URL against base (InfoEndpoint when empty).
func (r InfoRequest) URL(base string) string {
	if base == "" {
		base = InfoEndpoint
	}
	return base + "?" + r.Query().Encode()
}

// InfoResponse is the query-encoded payload of the info endpoint.
type InfoResponse struct {
	Values url.Values
}

// ParseInfoResponse decodes the info endpoint body. Malformed pairs are
// skipped; it only fails when nothing could be decoded.
func ParseInfoResponse(body string) (*InfoResponse, error) {
	v, err := url.ParseQuery(body)
	if err != nil && len(v) == 0 {
		return nil, err
	}
	return &InfoResponse{Values: v}, nil
}

// Failed reports whether the endpoint signalled a failure.
func (r *InfoResponse) Failed() bool {
	return r.Values.Get("status") == "fail"
}

func (r *InfoResponse) ErrorCode() string { return r.Values.Get("errorcode") }
func (r *InfoResponse) Reason() string    { return r.Values.Get("reason") }

// RawPlayerResponse returns the player_response document, if the payload has one.
func (r *InfoResponse) RawPlayerResponse() []byte {
	s := r.Values.Get("player_response")
	if s == "" {
		return nil
	}
	return []byte(s)
}

// LiveChunkReadahead returns the live_chunk_readahead hint, or 0.
func (r *InfoResponse) LiveChunkReadahead() int {
	n, err := strconv.Atoi(r.Values.Get("live_chunk_readahead"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
