package innertube

import (
	"net/url"
	"testing"
)

func TestInfoRequestQuery(t *testing.T) {
	req := InfoRequest{VideoID: "dQw4w9WgXcQ", Lang: "en", STS: "19000"}
	u, err := url.Parse(req.URL(""))
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if u.Host != "www.youtube.com" || u.Path != "/get_video_info" {
		t.Fatalf("unexpected endpoint: %s", u)
	}
	q := u.Query()
	want := map[string]string{
		"video_id": "dQw4w9WgXcQ",
		"eurl":     "https://youtube.googleapis.com/v/dQw4w9WgXcQ",
		"ps":       "default",
		"gl":       "US",
		"hl":       "en",
		"sts":      "19000",
	}
	for k, v := range want {
		if got := q.Get(k); got != v {
			t.Fatalf("%s=%q, want %q", k, got, v)
		}
	}
}

func TestParseInfoResponse(t *testing.T) {
	body := url.Values{
		"status":               {"fail"},
		"errorcode":            {"150"},
		"reason":               {"blocked"},
		"live_chunk_readahead": {"5"},
	}.Encode()
	resp, err := ParseInfoResponse(body)
	if err != nil {
		t.Fatalf("ParseInfoResponse() error = %v", err)
	}
	if !resp.Failed() || resp.ErrorCode() != "150" || resp.Reason() != "blocked" {
		t.Fatalf("unexpected payload: %+v", resp.Values)
	}
	if resp.LiveChunkReadahead() != 5 {
		t.Fatalf("LiveChunkReadahead() = %d", resp.LiveChunkReadahead())
	}
	if resp.RawPlayerResponse() != nil {
		t.Fatalf("expected no player_response")
	}
}

func TestParseInfoResponseSkipsMalformedPairs(t *testing.T) {
	resp, err := ParseInfoResponse("status=ok;bad&reason=%zz&live_chunk_readahead=2&player_response=%7B%7D")
	if err != nil {
		t.Fatalf("ParseInfoResponse() error = %v", err)
	}
	if resp.Failed() || resp.LiveChunkReadahead() != 2 || string(resp.RawPlayerResponse()) != "{}" {
		t.Fatalf("well-formed pairs lost: %+v", resp.Values)
	}
	if resp.Values.Has("reason") {
		t.Fatalf("malformed pair kept: %+v", resp.Values)
	}

	if _, err := ParseInfoResponse("%zz=1;x"); err == nil {
		t.Fatalf("expected an error when no pair decodes")
	}
}

func TestPlayabilityStatusIsLive(t *testing.T) {
	pr, err := ParsePlayerResponse([]byte(`{"playabilityStatus":{"status":"OK","liveStreamability":{"liveStreamabilityRenderer":{"videoId":"x"}}}}`))
	if err != nil {
		t.Fatalf("ParsePlayerResponse() error = %v", err)
	}
	if !pr.PlayabilityStatus.IsLive() {
		t.Fatalf("expected live")
	}
	pr, err = ParsePlayerResponse([]byte(`{"playabilityStatus":{"status":"OK","liveStreamability":null}}`))
	if err != nil {
		t.Fatalf("ParsePlayerResponse() error = %v", err)
	}
	if pr.PlayabilityStatus.IsLive() {
		t.Fatalf("null liveStreamability must not count as live")
	}
}

func TestPlayerConfigAccessors(t *testing.T) {
	cfg, err := ParsePlayerConfig([]byte(`{"sts":18843,"args":{"player_response":"{\"videoDetails\":{\"title\":\"x\"}}"},"assets":{"js":"/s/player/abc/base.js"}}`))
	if err != nil {
		t.Fatalf("ParsePlayerConfig() error = %v", err)
	}
	if got := cfg.SignatureTimestamp(); got != "18843" {
		t.Fatalf("SignatureTimestamp() = %q", got)
	}
	pr, err := ParsePlayerResponse(cfg.RawPlayerResponse())
	if err != nil {
		t.Fatalf("ParsePlayerResponse() error = %v", err)
	}
	if pr.VideoDetails.Title != "x" {
		t.Fatalf("title = %q", pr.VideoDetails.Title)
	}

	obj, err := ParsePlayerConfig([]byte(`{"sts":"17","args":{"player_response":{"playabilityStatus":{"status":"UNPLAYABLE"}}}}`))
	if err != nil {
		t.Fatalf("ParsePlayerConfig() error = %v", err)
	}
	if obj.SignatureTimestamp() != "17" {
		t.Fatalf("string sts not accepted")
	}
	pr, err = ParsePlayerResponse(obj.RawPlayerResponse())
	if err != nil {
		t.Fatalf("ParsePlayerResponse() error = %v", err)
	}
	if !pr.PlayabilityStatus.IsUnplayable() {
		t.Fatalf("expected UNPLAYABLE")
	}
}
