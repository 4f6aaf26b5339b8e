package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famomatic/ytstream/internal/playerjs"
	"github.com/famomatic/ytstream/internal/types"
)

const testID = "dQw4w9WgXcQ"

type stubDecipherer struct {
	calls atomic.Int32
}

func (s *stubDecipherer) GetTokens(_ context.Context, playerURL string) (*playerjs.TokenSet, error) {
	s.calls.Add(1)
	return &playerjs.TokenSet{PlayerURL: playerURL}, nil
}

func (s *stubDecipherer) DecipherFormats(list []types.Format, _ *playerjs.TokenSet, _ bool) error {
	for i := range list {
		if list[i].SignatureCipher == "" {
			continue
		}
		q, _ := url.ParseQuery(list[i].SignatureCipher)
		list[i].URL = q.Get("url") + "&" + q.Get("sp") + "=ok"
		list[i].SignatureCipher = ""
	}
	return nil
}

// testSite is a fake video site: watch page, info endpoint and media.
type testSite struct {
	t       *testing.T
	srv     *httptest.Server
	media   string
	watches atomic.Int32
	// infoCookie is the visitor cookie the info endpoint last received.
	infoCookie atomic.Value
	// block, when set, holds media responses until closed.
	block chan struct{}
}

func newTestSite(t *testing.T) *testSite {
	s := &testSite{t: t, media: strings.Repeat("m", 200_000)}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *testSite) serve(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/watch":
		s.watches.Add(1)
		http.SetCookie(w, &http.Cookie{Name: "VISITOR_INFO1_LIVE", Value: "visitor-1", Path: "/"})
		_, _ = w.Write([]byte(`<html><script>var ytplayer = ytplayer || {};ytplayer.config = ` +
			`{"sts":18000,"args":{},"assets":{"js":"/s/player/abc/base.js"}}` +
			`;ytplayer.load = function(){};</script></html>`))
	case r.URL.Path == "/get_video_info":
		if c, err := r.Cookie("VISITOR_INFO1_LIVE"); err == nil {
			s.infoCookie.Store(c.Value)
		}
		v := url.Values{"status": {"ok"}, "player_response": {s.playerResponse()}}
		_, _ = w.Write([]byte(v.Encode()))
	case r.URL.Path == "/videoplayback":
		if s.block != nil {
			select {
			case <-s.block:
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Length", "200000")
		_, _ = w.Write([]byte(s.media))
	default:
		http.NotFound(w, r)
	}
}

func (s *testSite) playerResponse() string {
	cipher := url.Values{}
	cipher.Set("url", s.srv.URL+"/videoplayback?itag=18")
	cipher.Set("s", "xyz")
	cipher.Set("sp", "sig")
	doc := map[string]any{
		"playabilityStatus": map[string]any{"status": "OK"},
		"videoDetails":      map[string]any{"title": "Never Gonna", "lengthSeconds": "213"},
		"streamingData": map[string]any{
			"formats": []map[string]any{{
				"itag":            18,
				"mimeType":        `video/mp4; codecs="avc1.42001E, mp4a.40.2"`,
				"qualityLabel":    "360p",
				"bitrate":         500000,
				"signatureCipher": cipher.Encode(),
			}},
			"adaptiveFormats": []map[string]any{{
				"itag":     140,
				"url":      s.srv.URL + "/videoplayback?itag=140",
				"mimeType": `audio/mp4; codecs="mp4a.40.2"`,
				"bitrate":  130000,
			}},
		},
	}
	b, err := json.Marshal(doc)
	require.NoError(s.t, err)
	return string(b)
}

func (s *testSite) client(d playerjs.Decipherer) *Client {
	return New(Config{
		HTTPClient: s.srv.Client(),
		BaseURL:    s.srv.URL,
		Decipherer: d,
	})
}

func TestGetBasicInfoCachesByResolvedID(t *testing.T) {
	site := newTestSite(t)
	c := site.client(&stubDecipherer{})
	ctx := context.Background()

	first, err := c.GetBasicInfo(ctx, testID, InfoOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Never Gonna", first.Title)
	assert.False(t, first.Full)

	second, err := c.GetBasicInfo(ctx, "https://www.youtube.com/watch?v="+testID, InfoOptions{Lang: "EN"})
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), site.watches.Load())

	assert.Equal(t, []string{"getBasicInfo-" + testID + "-en"}, c.Caches().Info.Keys())
}

func TestWatchCookiesReachInfoEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		config func(site *testSite) Config
	}{
		{
			name: "default http client",
			config: func(site *testSite) Config {
				return Config{BaseURL: site.srv.URL, Decipherer: &stubDecipherer{}}
			},
		},
		{
			name: "custom client without jar",
			config: func(site *testSite) Config {
				return Config{HTTPClient: site.srv.Client(), BaseURL: site.srv.URL, Decipherer: &stubDecipherer{}}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := newTestSite(t)
			c := New(tt.config(site))
			require.NotNil(t, c.httpClient.Jar)

			_, err := c.GetBasicInfo(context.Background(), testID, InfoOptions{})
			require.NoError(t, err)
			assert.Equal(t, "visitor-1", site.infoCookie.Load())
		})
	}
}

func TestGetFullInfoReusesBasicInfo(t *testing.T) {
	site := newTestSite(t)
	d := &stubDecipherer{}
	c := site.client(d)
	ctx := context.Background()

	basic, err := c.GetBasicInfo(ctx, testID, InfoOptions{})
	require.NoError(t, err)

	full, err := c.GetFullInfo(ctx, "https://youtu.be/"+testID, InfoOptions{})
	require.NoError(t, err)
	assert.True(t, full.Full)
	assert.Equal(t, int32(1), site.watches.Load())
	assert.Equal(t, int32(1), d.calls.Load())
	require.Len(t, full.Formats, 2)
	for _, f := range full.Formats {
		assert.NotEmpty(t, f.URL)
		assert.Empty(t, f.SignatureCipher)
	}
	assert.NotEmpty(t, basic.Formats[0].SignatureCipher, "basic info must stay untouched")

	again, err := c.GetFullInfo(ctx, testID, InfoOptions{})
	require.NoError(t, err)
	assert.Same(t, full, again)
	assert.Equal(t, 2, c.Caches().Info.Len())
}

func TestGetInfoInvalidInput(t *testing.T) {
	site := newTestSite(t)
	c := site.client(&stubDecipherer{})

	_, err := c.GetBasicInfo(context.Background(), "https://example.com/watch?v="+testID, InfoOptions{})
	require.ErrorIs(t, err, ErrNotPlatformDomain)
	assert.Equal(t, CategoryInvalidInput, ClassifyError(err))
	assert.Equal(t, int32(0), site.watches.Load())
	assert.Zero(t, c.Caches().Info.Len())
}

func TestCachesRemoveForcesRefetch(t *testing.T) {
	site := newTestSite(t)
	c := site.client(&stubDecipherer{})
	ctx := context.Background()

	_, err := c.GetBasicInfo(ctx, testID, InfoOptions{})
	require.NoError(t, err)
	c.Caches().Info.Purge()
	_, err = c.GetBasicInfo(ctx, testID, InfoOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), site.watches.Load())
}

func TestCachesSignatureNilForCustomDecipherer(t *testing.T) {
	site := newTestSite(t)
	assert.Nil(t, site.client(&stubDecipherer{}).Caches().Signature)

	builtin := New(Config{HTTPClient: site.srv.Client(), BaseURL: site.srv.URL})
	require.NotNil(t, builtin.Caches().Signature)
	assert.Equal(t, "sig", builtin.Caches().Signature.Name())
}

func TestChooseAndFilterFormats(t *testing.T) {
	list := []Format{
		{Itag: 18, URL: "a", QualityLabel: "360p", AudioBitrate: 96, HasVideo: true, HasAudio: true},
		{Itag: 140, URL: "b", AudioBitrate: 128, HasAudio: true},
	}
	audio, err := FilterFormatsByName(list, "audioonly")
	require.NoError(t, err)
	require.Len(t, audio, 1)
	assert.Equal(t, 140, audio[0].Itag)

	got, err := ChooseFormat(list, ChooseOptions{Quality: []string{"140"}})
	require.NoError(t, err)
	assert.Equal(t, 140, got.Itag)

	video := FilterFormats(list, func(f Format) bool { return f.HasVideo })
	require.Len(t, video, 1)
	assert.Equal(t, 18, video[0].Itag)
}
