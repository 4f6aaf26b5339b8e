package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famomatic/ytstream/client"
)

const testID = "dQw4w9WgXcQ"

const testPlayer = `var Xy={ab:function(a){a.reverse()}};
function Zq(a){a=a.split("");Xy.ab(a,0);return a.join("")}`

var media = strings.Repeat("v", 30_000)

func fakeSite(t *testing.T) *httptest.Server {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			_, _ = w.Write([]byte(`<script>var ytplayer = ytplayer || {};ytplayer.config = ` +
				`{"sts":1,"args":{},"assets":{"js":"/s/player/t1/base.js"}};ytplayer.load = function(){};</script>`))
		case "/get_video_info":
			cipher := url.Values{"url": {srv.URL + "/videoplayback?itag=18"}, "s": {"cba"}}
			pr, err := json.Marshal(map[string]any{
				"playabilityStatus": map[string]any{"status": "OK"},
				"videoDetails":      map[string]any{"title": "CLI Fixture", "lengthSeconds": "10"},
				"streamingData": map[string]any{
					"formats": []map[string]any{{
						"itag":            18,
						"mimeType":        `video/mp4; codecs="avc1.42001E, mp4a.40.2"`,
						"signatureCipher": cipher.Encode(),
					}},
					"adaptiveFormats": []map[string]any{{
						"itag":     140,
						"url":      srv.URL + "/videoplayback?itag=140",
						"mimeType": `audio/mp4; codecs="mp4a.40.2"`,
					}},
				},
			})
			require.NoError(t, err)
			_, _ = w.Write([]byte(url.Values{"status": {"ok"}, "player_response": {string(pr)}}.Encode()))
		case "/s/player/t1/base.js":
			_, _ = w.Write([]byte(testPlayer))
		case "/videoplayback":
			if r.URL.Query().Get("itag") == "18" {
				assert.Equal(t, "abc", r.URL.Query().Get("signature"))
			}
			_, _ = w.Write([]byte(media))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand(&stdout, &stderr)
	cmd.SetArgs(args)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func TestInfoCommand(t *testing.T) {
	site := fakeSite(t)
	out, _, err := run(t, "--base-url", site.URL, "info", "https://youtu.be/"+testID)
	require.NoError(t, err)
	assert.Contains(t, out, "CLI Fixture")
	assert.Contains(t, out, testID)
	assert.Contains(t, out, "Formats:")
}

func TestInfoCommandFullJSON(t *testing.T) {
	site := fakeSite(t)
	out, _, err := run(t, "--base-url", site.URL, "info", testID, "--full", "--json")
	require.NoError(t, err)

	var info client.VideoInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.True(t, info.Full)
	require.Len(t, info.Formats, 2)
	for _, f := range info.Formats {
		assert.NotEmpty(t, f.URL)
	}
}

func TestFormatsCommand(t *testing.T) {
	site := fakeSite(t)
	out, _, err := run(t, "--base-url", site.URL, "formats", testID, "--filter", "audioonly")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ITAG"))
	assert.True(t, strings.HasPrefix(lines[1], "140"))

	_, _, err = run(t, "--base-url", site.URL, "formats", testID, "--filter", "bogus")
	assert.ErrorIs(t, err, client.ErrUnsupportedFilter)
}

func TestDownloadCommandToFile(t *testing.T) {
	site := fakeSite(t)
	path := filepath.Join(t.TempDir(), "out.mp4")
	_, _, err := run(t, "--base-url", site.URL, "download", testID, "-q", "18", "-o", path)
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, media, string(got))
}

func TestDownloadCommandToStdout(t *testing.T) {
	site := fakeSite(t)
	out, _, err := run(t, "--base-url", site.URL, "download", testID, "-q", "highestaudio", "-o", "-")
	require.NoError(t, err)
	assert.Equal(t, media, out)
}

func TestDownloadCommandWithSelector(t *testing.T) {
	site := fakeSite(t)
	out, _, err := run(t, "--base-url", site.URL, "download", testID, "-f", "bestvideo/best[ext=mp4]", "-o", "-")
	require.NoError(t, err)
	assert.Equal(t, media, out)

	_, _, err = run(t, "--base-url", site.URL, "download", testID, "-f", "bestvideo[fps=60]", "-o", "-")
	require.ErrorIs(t, err, client.ErrNoFormatsAfterFilter)
}

func TestDownloadCommandFailureLeavesNoFile(t *testing.T) {
	site := fakeSite(t)
	path := filepath.Join(t.TempDir(), "out.mp4")
	_, _, err := run(t, "--base-url", site.URL, "download", testID, "-q", "999", "-o", path)
	require.ErrorIs(t, err, client.ErrNoSuchFormat)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownloadRequiresOutput(t *testing.T) {
	_, _, err := run(t, "download", testID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output")
}

func TestConfigFileMergesUnderFlags(t *testing.T) {
	site := fakeSite(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: "+site.URL+"\nlang: de\ncache_ttl: 2m\nserver:\n  addr: \":9999\"\n"), 0o600))

	cfg, err := LoadFileConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, ":9999", cfg.Server.Addr)

	opts := Options{Lang: "fr"}
	opts.merge(cfg)
	assert.Equal(t, "fr", opts.Lang)
	assert.Equal(t, site.URL, opts.BaseURL)

	out, _, err := run(t, "--config", path, "info", testID)
	require.NoError(t, err)
	assert.Contains(t, out, "CLI Fixture")
}

func TestLoadFileConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("proxi: http://x\n"), 0o600))
	_, err := LoadFileConfig(path)
	require.Error(t, err)
}

func TestParseRange(t *testing.T) {
	r, err := parseRange("10-20")
	require.NoError(t, err)
	assert.Equal(t, int64(10), *r.Start)
	assert.Equal(t, int64(20), *r.End)

	r, err = parseRange("-20")
	require.NoError(t, err)
	assert.Nil(t, r.Start)
	assert.Equal(t, int64(20), *r.End)

	r, err = parseRange("")
	require.NoError(t, err)
	assert.Nil(t, r)

	for _, bad := range []string{"abc", "5", "-", "20-10", "x-1"} {
		_, err := parseRange(bad)
		assert.Error(t, err, bad)
	}
}

func TestToClientConfigLoadsCookies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.txt")
	require.NoError(t, os.WriteFile(path, []byte("# Netscape HTTP Cookie File\n"+
		".youtube.com\tTRUE\t/\tTRUE\t0\tPREF\tf1=1\n"), 0o600))

	cfg, err := ToClientConfig(Options{CookiesFile: path, ProxyURL: "http://127.0.0.1:3128"}, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, cfg.CookieJar)
	assert.Equal(t, "http://127.0.0.1:3128", cfg.ProxyURL)

	u, _ := url.Parse("https://www.youtube.com/")
	cookies := cfg.CookieJar.Cookies(u)
	require.Len(t, cookies, 1)
	assert.Equal(t, "PREF", cookies[0].Name)

	_, err = ToClientConfig(Options{CookiesFile: filepath.Join(t.TempDir(), "missing.txt")}, zerolog.Nop())
	require.Error(t, err)
}
