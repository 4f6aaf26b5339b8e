package orchestrator

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/famomatic/ytstream/internal/extras"
	"github.com/famomatic/ytstream/internal/formats"
	"github.com/famomatic/ytstream/internal/innertube"
	"github.com/famomatic/ytstream/internal/types"
)

var (
	hidClassPattern = regexp.MustCompile(`\bhid\b`)
	embedConfigEnd  = regexp.MustCompile(`\}(,'|\}\);)`)
)

const (
	unavailableMarker = `<div id="player-unavailable"`
	ageGateMarker     = `<div id="watch7-player-age-gate-content"`
	unavailableTitle  = `<h1 id="unavailable-message" class="message">`
	watchConfigStart  = `ytplayer.config = `
	embedConfigStart  = `t.setConfig({'PLAYER_CONFIG': `
)

// BasicInfo retrieves the metadata of a video without deciphering or
// merging manifests. The returned info has Full == false.
func (e *Engine) BasicInfo(ctx context.Context, videoID string, opts Options) (info *types.VideoInfo, err error) {
	ctx, done := e.stage(ctx, "basic_info", videoID)
	defer done(&err)

	lang := NormalizeLang(opts.Lang)
	logger := e.logger.With().Str("video_id", videoID).Logger()

	watchURL := e.cfg.WatchURL + url.QueryEscape(videoID) +
		"&hl=" + url.QueryEscape(lang) +
		"&bpctr=" + strconv.FormatInt(e.cfg.Now().Unix(), 10)
	// An empty User-Agent selects the legacy page rendering.
	body, err := e.get(ctx, watchURL, mergeHeader(opts.Header, map[string]string{"User-Agent": ""}))
	if err != nil {
		return nil, err
	}

	if reason, unavailable := unavailableReason(body); unavailable {
		return nil, &types.UnavailableError{Reason: reason}
	}

	additional := e.cfg.Extractor.Extract(body, videoID)

	fromEmbed := false
	config := ""
	if blob := formats.Between(body, watchConfigStart, "</script>"); blob != "" {
		if i := strings.LastIndex(blob, ";ytplayer.load"); i >= 0 {
			blob = blob[:i]
		}
		config = blob
	} else {
		logger.Debug().Msg("watch page has no player config, trying embed page")
		embedURL := e.cfg.EmbedURL + url.PathEscape(videoID) + "?hl=" + url.QueryEscape(lang)
		embedBody, err := e.get(ctx, embedURL, opts.Header)
		if err != nil {
			return nil, err
		}
		config = betweenPattern(embedBody, embedConfigStart, embedConfigEnd)
		fromEmbed = true
	}
	if config == "" {
		return nil, types.ErrConfigNotFound
	}
	if fromEmbed {
		config += "}"
	}

	cfg, err := innertube.ParsePlayerConfig([]byte(config))
	if err != nil {
		return nil, &types.ConfigParseError{Err: err}
	}

	infoReq := innertube.InfoRequest{VideoID: videoID, Lang: lang, STS: cfg.SignatureTimestamp()}
	payload, err := e.get(ctx, infoReq.URL(e.cfg.InfoURL), opts.Header)
	if err != nil {
		return nil, err
	}
	infoResp, err := innertube.ParseInfoResponse(payload)
	if err != nil {
		return nil, &types.UpstreamError{Reason: err.Error()}
	}
	if infoResp.Failed() {
		return nil, &types.UpstreamError{Code: infoResp.ErrorCode(), Reason: StripHTML(infoResp.Reason())}
	}

	raw := infoResp.RawPlayerResponse()
	if len(raw) == 0 {
		raw = cfg.RawPlayerResponse()
	}
	pr, err := innertube.ParsePlayerResponse(raw)
	if err != nil {
		return nil, &types.PlayerResponseParseError{Err: err}
	}
	if pr.PlayabilityStatus.IsUnplayable() {
		return nil, &types.NotPlayableError{Reason: StripHTML(pr.PlayabilityStatus.Reason)}
	}
	extras.FillFromPlayer(&additional, pr)

	info = &types.VideoInfo{
		VideoID:            videoID,
		VideoURL:           e.cfg.WatchURL + videoID,
		Title:              pr.VideoDetails.Title,
		LengthSeconds:      pr.VideoDetails.LengthSeconds,
		PlayerResponse:     pr,
		Extras:             additional,
		Formats:            formats.Parse(pr),
		HTML5Player:        cfg.Assets.JS,
		AgeRestricted:      fromEmbed,
		Query:              infoResp.Values,
		LiveChunkReadahead: infoResp.LiveChunkReadahead(),
	}
	logger.Debug().Int("formats", len(info.Formats)).Bool("age_restricted", fromEmbed).Msg("basic info resolved")
	return info, nil
}

// unavailableReason inspects the watch page unavailable notice. Hidden
// notices and age gates do not count as unavailable.
func unavailableReason(body string) (string, bool) {
	marker := formats.Between(body, unavailableMarker, ">")
	if marker == "" {
		return "", false
	}
	if hidClassPattern.MatchString(formats.Between(marker, `class="`, `"`)) {
		return "", false
	}
	if strings.Contains(body, ageGateMarker) {
		return "", false
	}
	return strings.TrimSpace(formats.Between(body, unavailableTitle, "</h1>")), true
}

// betweenPattern is Between with a regular expression as the right bound;
// the match itself is excluded.
func betweenPattern(haystack, left string, right *regexp.Regexp) string {
	i := strings.Index(haystack, left)
	if i < 0 {
		return ""
	}
	haystack = haystack[i+len(left):]
	loc := right.FindStringIndex(haystack)
	if loc == nil {
		return ""
	}
	return haystack[:loc[0]]
}
