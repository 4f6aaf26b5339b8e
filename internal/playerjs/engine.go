// Package playerjs implements signature decipherment of format URLs using
// the per-session player script.
package playerjs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/famomatic/ytstream/internal/memo"
	"github.com/famomatic/ytstream/internal/types"
)

// Decipherer is the contract the metadata pipeline depends on.
type Decipherer interface {
	GetTokens(ctx context.Context, playerURL string) (*TokenSet, error)
	DecipherFormats(formats []types.Format, tokens *TokenSet, debug bool) error
}

// Config tunes an Engine.
type Config struct {
	Fetcher   Fetcher
	Locale    string
	CacheSize int
	CacheTTL  time.Duration
	Logger    zerolog.Logger
}

// Engine fetches player scripts, caches their token sets and rewrites
// format URLs.
type Engine struct {
	fetcher Fetcher
	locale  string
	tokens  *memo.Cache[string, *TokenSet]
	logger  zerolog.Logger
}

// NewEngine builds an Engine. A nil Fetcher fetches with http.DefaultClient.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		fetcher: cfg.Fetcher,
		locale:  cfg.Locale,
		logger:  cfg.Logger.With().Str("component", "playerjs").Logger(),
	}
	if e.fetcher == nil {
		e.fetcher = NewFetcher(nil, ResolverConfig{})
	}
	e.tokens = memo.New(memo.Options[string]{
		Name: "sig",
		Size: cfg.CacheSize,
		TTL:  cfg.CacheTTL,
		Key:  PlayerCacheKey,
		Remap: func(u string) (string, error) {
			if u == "" {
				return "", errors.New("playerjs: empty player script url")
			}
			return NormalizePlayerURL(u, e.locale), nil
		},
	}, e.load)
	return e
}

func (e *Engine) load(ctx context.Context, playerURL string) (*TokenSet, error) {
	script, err := e.fetcher.Fetch(ctx, playerURL)
	if err != nil {
		return nil, err
	}
	tokens, err := ExtractTokens(playerURL, script)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, playerURL)
	}
	e.logger.Debug().Str("url", playerURL).Str("ops", FormatOps(tokens.Ops)).Bool("n", tokens.HasN()).Msg("player tokens extracted")
	return tokens, nil
}

// GetTokens returns the token set for playerURL, fetching the script on a
// cache miss.
func (e *Engine) GetTokens(ctx context.Context, playerURL string) (*TokenSet, error) {
	return e.tokens.Call(ctx, playerURL)
}

// Cache exposes the token cache for inspection and invalidation.
func (e *Engine) Cache() *memo.View[*TokenSet] {
	return e.tokens.View()
}

// DecipherFormats rewrites every format URL in place. A format that cannot
// be deciphered keeps its current URL.
func (e *Engine) DecipherFormats(formats []types.Format, tokens *TokenSet, debug bool) error {
	if tokens == nil {
		return errors.New("playerjs: no token set")
	}
	for i := range formats {
		if err := decipherFormat(&formats[i], tokens); err != nil && debug {
			e.logger.Debug().Err(err).Int("itag", formats[i].Itag).Msg("format left undeciphered")
		}
	}
	return nil
}

func decipherFormat(f *types.Format, tokens *TokenSet) error {
	raw := f.URL
	var sig, sp string
	cipher := f.SignatureCipher
	if cipher == "" {
		cipher = f.Cipher
	}
	if cipher != "" {
		args, err := url.ParseQuery(cipher)
		if err != nil {
			return fmt.Errorf("parse cipher: %w", err)
		}
		raw = args.Get("url")
		sig = args.Get("s")
		sp = args.Get("sp")
		if sp == "" {
			sp = "signature"
		}
	}
	if raw == "" {
		return errors.New("format has no url")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	if sig != "" {
		q.Set(sp, tokens.Signature(sig))
	}

	var nErr error
	if n := q.Get("n"); n != "" && tokens.HasN() {
		if decoded, err := tokens.TransformN(n); err != nil {
			nErr = err
		} else {
			q.Set("n", decoded)
		}
	}
	u.RawQuery = q.Encode()
	f.URL = u.String()
	f.SignatureCipher = ""
	f.Cipher = ""
	return nErr
}
