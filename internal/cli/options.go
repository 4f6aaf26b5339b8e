package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/famomatic/ytstream/client"
	"github.com/famomatic/ytstream/internal/cookies"
)

// FileConfig is the YAML configuration file. Command-line flags win over
// file values.
type FileConfig struct {
	Proxy             string        `yaml:"proxy"`
	Cookies           string        `yaml:"cookies"`
	Lang              string        `yaml:"lang"`
	LogLevel          string        `yaml:"log_level"`
	CacheSize         int           `yaml:"cache_size"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	BaseURL           string        `yaml:"base_url"`
	Server            ServerConfig  `yaml:"server"`
}

type ServerConfig struct {
	Addr         string `yaml:"addr"`
	RequestLimit int    `yaml:"request_limit"`
}

// LoadFileConfig reads path. Unknown keys are rejected.
func LoadFileConfig(path string) (FileConfig, error) {
	var cfg FileConfig
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Options holds the global command-line options.
type Options struct {
	ConfigFile  string // --config
	ProxyURL    string // --proxy
	CookiesFile string // --cookies
	Lang        string // --lang
	LogLevel    string // --log-level
	Debug       bool   // --debug
	BaseURL     string // --base-url (hidden)

	File FileConfig
}

// merge fills unset options from the file config.
func (o *Options) merge(file FileConfig) {
	o.File = file
	if o.ProxyURL == "" {
		o.ProxyURL = file.Proxy
	}
	if o.CookiesFile == "" {
		o.CookiesFile = file.Cookies
	}
	if o.Lang == "" {
		o.Lang = file.Lang
	}
	if o.LogLevel == "" {
		o.LogLevel = file.LogLevel
	}
	if o.BaseURL == "" {
		o.BaseURL = file.BaseURL
	}
}

// ToClientConfig converts Options to client.Config.
func ToClientConfig(opts Options, logger zerolog.Logger) (client.Config, error) {
	cfg := client.Config{
		ProxyURL:          opts.ProxyURL,
		Lang:              opts.Lang,
		CacheSize:         opts.File.CacheSize,
		CacheTTL:          opts.File.CacheTTL,
		RequestsPerSecond: opts.File.RequestsPerSecond,
		BaseURL:           opts.BaseURL,
		Logger:            logger,
	}
	if opts.CookiesFile != "" {
		jar, err := cookies.LoadJar(opts.CookiesFile)
		if err != nil {
			return cfg, fmt.Errorf("load cookies: %w", err)
		}
		cfg.CookieJar = jar
	}
	return cfg, nil
}

// parseRange parses "start-end" where either side may be empty.
func parseRange(raw string) (*client.ByteRange, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	startRaw, endRaw, ok := strings.Cut(raw, "-")
	if !ok {
		return nil, fmt.Errorf("invalid range %q: want start-end", raw)
	}
	var r client.ByteRange
	if startRaw != "" {
		v, err := strconv.ParseInt(startRaw, 10, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid range start %q", startRaw)
		}
		r.Start = &v
	}
	if endRaw != "" {
		v, err := strconv.ParseInt(endRaw, 10, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid range end %q", endRaw)
		}
		r.End = &v
	}
	if r.Start == nil && r.End == nil {
		return nil, errors.New("invalid range: both bounds empty")
	}
	if r.Start != nil && r.End != nil && *r.End < *r.Start {
		return nil, fmt.Errorf("invalid range %q: end before start", raw)
	}
	return &r, nil
}
