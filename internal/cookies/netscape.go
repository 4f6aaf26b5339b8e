// Package cookies loads Netscape cookies.txt files into a cookie jar.
package cookies

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

const httpOnlyPrefix = "#HttpOnly_"

// ParseNetscape parses a Netscape cookies.txt stream.
// Format: domain flag path secure expiration name value
func ParseNetscape(r io.Reader) ([]*http.Cookie, error) {
	var cookies []*http.Cookie
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		httpOnly := false
		if strings.HasPrefix(line, httpOnlyPrefix) {
			line = strings.TrimPrefix(line, httpOnlyPrefix)
			httpOnly = true
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 7 {
			return nil, fmt.Errorf("cookies line %d: expected 7 tab-separated fields, got %d", lineNo, len(parts))
		}
		expiresUnix, err := strconv.ParseInt(parts[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cookies line %d: invalid expiry %q", lineNo, parts[4])
		}
		c := &http.Cookie{
			Domain:   parts[0],
			Path:     parts[2],
			Secure:   strings.EqualFold(parts[3], "TRUE"),
			Name:     parts[5],
			Value:    parts[6],
			HttpOnly: httpOnly,
		}
		// Expiry 0 marks a session cookie.
		if expiresUnix > 0 {
			c.Expires = time.Unix(expiresUnix, 0)
		}
		cookies = append(cookies, c)
	}
	return cookies, scanner.Err()
}

// NewJar returns an empty jar using the public suffix list.
func NewJar() (*cookiejar.Jar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

// Fill stores cookies in jar, keyed by the URL each cookie's domain and
// path describe. Expired cookies are dropped.
func Fill(jar http.CookieJar, cookies []*http.Cookie, now time.Time) {
	for _, c := range cookies {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			continue
		}
		host := strings.TrimPrefix(c.Domain, ".")
		if host == "" {
			continue
		}
		scheme := "http"
		if c.Secure {
			scheme = "https"
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		jar.SetCookies(&url.URL{Scheme: scheme, Host: host, Path: path}, []*http.Cookie{c})
	}
}

// LoadJar reads a cookies.txt file into a new jar.
func LoadJar(path string) (*cookiejar.Jar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cookies, err := ParseNetscape(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	jar, err := NewJar()
	if err != nil {
		return nil, err
	}
	Fill(jar, cookies, time.Now())
	return jar, nil
}
