package client

import (
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// defaultHTTPClient builds the shared upstream client: the default
// transport, optionally proxied, wrapped for tracing.
func defaultHTTPClient(proxyURL string, jar http.CookieJar) *http.Client {
	var base http.RoundTripper = http.DefaultTransport
	if proxy := parseProxy(proxyURL); proxy != nil {
		if t, ok := http.DefaultTransport.(*http.Transport); ok {
			transport := t.Clone()
			transport.Proxy = http.ProxyURL(proxy)
			base = transport
		}
	}
	return &http.Client{
		Transport: otelhttp.NewTransport(base),
		Jar:       jar,
	}
}

func parseProxy(proxyURL string) *url.URL {
	if strings.TrimSpace(proxyURL) == "" {
		return nil
	}
	parsed, err := url.Parse(proxyURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil
	}
	return parsed
}
