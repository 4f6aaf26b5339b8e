package downloader

import "net/http"

func cloneHeader(h http.Header) http.Header {
	if h == nil {
		return nil
	}
	out := make(http.Header, len(h))
	for k, vals := range h {
		cp := make([]string, len(vals))
		copy(cp, vals)
		out[k] = cp
	}
	return out
}

// applyRequestHeaders sets every header of overrides on req, replacing
// values already present.
func applyRequestHeaders(req *http.Request, overrides http.Header) {
	for k, vals := range overrides {
		req.Header.Del(k)
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
}
