package server

import (
	"encoding/json"
	"net/http"

	"github.com/famomatic/ytstream/client"
	ytlog "github.com/famomatic/ytstream/internal/log"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error category onto an HTTP status.
func statusFor(category client.ErrorCategory) int {
	switch category {
	case client.CategoryInvalidInput, client.CategoryBadFilter, client.CategoryIncomplete:
		return http.StatusBadRequest
	case client.CategoryUnavailable, client.CategoryNoFormat:
		return http.StatusNotFound
	case client.CategoryNotPlayable:
		return http.StatusForbidden
	case client.CategoryUpstream, client.CategoryParse, client.CategoryHTTPStatus, client.CategoryTransport:
		return http.StatusBadGateway
	case client.CategoryAborted, client.CategoryCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	category := client.ClassifyError(err)
	status := statusFor(category)
	logger := ytlog.WithContext(r.Context(), s.logger).With().Str("category", string(category)).Int("status", status).Logger()
	if status >= http.StatusInternalServerError {
		logger.Warn().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		logger.Debug().Err(err).Str("path", r.URL.Path).Msg("request rejected")
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Code: string(category)})
}
