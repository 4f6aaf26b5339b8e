package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/famomatic/ytstream/client"
	ytlog "github.com/famomatic/ytstream/internal/log"
)

type formatsResponse struct {
	VideoID string          `json:"videoId"`
	Title   string          `json:"title"`
	Formats []client.Format `json:"formats"`
}

func infoOptions(r *http.Request) client.InfoOptions {
	return client.InfoOptions{Lang: r.URL.Query().Get("lang")}
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.client.GetBasicInfo(r.Context(), chi.URLParam(r, "id"), infoOptions(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	info, err := s.client.GetFullInfo(r.Context(), chi.URLParam(r, "id"), infoOptions(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list := info.Formats
	if filter := r.URL.Query().Get("filter"); filter != "" {
		if list, err = client.FilterFormatsByName(list, filter); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, formatsResponse{VideoID: info.VideoID, Title: info.Title, Formats: list})
}

// openStream starts the download. A selector expression picks the format
// from full info up front; otherwise the stream chooses by quality.
func (s *Server) openStream(r *http.Request, id, expr string, opts client.DownloadOptions) (*client.Stream, error) {
	if expr == "" {
		return s.client.Download(r.Context(), id, opts), nil
	}
	info, err := s.client.GetFullInfo(r.Context(), id, infoOptions(r))
	if err != nil {
		return nil, err
	}
	format, err := client.SelectFormat(info.Formats, expr)
	if err != nil {
		return nil, err
	}
	opts.Format = &format
	return s.client.DownloadFromInfo(r.Context(), info, opts)
}

// handleStream proxies the chosen format. Headers are sent once the format
// is known so selection failures still produce a JSON error. The stream is
// destroyed when the client goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var quality []string
	if raw := q.Get("quality"); raw != "" {
		quality = strings.Split(raw, ",")
	}

	chosen := make(chan client.Format, 1)
	opts := client.DownloadOptions{
		Quality: quality,
		Filter:  q.Get("filter"),
		Lang:    q.Get("lang"),
		Retry:   client.DefaultRetryConfig(),
		OnEvent: func(ev client.Event) {
			if ev.Kind == client.EventInfo && ev.Format != nil {
				select {
				case chosen <- *ev.Format:
				default:
				}
			}
		},
	}
	stream, err := s.openStream(r, chi.URLParam(r, "id"), q.Get("format"), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer stream.Destroy()
	logger := ytlog.WithContext(r.Context(), s.logger).With().Str(ytlog.FieldStreamID, stream.ID()).Logger()

	var format client.Format
	select {
	case format = <-chosen:
	case <-stream.Done():
		// An empty body can finish before this select sees the info event.
		select {
		case format = <-chosen:
		default:
		}
		if err := stream.Err(); err != nil {
			s.writeError(w, r, err)
			return
		}
	case <-r.Context().Done():
		return
	}

	if format.MimeType != "" {
		w.Header().Set("Content-Type", strings.TrimSpace(strings.SplitN(format.MimeType, ";", 2)[0]))
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	if format.ContentLength > 0 && !format.Segmented() {
		w.Header().Set("Content-Length", strconv.FormatInt(format.ContentLength, 10))
	}
	w.Header().Set("X-Itag", format.ItagString())
	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, stream)
	switch {
	case err == nil:
		logger.Debug().Int64("bytes", n).Int("itag", format.Itag).Msg("stream proxied")
	case errors.Is(err, client.ErrAborted) || r.Context().Err() != nil:
		logger.Debug().Int64("bytes", n).Msg("stream client went away")
	default:
		logger.Warn().Err(err).Int64("bytes", n).Msg("stream interrupted")
	}
}
