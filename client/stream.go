package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/famomatic/ytstream/internal/downloader"
	ytlog "github.com/famomatic/ytstream/internal/log"
	"github.com/famomatic/ytstream/internal/metrics"
	"github.com/famomatic/ytstream/internal/types"
)

// State is the lifecycle position of a Stream.
type State string

const (
	StateInit            State = "INIT"
	StateResolvingInfo   State = "RESOLVING_INFO"
	StateSelectingFormat State = "SELECTING_FORMAT"
	StateStreaming       State = "STREAMING"
	StateComplete        State = "COMPLETE"
	StateAborted         State = "ABORTED"
	StateErrored         State = "ERRORED"
)

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateAborted || s == StateErrored
}

// EventKind names a stream event.
type EventKind string

const (
	EventInfo      EventKind = "info"
	EventProgress  EventKind = "progress"
	EventResponse  EventKind = "response"
	EventRequest   EventKind = "request"
	EventRetry     EventKind = "retry"
	EventReconnect EventKind = "reconnect"
	EventError     EventKind = "error"
	EventAbort     EventKind = "abort"
)

// Progress is the payload of a progress event.
type Progress = downloader.Progress

// Event is one observable step of a download. Info and Format are set on
// the info event, Err on error and retry events.
type Event struct {
	Kind     EventKind
	Info     *VideoInfo
	Format   *Format
	Progress Progress
	// Response is the raw transport response; its body belongs to the stream.
	Response *http.Response
	URL      string
	Attempt  int
	Err      error
}

// Stream is the output of a download. Read it like any io.Reader; a
// failure in any phase surfaces as an error event and from Read.
//
// Events are delivered one at a time from the stream's own goroutines,
// never from inside the call that created the stream. The info event
// always precedes any progress event.
type Stream struct {
	id      string
	pr      *io.PipeReader
	pw      *io.PipeWriter
	onEvent func(Event)
	logger  zerolog.Logger
	cancel  context.CancelFunc
	done    chan struct{}

	mu        sync.Mutex
	state     State
	destroyed bool
	transport downloader.Transport
	err       error

	emitMu sync.Mutex
}

func newStream(id string, onEvent func(Event), logger zerolog.Logger, cancel context.CancelFunc) *Stream {
	pr, pw := io.Pipe()
	return &Stream{
		id:      id,
		pr:      pr,
		pw:      pw,
		onEvent: onEvent,
		logger:  logger.With().Str(ytlog.FieldStreamID, id).Logger(),
		cancel:  cancel,
		done:    make(chan struct{}),
		state:   StateInit,
	}
}

// ID identifies the stream in logs.
func (s *Stream) ID() string { return s.id }

func (s *Stream) Read(p []byte) (int, error) { return s.pr.Read(p) }

// Close destroys the stream.
func (s *Stream) Close() error {
	s.Destroy()
	return nil
}

// Destroy aborts the stream. It is safe to call from any goroutine, any
// number of times, in any state. Before a transport exists it only marks
// the stream destroyed; the engine stops at its next transition.
func (s *Stream) Destroy() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.destroyed = true
	tr := s.transport
	s.mu.Unlock()

	if tr != nil {
		tr.Abort()
	}
	s.cancel()
	_ = s.pr.CloseWithError(types.ErrAborted)
}

// State returns the current lifecycle state.
func (s *Stream) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the stream reached a terminal state.
func (s *Stream) Done() <-chan struct{} { return s.done }

// Err returns the terminal error: nil after COMPLETE, ErrAborted after
// ABORTED, the failure after ERRORED.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Stream) isDestroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

func (s *Stream) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.logger.Debug().Str(ytlog.FieldState, string(state)).Msg("stream state")
}

// attach registers the transport unless the stream was destroyed first.
func (s *Stream) attach(tr downloader.Transport) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return false
	}
	s.transport = tr
	return true
}

// emit delivers ev unless the stream was destroyed. Abort events are
// always delivered.
func (s *Stream) emit(ev Event) {
	if s.onEvent == nil {
		return
	}
	if ev.Kind != EventAbort && s.isDestroyed() {
		return
	}
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	s.onEvent(ev)
}

// relay forwards a transport event.
func (s *Stream) relay(ev downloader.Event) {
	s.emit(Event{
		Kind:     EventKind(ev.Kind),
		Progress: ev.Progress,
		Response: ev.Response,
		URL:      ev.URL,
		Attempt:  ev.Attempt,
		Err:      ev.Err,
	})
}

func (s *Stream) complete() {
	s.mu.Lock()
	s.state = StateComplete
	s.mu.Unlock()
	_ = s.pw.Close()
	s.logger.Debug().Msg("stream complete")
}

func (s *Stream) abort() {
	s.mu.Lock()
	s.state = StateAborted
	s.err = types.ErrAborted
	s.mu.Unlock()
	_ = s.pw.CloseWithError(types.ErrAborted)
	s.emit(Event{Kind: EventAbort, Err: types.ErrAborted})
	s.logger.Debug().Msg("stream aborted")
}

func (s *Stream) fail(err error) {
	if errors.Is(err, types.ErrAborted) || s.isDestroyed() {
		s.abort()
		return
	}
	s.mu.Lock()
	s.state = StateErrored
	s.err = err
	s.mu.Unlock()
	_ = s.pw.CloseWithError(err)
	s.emit(Event{Kind: EventError, Err: err})
	s.logger.Warn().Err(err).Str("category", string(types.Classify(err))).Msg("stream failed")
}

// finish records the outcome metrics and releases waiters.
func (s *Stream) finish(transport string) {
	result := "complete"
	switch s.State() {
	case StateAborted:
		result = "aborted"
	case StateErrored:
		result = "errored"
	}
	metrics.Downloads.WithLabelValues(transport, result).Inc()
	metrics.ActiveStreams.Dec()
	s.cancel()
	close(s.done)
}
