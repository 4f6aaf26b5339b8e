package downloader

import (
	"net/http"
	"sync"
)

// EventKind names a transport lifecycle event.
type EventKind string

const (
	EventRequest   EventKind = "request"
	EventResponse  EventKind = "response"
	EventProgress  EventKind = "progress"
	EventRetry     EventKind = "retry"
	EventReconnect EventKind = "reconnect"
)

// Progress describes forwarded data. For the ranged transport it is
// (chunk length, cumulative bytes, content length); for the segmented
// transport (segment size, segment number, segments queued so far).
type Progress struct {
	ChunkLength int64 `json:"chunkLength"`
	Downloaded  int64 `json:"downloaded"`
	Total       int64 `json:"total"`
}

// Event is one transport event. Response is only set for EventResponse;
// its body belongs to the transport and must not be read.
type Event struct {
	Kind     EventKind
	URL      string
	Response *http.Response
	Progress Progress
	Attempt  int
	Err      error
}

// EventFunc observes transport events.
type EventFunc func(Event)

// emitter serializes event delivery; segment readahead would otherwise
// call the observer from several goroutines.
type emitter struct {
	mu sync.Mutex
	fn EventFunc
}

func (e *emitter) emit(ev Event) {
	if e == nil || e.fn == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fn(ev)
}
