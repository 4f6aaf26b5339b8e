// Package downloader moves the bytes of one chosen format: a ranged HTTP
// transport for progressive files and a segmented transport for HLS and
// DASH manifests.
package downloader

import (
	"context"
	"io"
	"sync"

	"github.com/famomatic/ytstream/internal/types"
)

// Transport streams one format into a writer. Abort may be called from any
// goroutine, any number of times, before or during Run.
type Transport interface {
	Run(ctx context.Context, w io.Writer) error
	Abort()
	// Name is the transport label used in metrics ("ranged", "segmented").
	Name() string
}

// abortable is the shared cancellation state of a transport.
type abortable struct {
	mu      sync.Mutex
	aborted bool
	cancel  context.CancelFunc
}

// start derives the run context, or fails with ErrAborted when Abort came
// first.
func (a *abortable) start(ctx context.Context) (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.aborted {
		return nil, types.ErrAborted
	}
	ctx, a.cancel = context.WithCancel(ctx)
	return ctx, nil
}

func (a *abortable) finish() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *abortable) Abort() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.aborted = true
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *abortable) isAborted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.aborted
}

// runErr reports ErrAborted in place of the cancellation caused by Abort.
func (a *abortable) runErr(err error) error {
	if err != nil && a.isAborted() {
		return types.ErrAborted
	}
	return err
}
