package client

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type streamEvents struct {
	mu     sync.Mutex
	events []Event
}

func (l *streamEvents) record(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *streamEvents) kinds() []EventKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]EventKind, 0, len(l.events))
	for _, ev := range l.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (l *streamEvents) first(kind EventKind) (Event, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ev := range l.events {
		if ev.Kind == kind {
			return ev, true
		}
	}
	return Event{}, false
}

func waitDone(t *testing.T, s *Stream) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("stream %s did not finish, state %s", s.ID(), s.State())
	}
}

func TestDownloadStreamsChosenFormat(t *testing.T) {
	site := newTestSite(t)
	c := site.client(&stubDecipherer{})

	var log streamEvents
	s := c.Download(context.Background(), testID, DownloadOptions{
		Quality: []string{"highestaudio"},
		OnEvent: log.record,
	})
	body, err := io.ReadAll(s)
	require.NoError(t, err)
	waitDone(t, s)

	assert.Equal(t, site.media, string(body))
	assert.Equal(t, StateComplete, s.State())
	assert.NoError(t, s.Err())

	kinds := log.kinds()
	require.NotEmpty(t, kinds)
	assert.Equal(t, EventInfo, kinds[0])
	assert.Contains(t, kinds, EventResponse)
	assert.Contains(t, kinds, EventProgress)
	assert.NotContains(t, kinds, EventError)

	info, ok := log.first(EventInfo)
	require.True(t, ok)
	require.NotNil(t, info.Format)
	assert.Equal(t, 140, info.Format.Itag)
	assert.True(t, info.Info.Full)
}

func TestDownloadInvalidInputReportsThroughStream(t *testing.T) {
	site := newTestSite(t)
	c := site.client(&stubDecipherer{})

	var log streamEvents
	s := c.Download(context.Background(), "https://example.com/nope", DownloadOptions{OnEvent: log.record})
	require.NotNil(t, s)
	_, err := io.ReadAll(s)
	require.ErrorIs(t, err, ErrNotPlatformDomain)
	waitDone(t, s)

	assert.Equal(t, StateErrored, s.State())
	assert.Equal(t, []EventKind{EventError}, log.kinds())
	assert.Equal(t, int32(0), site.watches.Load())
}

func TestDownloadNoMatchingFormat(t *testing.T) {
	site := newTestSite(t)
	c := site.client(&stubDecipherer{})

	var log streamEvents
	s := c.Download(context.Background(), testID, DownloadOptions{
		Quality: []string{"999"},
		OnEvent: log.record,
	})
	_, err := io.ReadAll(s)
	require.ErrorIs(t, err, ErrNoSuchFormat)
	waitDone(t, s)
	assert.Equal(t, StateErrored, s.State())
	assert.Equal(t, []EventKind{EventError}, log.kinds())
}

func TestDownloadFromInfoRequiresFullInfo(t *testing.T) {
	site := newTestSite(t)
	c := site.client(&stubDecipherer{})

	basic, err := c.GetBasicInfo(context.Background(), testID, InfoOptions{})
	require.NoError(t, err)
	_, err = c.DownloadFromInfo(context.Background(), basic, DownloadOptions{})
	require.ErrorIs(t, err, ErrIncompleteInfo)
	_, err = c.DownloadFromInfo(context.Background(), nil, DownloadOptions{})
	require.ErrorIs(t, err, ErrIncompleteInfo)

	full, err := c.GetFullInfo(context.Background(), testID, InfoOptions{})
	require.NoError(t, err)
	s, err := c.DownloadFromInfo(context.Background(), full, DownloadOptions{Quality: []string{"18"}})
	require.NoError(t, err)
	body, err := io.ReadAll(s)
	require.NoError(t, err)
	waitDone(t, s)
	assert.Len(t, body, len(site.media))
	assert.Equal(t, int32(1), site.watches.Load())
}

func TestDestroyBeforeTransport(t *testing.T) {
	site := newTestSite(t)
	c := site.client(&stubDecipherer{})

	var log streamEvents
	s := c.Download(context.Background(), testID, DownloadOptions{OnEvent: log.record})
	s.Destroy()
	s.Destroy()

	_, err := io.ReadAll(s)
	require.ErrorIs(t, err, ErrAborted)
	waitDone(t, s)
	assert.Equal(t, StateAborted, s.State())
	assert.ErrorIs(t, s.Err(), ErrAborted)

	kinds := log.kinds()
	assert.NotContains(t, kinds, EventProgress)
	assert.NotContains(t, kinds, EventError)
	assert.Equal(t, EventAbort, kinds[len(kinds)-1])
}

func TestDestroyWhileStreaming(t *testing.T) {
	site := newTestSite(t)
	site.block = make(chan struct{})
	c := site.client(&stubDecipherer{})
	leaks := goleak.IgnoreCurrent()

	var log streamEvents
	s := c.Download(context.Background(), testID, DownloadOptions{OnEvent: log.record})
	require.Eventually(t, func() bool { return s.State() == StateStreaming }, 5*time.Second, 5*time.Millisecond)

	s.Destroy()
	waitDone(t, s)
	s.Destroy()
	require.NoError(t, s.Close())

	assert.Equal(t, StateAborted, s.State())
	kinds := log.kinds()
	assert.Equal(t, EventInfo, kinds[0])
	assert.Equal(t, EventAbort, kinds[len(kinds)-1])
	assert.NotContains(t, kinds, EventProgress)
	assert.NotContains(t, kinds, EventError)

	close(site.block)
	site.srv.Close()
	goleak.VerifyNone(t, leaks)
}

func TestStateTerminal(t *testing.T) {
	for _, st := range []State{StateComplete, StateAborted, StateErrored} {
		assert.True(t, st.Terminal(), st)
	}
	for _, st := range []State{StateInit, StateResolvingInfo, StateSelectingFormat, StateStreaming} {
		assert.False(t, st.Terminal(), st)
	}
}
