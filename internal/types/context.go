package types

import "context"

type contextKey string

const (
	// StreamIDKey is the context key for the id of the download stream a request belongs to.
	StreamIDKey contextKey = "streamID"
)

// WithStreamID returns a new context carrying the stream id.
func WithStreamID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, StreamIDKey, id)
}

// StreamIDFromContext returns the stream id from the context.
func StreamIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(StreamIDKey).(string)
	return id, ok
}
