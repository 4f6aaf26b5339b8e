package downloader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBegin(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"1500", 1500 * time.Millisecond},
		{"1m30s", 90 * time.Second},
		{"2h", 2 * time.Hour},
		{"02:03", 2*time.Minute + 3*time.Second},
		{"1:02:03.5", time.Hour + 2*time.Minute + 3500*time.Millisecond},
	}
	for _, tt := range tests {
		got, err := ParseBegin(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"-5", "-1s", "1:99", "1:2:3:4", "soon"} {
		_, err := ParseBegin(bad)
		assert.Error(t, err, bad)
	}
}
