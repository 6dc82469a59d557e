package platform

import (
	"regexp"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventID_SortsLexicallyByTime(t *testing.T) {
	base := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)

	// Trailing-zero fractions must not shrink the timestamp, or ids stop
	// sorting chronologically.
	times := []time.Time{
		base,
		base.Add(500 * time.Nanosecond),
		base.Add(time.Millisecond),
		base.Add(time.Second),
		base.Add(time.Hour),
	}

	ids := make([]string, len(times))
	for i, ts := range times {
		ids[i] = NewEventID(ts)
	}

	assert.True(t, sort.StringsAreSorted(ids), "ids %v", ids)
}

func TestNewEventID_Unique(t *testing.T) {
	now := time.Now()
	assert.NotEqual(t, NewEventID(now), NewEventID(now))
}

func TestNewAPIKey(t *testing.T) {
	key := NewAPIKey()
	require.Len(t, key, APIKeyLength)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_-]+$`), key)
	assert.NotEqual(t, key, NewAPIKey())
}
