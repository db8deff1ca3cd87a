package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsStale(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	ttl := 24 * time.Hour

	tests := []struct {
		name        string
		lastUpdated string
		want        bool
	}{
		{"ttl plus one hour", now.Add(-(ttl + time.Hour)).Format(time.RFC3339), true},
		{"ttl minus one hour", now.Add(-(ttl - time.Hour)).Format(time.RFC3339), false},
		{"just refreshed", now.Format(time.RFC3339Nano), false},
		{"empty", "", true},
		{"unparseable", "last tuesday", true},
		{"date only old", "2026-02-25", true},
		{"date only today", "2026-10-19", false},
		{"no zone", "2026-10-19T08:30:00", false},
		{"no zone fractional", "2026-10-18T08:30:00.123456", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStale(tt.lastUpdated, ttl, now))
		})
	}
}

func TestIsOlder(t *testing.T) {
	assert.True(t, isOlder("2026-01-01", "2026-02-25"))
	assert.False(t, isOlder("2026-02-25", "2026-02-25"))
	assert.False(t, isOlder("2026-03-01T00:00:00Z", "2026-02-25"))
	assert.False(t, isOlder("garbage", "2026-02-25"))
	assert.False(t, isOlder("2026-01-01", ""))
}
