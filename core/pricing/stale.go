package pricing

import (
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a catalog last_updated value. Values without a zone
// are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsStale reports whether a catalog dated lastUpdated needs a refresh:
// true when the date is empty, unparseable, or older than now - ttl.
func IsStale(lastUpdated string, ttl time.Duration, now time.Time) bool {
	t, ok := ParseTimestamp(lastUpdated)
	if !ok {
		return true
	}
	return t.Before(now.Add(-ttl))
}

// isOlder reports whether candidate is dated strictly before reference.
// Unparseable dates are never considered older.
func isOlder(candidate, reference string) bool {
	c, ok := ParseTimestamp(candidate)
	if !ok {
		return false
	}
	r, ok := ParseTimestamp(reference)
	if !ok {
		return false
	}
	return c.Before(r)
}
