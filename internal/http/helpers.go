package http

import (
	"strings"
	"time"

	"spendwise/internal/core"
)

// sanitizeInput drops control characters (except tab and newlines) and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// periodAnchor returns the instant insights for p are computed at: now for
// the current month, the last day of p otherwise.
func periodAnchor(p core.Period, now time.Time) time.Time {
	if p == core.PeriodOf(now) {
		return now
	}
	return time.Date(p.Year, p.Month+1, 0, 12, 0, 0, 0, now.Location())
}
