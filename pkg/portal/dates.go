package portal

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ResolveEntryDate turns the relative dates the assistant accepts ("today",
// "tomorrow", "yesterday") into absolute YYYY-MM-DD using the local date at
// invocation time. Anything else passes through unchanged.
func ResolveEntryDate(entryDate string, now time.Time) string {
	switch strings.ToLower(strings.TrimSpace(entryDate)) {
	case "today":
		return now.Format(dateLayout)
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format(dateLayout)
	case "yesterday":
		return now.AddDate(0, 0, -1).Format(dateLayout)
	default:
		return strings.TrimSpace(entryDate)
	}
}
