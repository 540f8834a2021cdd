// pkg/ingest/timestamps.go
package ingest

import (
	"strings"
	"time"
)

// timestampAliases are the column names (case-insensitive) that are treated
// as timestamp-typed when inferring the destination schema
var timestampAliases = []string{
	"submitted at",
	"submitted_at",
	"timestamp",
	"created_at",
}

// IsTimestampColumn reports whether a column name matches one of the
// timestamp naming conventions
func IsTimestampColumn(name string) bool {
	lowered := strings.ToLower(strings.TrimSpace(name))
	for _, alias := range timestampAliases {
		if lowered == alias {
			return true
		}
	}
	return false
}

// timestampLayouts are tried in order when coercing a spreadsheet value to a
// timestamp
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006 15:04:05",
	"1/2/2006",
}

// CoerceTimestamp parses a spreadsheet cell permissively. The second return
// value is false when the value is empty or matches no known layout; callers
// store NULL in that case rather than rejecting the row.
func CoerceTimestamp(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
