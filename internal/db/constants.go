package db

import "time"

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 2

// sqliteTimeLayout is how timestamps are written so SQLite's date functions can read them.
const sqliteTimeLayout = "2006-01-02 15:04:05"

var timeFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z",
	sqliteTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05 +0000 UTC",
}

func parseTimeString(s string) (time.Time, bool) {
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
