package timezone

import (
	"strings"
	"sync"
	"time"

	// Airport zones must resolve even on hosts without zoneinfo.
	_ "time/tzdata"
)

var locations sync.Map // tz name -> *time.Location

var offsetFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700", // Without colon
	"2006-01-02T15:04-07:00",
	"2006-01-02 15:04:05-07:00",
}

var localFormats = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// Location resolves an IANA zone name. Unknown or empty names fall back to UTC.
func Location(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "UTC") {
		return time.UTC
	}
	if loc, ok := locations.Load(name); ok {
		return loc.(*time.Location)
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	locations.Store(name, loc)
	return loc
}

// ParseTimeWithOffset parses timestamps with an explicit offset first and
// falls back to wall-clock formats interpreted in tzName.
func ParseTimeWithOffset(timeStr string, tzName string) (time.Time, error) {
	timeStr = strings.TrimSpace(timeStr)

	for _, format := range offsetFormats {
		if t, err := time.Parse(format, timeStr); err == nil {
			return t, nil
		}
	}

	loc := Location(tzName)
	for _, format := range localFormats {
		if t, err := time.ParseInLocation(format, timeStr, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &time.ParseError{
		Value:   timeStr,
		Message: "unable to parse time string",
	}
}

// AtLocalTime builds the instant at hh:mm on date (YYYY-MM-DD) in tzName.
func AtLocalTime(date string, minuteOfDay int, tzName string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, Location(tzName))
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(minuteOfDay) * time.Minute), nil
}
