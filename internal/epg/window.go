package epg

import (
	"time"

	"github.com/tvforge/tvcatalog/internal/catalog"
)

// timeLayout matches the stored naive timestamp format.
const timeLayout = "2006-01-02 15:04:05"

// Current returns entries whose [start, end] interval contains now,
// optionally restricted to one guide identifier. Entries with unparsable
// times are skipped.
func Current(entries []catalog.Programme, tvgID string) []catalog.Programme {
	now := time.Now()
	var out []catalog.Programme
	for _, e := range entries {
		if tvgID != "" && e.TVGID != tvgID {
			continue
		}
		start, err := time.ParseInLocation(timeLayout, e.StartTime, time.Local)
		if err != nil {
			continue
		}
		end, err := time.ParseInLocation(timeLayout, e.EndTime, time.Local)
		if err != nil {
			continue
		}
		if !now.Before(start) && !now.After(end) {
			out = append(out, e)
		}
	}
	return out
}

// Upcoming returns entries starting within [now, now+withinHours],
// optionally restricted to one guide identifier.
func Upcoming(entries []catalog.Programme, tvgID string, withinHours int) []catalog.Programme {
	now := time.Now()
	horizon := now.Add(time.Duration(withinHours) * time.Hour)
	var out []catalog.Programme
	for _, e := range entries {
		if tvgID != "" && e.TVGID != tvgID {
			continue
		}
		start, err := time.ParseInLocation(timeLayout, e.StartTime, time.Local)
		if err != nil {
			continue
		}
		if !start.Before(now) && !start.After(horizon) {
			out = append(out, e)
		}
	}
	return out
}
