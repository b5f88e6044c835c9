// Package scheduleview shapes schedule runs into the values the dashboard,
// overview and chart render. Nothing here performs I/O.
package scheduleview

import (
	"strings"
	"sync"
	"time"
)

// InvalidDate is shown in place of a date that cannot be parsed.
const InvalidDate = "Invalid Date"

// DefaultTimezone is the display zone used when none is configured.
const DefaultTimezone = "Asia/Jakarta"

// dateLayout is the long en-GB form, e.g. "1 March 2025".
const dateLayout = "2 January 2006"

// Timestamp layouts accepted from the backend, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Formatter renders backend dates in a fixed location.
type Formatter struct {
	loc *time.Location
}

// NewFormatter returns a Formatter for loc. A nil loc means UTC.
func NewFormatter(loc *time.Location) Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return Formatter{loc: loc}
}

// Location returns the zone dates are rendered in.
func (f Formatter) Location() *time.Location {
	if f.loc == nil {
		return time.UTC
	}
	return f.loc
}

// FormatDate renders raw as "2 January 2006". A bare calendar date is shown
// as that day regardless of zone; a timestamp is converted into the
// formatter's location first. Anything else yields InvalidDate.
func (f Formatter) FormatDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return InvalidDate
	}
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d.Format(dateLayout)
	}
	for _, layout := range timestampLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339Nano {
			t, err = time.Parse(layout, s)
		} else {
			// Zone-less timestamps are wall clock in the display zone.
			t, err = time.ParseInLocation(layout, s, f.Location())
		}
		if err == nil {
			return t.In(f.Location()).Format(dateLayout)
		}
	}
	return InvalidDate
}

var (
	defaultMu  sync.RWMutex
	defaultFmt = NewFormatter(loadOrUTC(DefaultTimezone))
)

func loadOrUTC(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SetDefault replaces the package-level formatter. Call once at startup.
func SetDefault(f Formatter) {
	defaultMu.Lock()
	defaultFmt = f
	defaultMu.Unlock()
}

// Default returns the package-level formatter.
func Default() Formatter {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultFmt
}

// FormatDate formats with the package-level formatter.
func FormatDate(raw string) string {
	return Default().FormatDate(raw)
}
