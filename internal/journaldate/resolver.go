package journaldate

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time-of-day or zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// String renders the date in ISO 8601 form (YYYY-MM-DD).
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Cutoff is the local time-of-day at which a new journal day begins.
type Cutoff struct {
	Hour   int
	Minute int
}

// ParseCutoff parses a cutoff in HH:MM form.
func ParseCutoff(value string) (Cutoff, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return Cutoff{}, fmt.Errorf("parse cutoff %q: %w", value, err)
	}
	return Cutoff{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}

// Resolver maps absolute instants to journal days under a fixed timezone and
// cutoff.
type Resolver struct {
	loc    *time.Location
	cutoff Cutoff
}

// NewResolver builds a resolver for the named IANA timezone and an HH:MM
// cutoff. Both values come from configuration; errors here mean the
// configuration is invalid.
func NewResolver(timezone, cutoff string) (*Resolver, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	parsed, err := ParseCutoff(cutoff)
	if err != nil {
		return nil, err
	}
	return &Resolver{loc: loc, cutoff: parsed}, nil
}

// Resolve returns the journal day for an absolute instant. Callers with
// zone-less timestamps interpret them as UTC before calling.
//
// The instant is converted to wall-clock time in the resolver's timezone,
// with daylight saving applied by the zone database. A wall-clock time
// strictly earlier than the cutoff belongs to the previous calendar day; a
// time exactly at the cutoff starts the current day.
func (r *Resolver) Resolve(instant time.Time) Date {
	local := instant.In(r.loc)
	year, month, day := local.Date()
	if beforeCutoff(local, r.cutoff) {
		year, month, day = time.Date(year, month, day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1).Date()
	}
	return Date{Year: year, Month: month, Day: day}
}

func beforeCutoff(local time.Time, cutoff Cutoff) bool {
	if local.Hour() != cutoff.Hour {
		return local.Hour() < cutoff.Hour
	}
	return local.Minute() < cutoff.Minute
}
