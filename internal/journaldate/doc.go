// Package journaldate attributes an instant to a journal day.
//
// A journal day is not the UTC calendar date of the capture instant. The
// instant is converted to wall-clock time in the journal's timezone, and
// anything earlier than the configured day-start cutoff still belongs to the
// previous day's entry. A note recorded at 01:30 local time with a 04:00
// cutoff lands on yesterday's page.
package journaldate
