package catalog

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a ledger entry.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// RestartFailureMessage is recorded when a restarted daemon fails entries
// left in the processing state by a previous run.
const RestartFailureMessage = "Daemon restarted while entry was in flight"

var allStatuses = []Status{
	StatusProcessing,
	StatusSucceeded,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Entry represents one processed voice note persisted in SQLite.
type Entry struct {
	ID              int64
	EntryID         string
	UserID          string
	AudioPath       string
	CapturedAt      time.Time
	Status          Status
	FailureCategory string
	ErrorMessage    string
	RecordID        string
	RecordURL       string
	ArchiveDir      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Summary describes aggregated ledger counts per lifecycle state.
type Summary struct {
	Total      int
	Processing int
	Succeeded  int
	Failed     int
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status reflects a finished run.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}
