package pipeline

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Job is one captured voice note awaiting processing. The orchestrator owns
// the job and its audio file exclusively for the duration of the run.
type Job struct {
	EntryID    string
	UserID     string
	AudioPath  string
	CapturedAt time.Time
}

// NewEntryID generates the short random identifier used to namespace one
// job's local artifacts.
func NewEntryID() string {
	return uuid.NewString()[:8]
}

// Validate reports whether the job carries everything a run needs.
func (j Job) Validate() error {
	if strings.TrimSpace(j.EntryID) == "" {
		return errors.New("job entry id required")
	}
	if strings.TrimSpace(j.AudioPath) == "" {
		return errors.New("job audio path required")
	}
	if j.CapturedAt.IsZero() {
		return errors.New("job capture instant required")
	}
	return nil
}
