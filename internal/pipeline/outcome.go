package pipeline

import (
	"errors"

	"quill/internal/services"
)

// FailureCategory classifies a failed run by the stage that broke.
type FailureCategory string

const (
	FailureTranscription FailureCategory = "transcription"
	FailurePolishing     FailureCategory = "polishing"
	FailurePersistence   FailureCategory = "persistence"
	FailureArchive       FailureCategory = "archive"
	FailureInternal      FailureCategory = "internal"
)

// Fixed user-facing messages per failure category. Diagnostic detail never
// reaches the end user; it stays in the outcome error and the logs.
const (
	MessageTranscriptionFailed = "Sorry, I couldn't transcribe your voice note. Please try again."
	MessagePolishingFailed     = "Sorry, I couldn't tidy up your transcript. Please try again."
	MessagePersistenceFailed   = "Sorry, I couldn't save your journal entry. Please try again."
	MessageArchiveFailed       = "Your entry was saved, but the local backup failed."
	MessageGenericFailed       = "Sorry, something went wrong while processing your voice note."
)

// Outcome is the terminal value of one run. Succeeded carries the remote
// record URL; failures carry a category, a fixed user message, and the
// underlying error. RecordID and RecordURL stay populated on failures that
// happen after the remote record was created, so partial persistence is
// visible to callers.
type Outcome struct {
	EntryID     string
	UserID      string
	Title       string
	Succeeded   bool
	RecordID    string
	RecordURL   string
	ArchiveDir  string
	Category    FailureCategory
	UserMessage string
	Err         error
}

// Classify maps a wrapped stage error to its failure category. Errors that
// carry no known marker fall through to FailureInternal.
func Classify(err error) FailureCategory {
	switch {
	case errors.Is(err, services.ErrTranscription):
		return FailureTranscription
	case errors.Is(err, services.ErrPolishing):
		return FailurePolishing
	case errors.Is(err, services.ErrPersistence):
		return FailurePersistence
	case errors.Is(err, services.ErrArchive):
		return FailureArchive
	default:
		return FailureInternal
	}
}

// UserMessage returns the fixed end-user message for a failure category.
func UserMessage(category FailureCategory) string {
	switch category {
	case FailureTranscription:
		return MessageTranscriptionFailed
	case FailurePolishing:
		return MessagePolishingFailed
	case FailurePersistence:
		return MessagePersistenceFailed
	case FailureArchive:
		return MessageArchiveFailed
	default:
		return MessageGenericFailed
	}
}
