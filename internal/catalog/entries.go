package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const entryColumns = "id, entry_id, user_id, audio_path, captured_at, status, failure_category, error_message, record_id, record_url, archive_dir, created_at, updated_at"

// Claim records a freshly submitted voice note in the processing state.
func (s *Store) Claim(ctx context.Context, entryID, userID, audioPath string, capturedAt time.Time) (*Entry, error) {
	entryID = strings.TrimSpace(entryID)
	if entryID == "" {
		return nil, errors.New("entry id required")
	}
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO entries (
            entry_id, user_id, audio_path, captured_at, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entryID,
		userID,
		audioPath,
		capturedAt.UTC().Format(time.RFC3339Nano),
		StatusProcessing,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// SourceSeen reports whether a voice note at audioPath has already been
// claimed. The inbox watcher uses it to skip files that belong to an entry
// from this or an earlier run.
func (s *Store) SourceSeen(ctx context.Context, audioPath string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM entries WHERE audio_path = ?`,
		audioPath,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check source path: %w", err)
	}
	return count > 0, nil
}

// MarkSucceeded records a successful run with its remote record and archive location.
func (s *Store) MarkSucceeded(ctx context.Context, entryID, recordID, recordURL, archiveDir string) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE entries
         SET status = ?, record_id = ?, record_url = ?, archive_dir = ?,
             failure_category = NULL, error_message = NULL, updated_at = ?
         WHERE entry_id = ?`,
		StatusSucceeded,
		nullableString(recordID),
		nullableString(recordURL),
		nullableString(archiveDir),
		time.Now().UTC().Format(time.RFC3339Nano),
		entryID,
	); err != nil {
		return fmt.Errorf("mark succeeded: %w", err)
	}
	return nil
}

// MarkFailed records a failed run with its category and diagnostic message.
// RecordID and recordURL are kept when the failure happened after the remote
// record was created, so partial persistence stays visible in the ledger.
func (s *Store) MarkFailed(ctx context.Context, entryID, category, message, recordID, recordURL string) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE entries
         SET status = ?, failure_category = ?, error_message = ?,
             record_id = ?, record_url = ?, updated_at = ?
         WHERE entry_id = ?`,
		StatusFailed,
		nullableString(category),
		nullableString(message),
		nullableString(recordID),
		nullableString(recordURL),
		time.Now().UTC().Format(time.RFC3339Nano),
		entryID,
	); err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// GetByID fetches a ledger entry by row identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// GetByEntryID fetches a ledger entry by its pipeline identifier.
func (s *Store) GetByEntryID(ctx context.Context, entryID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE entry_id = ?`, entryID)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry by entry id: %w", err)
	}
	return entry, nil
}

// Recent returns the most recently updated entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+entryColumns+` FROM entries ORDER BY updated_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Stats returns aggregated counts per lifecycle state.
func (s *Store) Stats(ctx context.Context) (Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM entries GROUP BY status`)
	if err != nil {
		return Summary{}, fmt.Errorf("catalog stats: %w", err)
	}
	defer rows.Close()

	summary := Summary{}
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Summary{}, err
		}
		summary.Total += count
		switch status {
		case StatusProcessing:
			summary.Processing += count
		case StatusSucceeded:
			summary.Succeeded += count
		case StatusFailed:
			summary.Failed += count
		}
	}
	return summary, rows.Err()
}

// FailAbandoned marks entries left in the processing state as failed. A
// restarted daemon calls this before accepting new work.
func (s *Store) FailAbandoned(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE entries
         SET status = ?, error_message = ?, updated_at = ?
         WHERE status = ?`,
		StatusFailed,
		RestartFailureMessage,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("fail abandoned entries: %w", err)
	}
	return res.RowsAffected()
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		id              int64
		entryID         string
		userID          sql.NullString
		audioPath       sql.NullString
		capturedRaw     sql.NullString
		statusStr       string
		failureCategory sql.NullString
		errorMessage    sql.NullString
		recordID        sql.NullString
		recordURL       sql.NullString
		archiveDir      sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&entryID,
		&userID,
		&audioPath,
		&capturedRaw,
		&statusStr,
		&failureCategory,
		&errorMessage,
		&recordID,
		&recordURL,
		&archiveDir,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:              id,
		EntryID:         entryID,
		UserID:          userID.String,
		AudioPath:       audioPath.String,
		Status:          Status(statusStr),
		FailureCategory: failureCategory.String,
		ErrorMessage:    errorMessage.String,
		RecordID:        recordID.String,
		RecordURL:       recordURL.String,
		ArchiveDir:      archiveDir.String,
	}

	if captured, err := parseTimeString(capturedRaw.String); err == nil {
		entry.CapturedAt = captured
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		entry.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		entry.UpdatedAt = updated
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
