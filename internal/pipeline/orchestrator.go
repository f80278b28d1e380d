package pipeline

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"quill/internal/archive"
	"quill/internal/journaldate"
	"quill/internal/logging"
	"quill/internal/services"
	"quill/internal/services/notion"
	"quill/internal/services/openai"
	"quill/internal/textchunk"
)

// Transcriber converts an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Polisher rewrites a raw transcript into clean prose plus a short title.
type Polisher interface {
	PolishTranscript(ctx context.Context, transcript string) (openai.PolishedResult, error)
}

// Store persists journal records remotely.
type Store interface {
	CreateEntry(ctx context.Context, entry notion.Entry) (notion.Record, error)
	AppendBlocks(ctx context.Context, recordID string, blocks []notion.Block) error
}

// Archiver writes the local artifact bundle for an entry.
type Archiver interface {
	Archive(ctx context.Context, bundle archive.Bundle) (string, error)
}

// Orchestrator sequences the stages of one journal entry run.
type Orchestrator struct {
	transcriber Transcriber
	polisher    Polisher
	store       Store
	archiver    Archiver
	resolver    *journaldate.Resolver
	logger      *slog.Logger

	chunkLimit int
	batchSize  int
}

// OrchestratorOption customizes orchestrator limits.
type OrchestratorOption func(*Orchestrator)

// WithChunkLimit overrides the per-field chunk ceiling (used in tests).
func WithChunkLimit(limit int) OrchestratorOption {
	return func(o *Orchestrator) {
		if limit > 0 {
			o.chunkLimit = limit
		}
	}
}

// WithAppendBatchSize overrides the append batch ceiling (used in tests).
func WithAppendBatchSize(size int) OrchestratorOption {
	return func(o *Orchestrator) {
		if size > 0 {
			o.batchSize = size
		}
	}
}

// NewOrchestrator wires the orchestrator with its collaborators.
func NewOrchestrator(
	resolver *journaldate.Resolver,
	transcriber Transcriber,
	polisher Polisher,
	store Store,
	archiver Archiver,
	logger *slog.Logger,
	opts ...OrchestratorOption,
) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	o := &Orchestrator{
		transcriber: transcriber,
		polisher:    polisher,
		store:       store,
		archiver:    archiver,
		resolver:    resolver,
		logger:      logger.With(logging.String(logging.FieldComponent, "pipeline")),
		chunkLimit:  notion.MaxRichTextChars,
		batchSize:   notion.AppendBatchSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run processes one job to a terminal outcome. The audio file is removed on
// every exit path, including failures in the middle of persistence.
func (o *Orchestrator) Run(ctx context.Context, job Job) Outcome {
	ctx = services.WithEntryID(ctx, job.EntryID)
	logger := logging.WithContext(ctx, o.logger).With(logging.String("user_id", job.UserID))

	defer o.releaseAudio(logger, job.AudioPath)

	if err := job.Validate(); err != nil {
		return o.fail(logger, job, notion.Record{},
			services.Wrap(services.ErrValidation, "pipeline", "validate job", "Job is missing required fields", err))
	}

	runStarted := time.Now()
	logger.Info("pipeline run started", logging.String("audio_path", job.AudioPath))

	// Transcribing
	stageStarted := time.Now()
	transcript, err := o.transcriber.Transcribe(services.WithStage(ctx, "transcribing"), job.AudioPath)
	if err != nil {
		return o.fail(logger, job, notion.Record{},
			services.Wrap(services.ErrTranscription, "transcribing", "transcribe audio", "Transcription backend failed", err))
	}
	if strings.TrimSpace(transcript) == "" {
		return o.fail(logger, job, notion.Record{},
			services.Wrap(services.ErrTranscription, "transcribing", "validate transcript", "Transcription produced no text", nil))
	}
	logger.Info("transcription completed",
		logging.Int("transcript_chars", len(transcript)),
		logging.Duration("elapsed", time.Since(stageStarted)))

	// Polishing
	stageStarted = time.Now()
	polished, err := o.polisher.PolishTranscript(services.WithStage(ctx, "polishing"), transcript)
	if err != nil {
		return o.fail(logger, job, notion.Record{},
			services.Wrap(services.ErrPolishing, "polishing", "polish transcript", "Polish backend failed", err))
	}
	polished.PolishedText = strings.TrimSpace(polished.PolishedText)
	if polished.PolishedText == "" {
		return o.fail(logger, job, notion.Record{},
			services.Wrap(services.ErrPolishing, "polishing", "validate result", "Polish backend returned an empty entry", nil))
	}
	title := strings.TrimSpace(polished.Title)
	if title == "" {
		title = openai.TitleFallback
	}
	logger.Info("polish completed",
		logging.String("title", title),
		logging.Duration("elapsed", time.Since(stageStarted)))

	// Persisting: create the primary record from the chunk heads.
	date := o.resolver.Resolve(job.CapturedAt)
	polishedChunks, err := textchunk.Chunk(polished.PolishedText, o.chunkLimit)
	if err != nil {
		return o.fail(logger, job, notion.Record{},
			services.Wrap(services.ErrValidation, "persisting", "chunk polished text", "Invalid chunk limit", err))
	}
	rawChunks, err := textchunk.Chunk(transcript, o.chunkLimit)
	if err != nil {
		return o.fail(logger, job, notion.Record{},
			services.Wrap(services.ErrValidation, "persisting", "chunk raw transcript", "Invalid chunk limit", err))
	}

	persistCtx := services.WithStage(ctx, "persisting")
	stageStarted = time.Now()
	record, err := o.store.CreateEntry(persistCtx, notion.Entry{
		Title:         title,
		Date:          date.String(),
		FirstChunk:    firstChunk(polishedChunks),
		FirstRawChunk: firstChunk(rawChunks),
	})
	if err != nil {
		return o.fail(logger, job, notion.Record{},
			services.Wrap(services.ErrPersistence, "persisting", "create record", "Failed to create journal record", err))
	}
	logger.Info("journal record created",
		logging.String("record_id", record.ID),
		logging.String("logical_date", date.String()),
		logging.Duration("elapsed", time.Since(stageStarted)))

	// Persisting: append overflow in bounded batches. A failed batch leaves
	// the created record in place; the truncation is surfaced, not hidden.
	blocks := overflowBlocks(restChunks(polishedChunks), restChunks(rawChunks))
	for start := 0; start < len(blocks); start += o.batchSize {
		end := min(start+o.batchSize, len(blocks))
		if err := o.store.AppendBlocks(persistCtx, record.ID, blocks[start:end]); err != nil {
			return o.fail(logger, job, record,
				services.Wrap(services.ErrPersistence, "persisting", "append overflow blocks", "Failed to append overflow blocks; the journal record may be truncated", err))
		}
	}
	if len(blocks) > 0 {
		logger.Info("overflow blocks appended", logging.Int("blocks", len(blocks)))
	}

	// Archiving
	stageStarted = time.Now()
	dir, err := o.archiver.Archive(services.WithStage(ctx, "archiving"), archive.Bundle{
		EntryID:       job.EntryID,
		CapturedAt:    job.CapturedAt,
		LogicalDate:   date.String(),
		Title:         title,
		PolishedText:  polished.PolishedText,
		RawTranscript: transcript,
		RecordID:      record.ID,
		RecordURL:     record.URL,
	})
	if err != nil {
		return o.fail(logger, job, record,
			services.Wrap(services.ErrArchive, "archiving", "write bundle", "Failed to write local archive bundle", err))
	}

	logger.Info("pipeline run succeeded",
		logging.String("record_url", record.URL),
		logging.String("archive_dir", dir),
		logging.Duration("elapsed", time.Since(runStarted)))

	return Outcome{
		EntryID:    job.EntryID,
		UserID:     job.UserID,
		Title:      title,
		Succeeded:  true,
		RecordID:   record.ID,
		RecordURL:  record.URL,
		ArchiveDir: dir,
	}
}

func (o *Orchestrator) fail(logger *slog.Logger, job Job, record notion.Record, err error) Outcome {
	category := Classify(err)
	logger.Error("pipeline run failed",
		logging.String("category", string(category)),
		logging.Error(err))
	return Outcome{
		EntryID:     job.EntryID,
		UserID:      job.UserID,
		Category:    category,
		UserMessage: UserMessage(category),
		RecordID:    record.ID,
		RecordURL:   record.URL,
		Err:         err,
	}
}

func (o *Orchestrator) releaseAudio(logger *slog.Logger, path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	if err := os.Remove(path); err != nil {
		logger.Warn("failed to delete audio file",
			logging.String("audio_path", path),
			logging.Error(err))
		return
	}
	logger.Debug("audio file deleted", logging.String("audio_path", path))
}

func firstChunk(chunks []string) string {
	if len(chunks) == 0 {
		return ""
	}
	return chunks[0]
}

func restChunks(chunks []string) []string {
	if len(chunks) <= 1 {
		return nil
	}
	return chunks[1:]
}

// overflowBlocks lays out the append payload: remaining polished chunks as
// paragraphs, then a labeled continuation section for remaining raw chunks.
func overflowBlocks(polishedRest, rawRest []string) []notion.Block {
	if len(polishedRest) == 0 && len(rawRest) == 0 {
		return nil
	}
	blocks := make([]notion.Block, 0, len(polishedRest)+len(rawRest)+1)
	for _, chunk := range polishedRest {
		blocks = append(blocks, notion.ParagraphBlock(chunk))
	}
	if len(rawRest) > 0 {
		blocks = append(blocks, notion.HeadingBlock(notion.RawContinuationHeading))
		for _, chunk := range rawRest {
			blocks = append(blocks, notion.ParagraphBlock(chunk))
		}
	}
	return blocks
}
