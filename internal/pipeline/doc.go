// Package pipeline drives one voice note through transcription, polishing,
// persistence, and local archival. Each job runs as a straight-line state
// machine with a single attempt per stage: any stage failure aborts the run
// with a classified outcome, and the source audio file is deleted exactly
// once on every terminal path.
package pipeline
