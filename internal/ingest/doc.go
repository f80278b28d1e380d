// Package ingest watches the inbox directory for captured voice notes.
//
// Capture filenames encode the author, a capture-unique identifier, and the
// capture instant. The watcher claims each new file in the catalog exactly
// once, then hands it to the dispatcher; files already claimed by this run or
// an earlier one are skipped, so a restart never replays audio.
package ingest
