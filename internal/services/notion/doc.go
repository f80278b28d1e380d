// Package notion wraps the Notion REST API calls used to persist journal
// entries. The client is a thin single-attempt wrapper: it creates a page in
// the configured database, appends overflow blocks in caller-sized batches,
// and reports failures as plain errors for the pipeline to classify.
package notion
