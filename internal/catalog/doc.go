// Package catalog persists a ledger of processed voice note entries in
// SQLite. The ledger records each claimed entry and its terminal outcome so
// that operators can inspect recent activity and a restarted daemon can fail
// entries abandoned mid-run. It is bookkeeping only: it does not gate
// submission and performs no deduplication.
package catalog
