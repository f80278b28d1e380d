// Package daemon coordinates the long-running Quill process.
//
// It wires configuration, the catalog, the dispatcher, and the inbox watcher
// into a single lifecycle with flock-based locking to prevent multiple
// instances. Startup runs preflight checks and recovers entries a previous
// run left in flight; shutdown halts intake first and then waits for
// in-flight pipeline runs to finish.
//
// Keep orchestration logic here: pipeline stages live in their own packages
// while the daemon focuses on startup, shutdown, and high level coordination.
package daemon
