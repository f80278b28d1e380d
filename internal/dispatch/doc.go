// Package dispatch fans submitted jobs out to a bounded worker pool.
//
// The pool size is the only concurrency throttle in the system: Submit blocks
// while every worker is busy, which in turn pauses inbox intake. Each worker
// runs one job to its terminal outcome, then records that outcome in the
// catalog and notifies the user. Shutdown stops intake and waits for in-flight
// runs; it never cancels one mid-flight.
package dispatch
