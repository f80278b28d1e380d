// Package preflight provides readiness checks for the external services
// and filesystem paths that Quill depends on.
//
// The daemon runs RunAll once at startup and refuses to come up while any
// check fails, so a bad credential or unwritable directory surfaces
// immediately instead of failing the first voice note.
package preflight
