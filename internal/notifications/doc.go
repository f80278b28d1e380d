// Package notifications delivers journal pipeline events via ntfy.
//
// The default implementation publishes to the topic configured in config.toml
// and gracefully degrades to a no-op when notifications are disabled. Failure
// notifications carry only the short, fixed user-facing message for each
// failure category; diagnostic detail stays in logs and the catalog.
//
// Extend this package if you need alternative transports; pipeline code
// depends only on the simple Service interface.
package notifications
