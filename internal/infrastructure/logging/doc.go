// Package logging provides structured logging for the Hospilock API.
//
// It wraps log/slog with level parsing, JSON/text output selection, and
// default service/version attributes on every record. Sign-in attempts and
// lock commands also go to the audit log; this package is for operational
// logging only and must never receive password material.
package logging
