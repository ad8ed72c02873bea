// Package lock manages door controller records and command dispatch.
//
// Lock records live in Redis hashes keyed "lock:{id}", with ids
// allocated from a single INCR counter. Assignment is one lock per
// user: the lock hash carries the owner email and the user hash carries
// the lock id, and the registry writes both sides in a MULTI/EXEC
// transaction so they cannot drift apart.
//
// The dispatcher talks to controllers over their local HTTP interface.
// Stored status only changes after a device acknowledges a command, so
// the record reflects the last confirmed physical state rather than the
// last attempt.
package lock
