// Package audit keeps append-only event logs for signin attempts and
// device-reported lock transitions.
//
// Events live in Redis sorted sets in a database separate from account
// and lock state. The score is the event's epoch-second timestamp, so
// a plain ZRANGE reads history in order. Signin timestamps come from
// the server clock; lock event timestamps come from device firmware as
// millisecond strings and are validated and truncated to seconds
// before storage.
package audit
