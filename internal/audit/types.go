package audit

import (
	"errors"
	"regexp"
	"strings"
)

// SigninEvent records one authentication attempt, successful or not.
// Timestamp is epoch seconds assigned by the server.
type SigninEvent struct {
	Timestamp int64  `json:"timestamp"`
	Email     string `json:"email"`
	IP        string `json:"ip"`
	Success   bool   `json:"success"`
}

// LockEvent records one device-reported state change. Timestamp is the
// device clock in epoch seconds; Status carries the lock polarity the
// device settled on.
type LockEvent struct {
	Timestamp int64  `json:"timestamp"`
	IP        string `json:"ip"`
	Status    int    `json:"status"`
}

// Range pages through an event log. Offset counts from the oldest
// entry; a negative Limit returns everything from Offset onward and a
// zero Limit returns nothing.
type Range struct {
	Offset int
	Limit  int
}

// bounds converts a Range to ZRANGE start/stop indexes. A stop of -1
// means the end of the set.
func (r Range) bounds() (int64, int64) {
	offset := r.Offset
	if offset < 0 {
		offset = 0
	}
	if r.Limit < 0 {
		return int64(offset), -1
	}
	return int64(offset), int64(offset + r.Limit - 1)
}

var (
	// ErrInvalidTimestamp means a device callback carried a timestamp
	// that is not thirteen digits of epoch milliseconds.
	ErrInvalidTimestamp = errors.New("audit: invalid timestamp")

	// ErrInvalidStatus means a device callback carried a status other
	// than 0 or 1.
	ErrInvalidStatus = errors.New("audit: invalid status")
)

// Device firmware reports wall time as a decimal millisecond string.
var millisPattern = regexp.MustCompile(`^\d{13}$`)

// normalizeIP strips the IPv4-mapped IPv6 prefix some stacks report
// for plain IPv4 peers.
func normalizeIP(ip string) string {
	return strings.TrimPrefix(ip, "::ffff:")
}
