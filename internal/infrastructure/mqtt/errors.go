package mqtt

import "errors"

var (
	// ErrConnectionFailed means the initial broker connection did not
	// complete.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrNotConnected means an operation was attempted while the broker
	// connection is down.
	ErrNotConnected = errors.New("mqtt: not connected")

	// ErrTimeout means a publish did not complete within its deadline.
	ErrTimeout = errors.New("mqtt: operation timed out")
)
