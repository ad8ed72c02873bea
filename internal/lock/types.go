package lock

import "errors"

// Lock status values as stored on the device record. Devices report the
// same values in their callback payloads.
const (
	// StatusLocked means the bolt is engaged.
	StatusLocked = 0
	// StatusUnlocked means the bolt is retracted.
	StatusUnlocked = 1
)

// Command is a physical action requested of a lock device.
type Command string

const (
	CommandLock   Command = "lock"
	CommandUnlock Command = "unlock"
)

// Lock is a registered door controller. ID is allocated from a
// monotonic counter and never reused. OwnerEmail is empty while the
// lock is unassigned.
type Lock struct {
	ID         int    `json:"id"`
	IP         string `json:"ip"`
	Status     int    `json:"status"`
	OwnerEmail string `json:"email,omitempty"`
}

// Locked reports whether the bolt is currently engaged.
func (l *Lock) Locked() bool { return l.Status == StatusLocked }

var (
	// ErrLockNotFound means no lock record exists for the given id.
	ErrLockNotFound = errors.New("lock: not found")

	// ErrNoLock means the account exists but has no lock assigned.
	ErrNoLock = errors.New("lock: account has no lock")

	// ErrLockOwned means the lock is already assigned to another account.
	ErrLockOwned = errors.New("lock: already assigned")

	// ErrUserHasLock means the account already owns a different lock.
	ErrUserHasLock = errors.New("lock: account already has a lock")

	// ErrInvalidIP means the registration payload carried an unusable address.
	ErrInvalidIP = errors.New("lock: invalid device address")

	// ErrDeviceUnavailable means the device did not acknowledge a command.
	ErrDeviceUnavailable = errors.New("lock: device unavailable")
)
