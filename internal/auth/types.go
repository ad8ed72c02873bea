package auth

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// emailPattern is the account email format accepted at every boundary.
// It matches the validation the dashboard and lock firmware already apply.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail lowercases an email address. Every read and write path
// normalizes first, so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail checks if an email address meets format requirements.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Role represents an authorisation tier. Users and admins are distinct
// identity namespaces: the same email may exist as both, independently.
type Role string

const (
	// RoleUser is a resident account that may own exactly one lock.
	RoleUser Role = "user"

	// RoleAdmin is a dashboard operator: registers locks, assigns owners,
	// reads the audit log. Admins own no locks themselves.
	RoleAdmin Role = "admin"
)

// IsValidRole returns true if the role is a known account role.
func IsValidRole(r Role) bool {
	return r == RoleUser || r == RoleAdmin
}

// Key returns the store key for an account: "user:{email}" or "admin:{email}".
func Key(role Role, email string) string {
	return string(role) + ":" + NormalizeEmail(email)
}

// FieldLockID is the account hash field holding the owned lock id.
// The lock registry writes it inside the ownership transaction.
const FieldLockID = "lock_id"

// Account represents a user or admin credential record.
type Account struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialised
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
	Role         Role      `json:"role"`

	// LockID is the id of the lock this account owns, 0 when none.
	// Meaningful for users only.
	LockID int `json:"lock_id,omitempty"`
}

// Sentinel errors for auth operations.
var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidEmail       = errors.New("not a valid email")
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountNotFound    = errors.New("no registered account with that email")
	ErrInvalidCredentials = errors.New("invalid password")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrForbidden          = errors.New("insufficient permissions")
)
