package auth

import (
	"context"
	"fmt"
	"time"
)

// Service authenticates accounts and issues session tokens.
//
// It deliberately keeps unknown-account and wrong-password outcomes
// distinguishable (the audit trail and dashboard need them apart) while the
// HTTP layer returns a generic message body for both.
type Service struct {
	accounts AccountRepository
	secret   string
	userTTL  time.Duration
	adminTTL time.Duration
}

// NewService creates an authentication service.
func NewService(accounts AccountRepository, secret string, userTTL, adminTTL time.Duration) *Service {
	return &Service{
		accounts: accounts,
		secret:   secret,
		userTTL:  userTTL,
		adminTTL: adminTTL,
	}
}

// Authenticate verifies an email/password pair against the role's namespace.
//
// Returns ErrMissingFields or ErrInvalidEmail before any store access,
// ErrAccountNotFound for an unknown email, and ErrInvalidCredentials for a
// password mismatch. The stored hash never leaves this function.
func (s *Service) Authenticate(ctx context.Context, email, password string, role Role) (*Account, error) {
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	email = NormalizeEmail(email)
	if !IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !IsValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrForbidden, role)
	}

	account, err := s.accounts.GetByEmail(ctx, role, email)
	if err != nil {
		return nil, err
	}

	if !VerifyPassword(account.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

// IssueToken signs a session token for an authenticated account.
// User tokens are short-lived; admin tokens last a dashboard shift.
func (s *Service) IssueToken(email string, role Role) (string, time.Time, error) {
	ttl := s.userTTL
	if role == RoleAdmin {
		ttl = s.adminTTL
	}
	return GenerateToken(email, role, s.secret, ttl)
}

// ParseToken validates a session token and returns its claims.
func (s *Service) ParseToken(token string) (*Claims, error) {
	return ParseToken(token, s.secret)
}
