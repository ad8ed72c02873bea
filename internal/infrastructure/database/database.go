package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hospilock/hospilock-api/internal/infrastructure/config"
)

// connectionTimeout is the timeout for verifying store connectivity at startup.
const connectionTimeout = 5 * time.Second

// Store wraps the Redis clients backing the Hospilock API.
//
// Accounts and locks live in one logical database, the audit log in another.
// Both clients share a server and credentials; only the database index
// differs.
type Store struct {
	// Accounts holds user:{email}, admin:{email} and lock:{id} hashes plus
	// the lock id counter.
	Accounts *redis.Client

	// Audit holds the timestamp-scored sign-in and lock event sets.
	Audit *redis.Client
}

// Open connects to Redis and verifies both logical databases with a ping.
func Open(ctx context.Context, cfg config.RedisConfig) (*Store, error) {
	accounts := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.AccountsDB,
	})
	audit := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.AuditDB,
	})

	s := &Store{Accounts: accounts, Audit: audit}

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if err := s.HealthCheck(pingCtx); err != nil {
		s.Close() //nolint:errcheck // best effort cleanup on error path
		return nil, fmt.Errorf("verifying store connection: %w", err)
	}

	return s, nil
}

// HealthCheck verifies both logical databases respond to a ping.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.Accounts.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("accounts store: %w", err)
	}
	if err := s.Audit.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("audit store: %w", err)
	}
	return nil
}

// Close closes both client connections.
func (s *Store) Close() error {
	var firstErr error
	if err := s.Accounts.Close(); err != nil {
		firstErr = fmt.Errorf("closing accounts client: %w", err)
	}
	if err := s.Audit.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing audit client: %w", err)
	}
	return firstErr
}
