//go:build integration

package database

import (
	"context"
	"testing"

	"github.com/hospilock/hospilock-api/internal/infrastructure/config"
)

// Integration tests require a running Redis server at 127.0.0.1:6379.
//
// Run with:
//   go test -tags=integration ./internal/infrastructure/database/...

func TestOpenAndHealthCheck(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.RedisConfig{
		Host:       "127.0.0.1",
		Port:       6379,
		AccountsDB: 14,
		AuditDB:    15,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestOpen_Unreachable(t *testing.T) {
	_, err := Open(context.Background(), config.RedisConfig{
		Host: "127.0.0.1",
		Port: 1, // nothing listens here
	})
	if err == nil {
		t.Fatal("Open() expected error for unreachable server, got nil")
	}
}
