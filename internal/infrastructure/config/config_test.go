package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
api:
  host: "127.0.0.1"
  port: 3000
redis:
  host: "redis"
  port: 6379
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
device:
  port: 8080
  timeout: 5
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.Redis.Addr() != "redis:6379" {
		t.Errorf("Redis.Addr() = %q, want %q", cfg.Redis.Addr(), "redis:6379")
	}
	if cfg.Device.Port != 8080 {
		t.Errorf("Device.Port = %d, want 8080", cfg.Device.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	content := `
redis:
  host: "localhost"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected error for missing JWT secret, got nil")
	}
	if !strings.Contains(err.Error(), "jwt.secret") {
		t.Errorf("error = %v, want mention of jwt.secret", err)
	}
}

func TestLoad_ShortJWTSecret(t *testing.T) {
	content := `
security:
  jwt:
    secret: "too-short"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected error for short JWT secret, got nil")
	}
}

func TestLoad_SameRedisDBs(t *testing.T) {
	content := `
redis:
  audit_db: 0
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected error for overlapping redis databases, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	t.Setenv("HOSPILOCK_REDIS_HOST", "redis.internal")
	t.Setenv("HOSPILOCK_API_PORT", "4000")

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Redis.Host != "redis.internal" {
		t.Errorf("Redis.Host = %q, want %q", cfg.Redis.Host, "redis.internal")
	}
	if cfg.API.Port != 4000 {
		t.Errorf("API.Port = %d, want 4000", cfg.API.Port)
	}
}

func TestDefaults(t *testing.T) {
	content := `
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Security.JWT.UserTokenTTL != 60 {
		t.Errorf("UserTokenTTL = %d, want 60", cfg.Security.JWT.UserTokenTTL)
	}
	if cfg.Security.JWT.AdminTokenTTL != 720 {
		t.Errorf("AdminTokenTTL = %d, want 720", cfg.Security.JWT.AdminTokenTTL)
	}
	if cfg.Device.Timeout != 5 {
		t.Errorf("Device.Timeout = %d, want 5", cfg.Device.Timeout)
	}
	if cfg.Redis.AccountsDB != 0 || cfg.Redis.AuditDB != 1 {
		t.Errorf("Redis DBs = %d/%d, want 0/1", cfg.Redis.AccountsDB, cfg.Redis.AuditDB)
	}
}
