package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Hospilock API.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Redis    RedisConfig    `yaml:"redis"`
	Security SecurityConfig `yaml:"security"`
	Device   DeviceConfig   `yaml:"device"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// RedisConfig contains backing-store connection settings.
//
// Accounts and locks live in AccountsDB; the audit log lives in AuditDB.
// The split mirrors the dashboard's existing data layout and keeps SCAN
// over account keys from walking audit entries.
type RedisConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Password   string `yaml:"password"`
	AccountsDB int    `yaml:"accounts_db"`
	AuditDB    int    `yaml:"audit_db"`
}

// Addr returns the host:port address of the Redis server.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT        JWTConfig `yaml:"jwt"`
	BcryptCost int       `yaml:"bcrypt_cost"`
}

// JWTConfig contains session token settings.
//
// User tokens are short-lived; admin tokens are long-lived so dashboard
// sessions survive a working day. Both are TTL knobs in minutes.
type JWTConfig struct {
	Secret        string `yaml:"secret"`
	UserTokenTTL  int    `yaml:"user_token_ttl"`
	AdminTokenTTL int    `yaml:"admin_token_ttl"`
	SecureCookies bool   `yaml:"secure_cookies"`
}

// UserTTL returns the user token lifetime as a Duration.
func (j JWTConfig) UserTTL() time.Duration {
	return time.Duration(j.UserTokenTTL) * time.Minute
}

// AdminTTL returns the admin token lifetime as a Duration.
func (j JWTConfig) AdminTTL() time.Duration {
	return time.Duration(j.AdminTokenTTL) * time.Minute
}

// DeviceConfig contains outbound lock actuation settings.
type DeviceConfig struct {
	// Port is the TCP port the lock firmware listens on.
	Port int `yaml:"port"`

	// Timeout bounds the actuation HTTP call, in seconds. A timed-out
	// command is a failed command; the persisted lock status is not touched.
	Timeout int `yaml:"timeout"`
}

// TimeoutDuration returns the actuation timeout as a Duration.
func (d DeviceConfig) TimeoutDuration() time.Duration {
	return time.Duration(d.Timeout) * time.Second
}

// MQTTConfig contains optional event fanout settings.
type MQTTConfig struct {
	Enabled bool             `yaml:"enabled"`
	Broker  MQTTBrokerConfig `yaml:"broker"`
	Auth    MQTTAuthConfig   `yaml:"auth"`
	QoS     int              `yaml:"qos"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: HOSPILOCK_SECTION_KEY
// For example: HOSPILOCK_REDIS_HOST, HOSPILOCK_JWT_SECRET
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 3000,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Redis: RedisConfig{
			Host:       "localhost",
			Port:       6379,
			AccountsDB: 0,
			AuditDB:    1,
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				UserTokenTTL:  60,
				AdminTokenTTL: 720,
			},
		},
		Device: DeviceConfig{
			Port:    8080,
			Timeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "hospilock-api",
			},
			QoS: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HOSPILOCK_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// API
	if v := os.Getenv("HOSPILOCK_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("HOSPILOCK_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// Redis
	if v := os.Getenv("HOSPILOCK_REDIS_HOST"); v != "" {
		cfg.Redis.Host = v
	}
	if v := os.Getenv("HOSPILOCK_REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Redis.Port = port
		}
	}
	if v := os.Getenv("HOSPILOCK_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}

	// Security - JWT secret (IMPORTANT: always set in production)
	if v := os.Getenv("HOSPILOCK_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}

	// Device
	if v := os.Getenv("HOSPILOCK_DEVICE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Device.Port = port
		}
	}

	// MQTT
	if v := os.Getenv("HOSPILOCK_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HOSPILOCK_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HOSPILOCK_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
}

// Validate checks the configuration for errors and security issues.
func (c *Config) Validate() error {
	var errs []string

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Redis.Host == "" {
		errs = append(errs, "redis.host is required")
	}
	if c.Redis.AccountsDB == c.Redis.AuditDB {
		errs = append(errs, "redis.accounts_db and redis.audit_db must differ")
	}

	// Tokens signed with an empty or short secret can be forged, and a forged
	// token opens physical doors. Refuse to start rather than run weak.
	const minJWTSecretLength = 32
	if c.Security.JWT.Secret == "" {
		errs = append(errs, "security.jwt.secret is required (set HOSPILOCK_JWT_SECRET environment variable)")
	} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters")
	}

	if c.Device.Port < 1 || c.Device.Port > 65535 {
		errs = append(errs, "device.port must be between 1 and 65535")
	}
	if c.Device.Timeout <= 0 {
		errs = append(errs, "device.timeout must be positive")
	}

	if c.MQTT.Enabled && (c.MQTT.QoS < 0 || c.MQTT.QoS > 2) {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
