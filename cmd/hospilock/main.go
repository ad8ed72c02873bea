// Hospilock API - smart lock management backend
//
// This is the main entry point for the Hospilock API service. It manages
// resident and admin accounts, registers networked door controllers,
// dispatches lock and unlock commands to them, and keeps an audit trail
// of signins and device state changes.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hospilock/hospilock-api/internal/api"
	"github.com/hospilock/hospilock-api/internal/audit"
	"github.com/hospilock/hospilock-api/internal/auth"
	"github.com/hospilock/hospilock-api/internal/infrastructure/config"
	"github.com/hospilock/hospilock-api/internal/infrastructure/database"
	"github.com/hospilock/hospilock-api/internal/infrastructure/logging"
	"github.com/hospilock/hospilock-api/internal/infrastructure/mqtt"
	"github.com/hospilock/hospilock-api/internal/lock"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main so exit
// codes are handled in one place.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Hospilock API", "version", version, "commit", commit)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Connect to the backing store
	store, err := database.Open(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		log.Info("closing store")
		if closeErr := store.Close(); closeErr != nil {
			log.Error("error closing store", "error", closeErr)
		}
	}()
	log.Info("store connected",
		"addr", cfg.Redis.Addr(),
		"accounts_db", cfg.Redis.AccountsDB,
		"audit_db", cfg.Redis.AuditDB,
	)

	// Repositories and domain services
	accounts := auth.NewAccountRepository(store.Accounts)
	authSvc := auth.NewService(accounts, cfg.Security.JWT.Secret,
		cfg.Security.JWT.UserTTL(), cfg.Security.JWT.AdminTTL())
	locks := lock.NewRegistry(store.Accounts)
	auditRepo := audit.NewRepository(store.Audit)

	// Optional MQTT fanout
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// WebSocket hub is created here so the dispatcher can broadcast
	// confirmed state changes to it.
	hub := api.NewHub(log)
	go hub.Run(ctx)

	sinks := []lock.EventSink{&hubSink{hub: hub}}
	if mqttClient != nil {
		sinks = append(sinks, &mqttSink{client: mqttClient, logger: log})
	}

	dispatcher := lock.NewDispatcher(locks, cfg.Device.Port,
		cfg.Device.TimeoutDuration(), log, sinks...)

	// API server
	server, err := api.New(api.Deps{
		Config:     cfg.API,
		Security:   cfg.Security,
		Logger:     log,
		Auth:       authSvc,
		Accounts:   accounts,
		Locks:      locks,
		Dispatcher: dispatcher,
		Audit:      auditRepo,
		MQTT:       mqttClient,
		Hub:        hub,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, store, server, mqttClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HOSPILOCK_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HOSPILOCK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheckTimeout bounds the startup health sweep.
const healthCheckTimeout = 10 * time.Second

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, store *database.Store, server *api.Server, mqttClient *mqtt.Client) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := store.HealthCheck(ctx); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	return nil
}

// hubSink broadcasts confirmed lock transitions to WebSocket clients.
type hubSink struct {
	hub *api.Hub
}

func (s *hubSink) LockStateChanged(change lock.StateChange) {
	s.hub.Broadcast("lock.state_changed", change)
}

// mqttSink publishes confirmed lock transitions to the broker.
type mqttSink struct {
	client *mqtt.Client
	logger *logging.Logger
}

func (s *mqttSink) LockStateChanged(change lock.StateChange) {
	payload, err := json.Marshal(change)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Publish(ctx, mqtt.LockStateTopic(change.LockID), payload); err != nil {
		s.logger.Warn("publishing state change", "error", err)
	}
}
