// Gatehouse Core - credential and session authority.
//
// This is the main entry point. It loads configuration, opens and migrates
// the SQLite store, wires the credential, token, and session services into
// the HTTP API, and connects the optional MQTT and InfluxDB event sinks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/gatehouse-core/migrations"

	"github.com/nerrad567/gatehouse-core/internal/api"
	"github.com/nerrad567/gatehouse-core/internal/audit"
	"github.com/nerrad567/gatehouse-core/internal/auth"
	"github.com/nerrad567/gatehouse-core/internal/clientinfo"
	"github.com/nerrad567/gatehouse-core/internal/infrastructure/config"
	"github.com/nerrad567/gatehouse-core/internal/infrastructure/database"
	"github.com/nerrad567/gatehouse-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/gatehouse-core/internal/infrastructure/logging"
	"github.com/nerrad567/gatehouse-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/gatehouse-core/internal/session"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
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

// run is the application body, separated from main for testability. It
// returns nil on a clean shutdown after ctx is cancelled.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Gatehouse Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	store := auth.NewStore(
		auth.NewUserRepository(db.DB),
		auth.NewPasswordHasher(cfg.Security.Password.BcryptCost),
	)
	tokens := auth.NewTokenService(cfg.Security.JWT.Secret, cfg.TokenTTL())

	if _, seedErr := auth.EnsureAdmin(ctx, store,
		cfg.Security.BootstrapAdmin.Username,
		cfg.Security.BootstrapAdmin.Password,
		log.Component("auth").Logger,
	); seedErr != nil {
		return fmt.Errorf("bootstrapping admin: %w", seedErr)
	}

	deps := api.Deps{
		Config:    cfg.API,
		Logger:    log.Component("api"),
		DB:        db.DB,
		Store:     store,
		Tokens:    tokens,
		Sessions:  session.NewSQLiteRepository(db.DB),
		AuditRepo: audit.NewSQLiteRepository(db.DB),
		Devices:   clientinfo.NewDeviceParser(),
		Version:   version,
	}

	if mqttClient := connectMQTT(cfg, log); mqttClient != nil {
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		deps.Events = mqttClient
	}

	if influxClient := connectInfluxDB(ctx, cfg, log); influxClient != nil {
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		deps.Telemetry = influxClient
	}

	server, err := api.New(deps)
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

	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: database: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal",
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("Gatehouse Core stopped")
	return nil
}

func getConfigPath() string {
	if path := os.Getenv("GATEHOUSE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// connectMQTT returns nil when MQTT is disabled or unreachable. Auth events
// are best-effort, so a broker outage never blocks startup.
func connectMQTT(cfg *config.Config, log *logging.Logger) *mqtt.Client {
	if !cfg.MQTT.Enabled {
		log.Info("MQTT disabled")
		return nil
	}

	client, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		log.Warn("MQTT unavailable, auth events will not be published", "error", err)
		return nil
	}
	client.SetLogger(log.Component("mqtt"))
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)
	return client
}

// connectInfluxDB returns nil when InfluxDB is disabled or unreachable.
func connectInfluxDB(ctx context.Context, cfg *config.Config, log *logging.Logger) *influxdb.Client {
	if !cfg.InfluxDB.Enabled {
		log.Info("InfluxDB disabled")
		return nil
	}

	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
	if err != nil {
		log.Warn("InfluxDB unavailable, login telemetry disabled", "error", err)
		return nil
	}
	influxLog := log.Component("influxdb")
	client.SetOnError(func(err error) {
		influxLog.Error("InfluxDB write error", "error", err)
	})
	log.Info("InfluxDB connected",
		"url", cfg.InfluxDB.URL,
		"org", cfg.InfluxDB.Org,
		"bucket", cfg.InfluxDB.Bucket,
	)
	return client
}
