// SmartThings MQTT Bridge
//
// This is the main entry point for the bridge daemon. It mirrors
// SmartThings device state onto an MQTT broker, synthesizes Home Assistant
// auto-discovery documents, and routes MQTT commands back to the
// SmartThings cloud API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/smartthings-community/smartthings-mqtt-bridge/internal/audit"
	"github.com/smartthings-community/smartthings-mqtt-bridge/internal/bridge"
	"github.com/smartthings-community/smartthings-mqtt-bridge/internal/infrastructure/config"
	"github.com/smartthings-community/smartthings-mqtt-bridge/internal/infrastructure/database"
	"github.com/smartthings-community/smartthings-mqtt-bridge/internal/infrastructure/influxdb"
	"github.com/smartthings-community/smartthings-mqtt-bridge/internal/infrastructure/logging"
	"github.com/smartthings-community/smartthings-mqtt-bridge/internal/infrastructure/mqtt"
	"github.com/smartthings-community/smartthings-mqtt-bridge/internal/smartthings"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
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

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting SmartThings MQTT bridge",
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

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the command audit database (optional)
	var auditRepo audit.Repository
	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.Open(database.Config{
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

		if migrateErr := db.Migrate(ctx); migrateErr != nil {
			return fmt.Errorf("applying database schema: %w", migrateErr)
		}
		auditRepo = audit.NewSQLiteRepository(db.DB)
		log.Info("command audit log enabled", "path", cfg.Database.Path)
	} else {
		log.Info("command audit log disabled")
	}

	// Validate SmartThings API access before touching the broker. A bad
	// token should fail fast, not surface as an empty device list later.
	stClient := smartthings.NewClient(cfg.SmartThings)
	devices, err := stClient.ListDevices(ctx)
	if err != nil {
		return fmt.Errorf("validating SmartThings API access: %w", err)
	}
	log.Info("SmartThings API validated", "devices", len(devices))

	// Connect to the MQTT broker, with the bridge status topic as the
	// connection's last-will so consumers can tell an orderly stop from a
	// connection loss.
	statusTopics := bridge.NewTopics(cfg.Bridge.TopicPrefix, cfg.Bridge.Discovery.Prefix)
	mqttClient, err := mqtt.Connect(cfg.MQTT, mqtt.StatusConfig{
		Topic:   statusTopics.BridgeStatus(),
		Online:  bridge.AvailabilityOnline,
		Offline: bridge.AvailabilityOffline,
	})
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

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Assemble and start the bridge engine
	opts := bridge.Options{
		Config: cfg.Bridge,
		MQTT:   &mqttBridgeAdapter{client: mqttClient},
		API:    stClient,
		Logger: log,
		QoS:    byte(cfg.MQTT.QoS),
	}
	if auditRepo != nil {
		opts.Audit = auditRepo
	}
	if influxClient != nil {
		opts.Metrics = influxClient
	}

	engine, err := bridge.New(opts)
	if err != nil {
		return fmt.Errorf("creating bridge: %w", err)
	}
	if err := engine.Start(ctx); err != nil {
		return fmt.Errorf("starting bridge: %w", err)
	}
	defer func() {
		log.Info("stopping bridge")
		engine.Stop()
	}()

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses STBRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("STBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// db and influxClient may be nil when their features are disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// mqttBridgeAdapter adapts the infrastructure MQTT client to the bridge's
// MQTTClient interface. The handler types are structurally identical but
// declared in different packages.
type mqttBridgeAdapter struct {
	client *mqtt.Client
}

// PublishRetained implements bridge.MQTTClient.
func (a *mqttBridgeAdapter) PublishRetained(topic string, payload []byte) error {
	return a.client.PublishRetained(topic, payload)
}

// Subscribe implements bridge.MQTTClient.
func (a *mqttBridgeAdapter) Subscribe(topic string, qos byte, handler bridge.MessageHandler) error {
	return a.client.Subscribe(topic, qos, mqtt.MessageHandler(handler))
}
