// SceneFlow Core - Scene Load/Unload Coordinator
//
// This is the main entry point for the SceneFlow Core service. It wires the
// scene coordinator to its manifest-backed content provider and stage
// registry, persists batch definitions in SQLite, and exposes the REST/
// WebSocket API. MQTT event publishing and InfluxDB operation timings are
// optional and degrade gracefully when their backends are absent.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/sceneflow-core/migrations"

	"github.com/nerrad567/sceneflow-core/internal/api"
	"github.com/nerrad567/sceneflow-core/internal/batch"
	"github.com/nerrad567/sceneflow-core/internal/content"
	"github.com/nerrad567/sceneflow-core/internal/coordinator"
	"github.com/nerrad567/sceneflow-core/internal/infrastructure/config"
	"github.com/nerrad567/sceneflow-core/internal/infrastructure/database"
	"github.com/nerrad567/sceneflow-core/internal/infrastructure/logging"
	"github.com/nerrad567/sceneflow-core/internal/infrastructure/metrics"
	"github.com/nerrad567/sceneflow-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/sceneflow-core/internal/stage"
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

// residencyInterval is how often loaded-scene residency is sampled to the
// metrics backend.
const residencyInterval = 30 * time.Second

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// A remote shutdown request over MQTT cancels this context too.
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting SceneFlow Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
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

	// Open database
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

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Initialise batch registry
	batchRepo := batch.NewSQLiteRepository(db.DB)
	batchRegistry := batch.NewRegistry(batchRepo)
	batchRegistry.SetLogger(log.WithComponent("batch"))

	if refreshErr := batchRegistry.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading batch registry: %w", refreshErr)
	}
	log.Info("batch registry initialised", "batches", batchRegistry.GetBatchCount())

	// Load the scene manifest
	manifest, err := content.LoadManifest(cfg.Content.ManifestPath)
	if err != nil {
		return fmt.Errorf("loading scene manifest: %w", err)
	}
	if cfg.Content.VerifyAssets {
		manifest.VerifyAssets = true
	}
	log.Info("scene manifest loaded",
		"path", cfg.Content.ManifestPath,
		"scenes", len(manifest.Scenes),
		"verify_assets", manifest.VerifyAssets,
	)

	// Assemble the coordinator core: stage registry, content provider,
	// handle cache and fan-out logic.
	stageRegistry := stage.NewRegistry()
	stageRegistry.SetLogger(log.WithComponent("stage"))

	provider := content.NewProvider(manifest, stageRegistry)
	provider.SetLogger(log.WithComponent("content"))

	coord := coordinator.New(provider, stageRegistry)
	coord.SetLogger(log.WithComponent("coordinator"))

	// Connect to MQTT broker (optional)
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

		mqttClient.SetLogger(log.WithComponent("mqtt"))
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		coord.SetEventPublisher(mqtt.NewEventPublisher(mqttClient, byte(cfg.MQTT.QoS)))

		// Remote graceful shutdown: any publication on the shutdown topic
		// stops the node.
		if subErr := subscribeShutdown(mqttClient, log, stop); subErr != nil {
			return fmt.Errorf("subscribing to shutdown topic: %w", subErr)
		}
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var metricsClient *metrics.Client
	if cfg.InfluxDB.Enabled {
		metricsClient, err = metrics.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := metricsClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		metricsClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})

		coord.SetRecorder(metricsClient)
		go sampleResidency(ctx, metricsClient, stageRegistry)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Recalculation hook: announce the pass on the bus so downstream
	// consumers can rebuild their derived state.
	coord.SetRecalcFunc(func(_ context.Context) {
		log.Debug("recalculation pass", "loaded", stageRegistry.Count())
		if mqttClient == nil {
			return
		}
		payload, marshalErr := json.Marshal(map[string]any{
			"loaded": stageRegistry.Count(),
			"ts":     time.Now().UTC().Format(time.RFC3339),
		})
		if marshalErr != nil {
			return
		}
		topic := mqtt.Topics{}.CoreEvent("recalc")
		if pubErr := mqttClient.Publish(topic, payload, 0, false); pubErr != nil {
			log.Warn("failed to publish recalc event", "error", pubErr)
		}
	})

	// Start the API server and wire its WebSocket hub into the coordinator
	apiServer, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Security:    cfg.Security,
		Logger:      log.WithComponent("api"),
		Coordinator: coord,
		Stage:       stageRegistry,
		Batches:     batchRegistry,
		MQTT:        mqttClient,
		Metrics:     metricsClient,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	coord.SetBroadcaster(apiServer.Hub())

	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, metricsClient, apiServer); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("SceneFlow Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SCENEFLOW_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SCENEFLOW_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// subscribeShutdown registers a handler on the system shutdown topic that
// cancels the run context.
func subscribeShutdown(client *mqtt.Client, log *logging.Logger, stop context.CancelFunc) error {
	topic := mqtt.Topics{}.SystemShutdown()
	return client.Subscribe(topic, 1, func(_ string, payload []byte) error {
		log.Info("shutdown requested over MQTT", "payload", string(payload))
		stop()
		return nil
	})
}

// sampleResidency periodically records how many scenes are loaded and which
// one is active.
func sampleResidency(ctx context.Context, client *metrics.Client, reg *stage.Registry) {
	ticker := time.NewTicker(residencyInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			active := ""
			if ref, ok := reg.Active(); ok {
				active = ref.Name
			}
			client.RecordResidency(reg.Count(), active)
		}
	}
}

// healthCheck verifies all infrastructure connections are healthy.
// Optional clients may be nil when their backend is disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, metricsClient *metrics.Client, apiServer *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if metricsClient != nil {
		if err := metricsClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	if err := apiServer.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	return nil
}
