// hostmon publishes host metrics to an MQTT broker, with optional Home
// Assistant discovery so each metric appears as a sensor.
//
// Configuration is read from configs/hostmon.yaml, or the path in
// HOSTMON_CONFIG, with HOSTMON_* environment overrides applied on top.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/gray-logic-hostmon/internal/agent"
	"github.com/nerrad567/gray-logic-hostmon/internal/connection"
	"github.com/nerrad567/gray-logic-hostmon/internal/discovery"
	"github.com/nerrad567/gray-logic-hostmon/internal/hostprobe"
	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/telemetry"
	"github.com/nerrad567/gray-logic-hostmon/internal/metric"
	"github.com/nerrad567/gray-logic-hostmon/internal/publisher"
	"github.com/nerrad567/gray-logic-hostmon/internal/status"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/hostmon.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the components and blocks until shutdown.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting hostmon",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"level", cfg.Logging.Level,
		"dry_run", cfg.Publish.DryRun,
	)

	host, err := cfg.HostID()
	if err != nil {
		return fmt.Errorf("resolving host identifier: %w", err)
	}

	registry := metric.NewRegistry(cfg.Metrics)
	reader, detector := selectReader(cfg)

	model, err := detector.Model(ctx)
	if err != nil {
		log.Warn("hardware model not detected", "error", err, "model", model)
	}
	log.Info("monitoring host",
		"host", host,
		"model", model,
		"metrics", registry.EnabledKinds(),
	)

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.New(promRegistry)

	topics := mqtt.Topics{
		Prefix:          cfg.MQTT.TopicPrefix,
		Host:            host,
		DiscoveryPrefix: cfg.Discovery.Prefix,
	}

	mqttClient := mqtt.New(cfg.MQTT, mqtt.Options{
		StatusTopic:   topics.Status(),
		RetryInterval: cfg.BaseDelay(),
	})
	mqttClient.SetLogger(log.Component("mqtt"))
	log.Info("MQTT broker configured",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", mqttClient.ClientID(),
	)

	manager := connection.NewManager(mqttClient, connection.Config{
		BaseDelay:        cfg.BaseDelay(),
		MaxAttempts:      cfg.Connection.MaxAttempts,
		BackoffThreshold: cfg.Connection.BackoffThreshold,
	}, log.Component("connection"), metrics)

	session := publisher.NewSession(publisher.Config{
		Grouped:           cfg.Publish.GroupMessages,
		SleepTime:         cfg.SleepTime(),
		DiscoveryEnabled:  cfg.Discovery.Enabled,
		DiscoveryInterval: cfg.DiscoveryInterval(),
	}, topics,
		discovery.NewBuilder(topics, cfg.Discovery.Manufacturer, model),
		discovery.NewThrottle(),
		log.Component("publisher"),
		metrics,
	)

	var (
		observers []agent.Observer
		statusSrv *status.Server
	)
	if cfg.Status.Enabled {
		statusSrv, err = status.New(status.Deps{
			Config:   cfg.Status,
			Logger:   log.Component("status"),
			Gatherer: promRegistry,
			Session:  manager,
			Broker:   mqttClient,
			Host:     host,
			Version:  version,
		})
		if err != nil {
			return fmt.Errorf("creating status server: %w", err)
		}
		observers = append(observers, statusSrv)
	} else {
		log.Info("status server disabled")
	}

	ag, err := agent.New(agent.Options{
		Config: agent.Config{
			RandomDelay: cfg.RandomDelay(),
			LoopTime:    cfg.LoopTime(),
		},
		Connector:   manager,
		Session:     session,
		Descriptors: registry.Enabled(),
		Reader:      reader,
		Sink:        mqttClient,
		Observers:   observers,
		Logger:      log.Component("agent"),
	})
	if err != nil {
		return fmt.Errorf("creating agent: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ag.Run(gctx)
	})
	if statusSrv != nil {
		g.Go(func() error {
			return statusSrv.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("hostmon stopped")
	return nil
}

// selectReader returns the fixed dry-run reader or the live host probe.
func selectReader(cfg *config.Config) (metric.Reader, metric.ModelDetector) {
	if cfg.Publish.DryRun {
		r := metric.NewDryRunReader()
		return r, r
	}
	p := hostprobe.New(cfg.Metrics.DiskPath)
	return p, p
}

// getConfigPath returns the configuration file path.
// Uses HOSTMON_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HOSTMON_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
