package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market-streamer/src/config"
	"market-streamer/src/integrations"
	"market-streamer/src/interfaces"
	"market-streamer/src/marketclock"
	"market-streamer/src/providers"
	"market-streamer/src/publishers"
	"market-streamer/src/rest"
	"market-streamer/src/serializers"
	"market-streamer/src/store"
	"market-streamer/src/stream"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Outbound batch bus: NATS when configured, otherwise drop.
	var publisher interfaces.IPublisher = publishers.NewNoopPublisher()
	if len(cfg.NATS.Servers) > 0 {
		var serializer interfaces.ISerializer = serializers.NewJSONSerializer()
		if cfg.NATS.Serializer == "binary" {
			serializer = serializers.NewBinSerializer()
		}
		natsPublisher := publishers.NewNATSPublisher(&cfg.NATS, logger, serializer)
		if err := natsPublisher.Connect(); err != nil {
			logger.Fatal("failed to connect to nats", zap.Error(err))
		}
		publisher = natsPublisher
	}
	defer publisher.Disconnect()

	// Snapshot store: Redis when configured, otherwise in-process.
	var snapshotStore interfaces.ISnapshotStore = store.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		redisStore, err := store.NewRedisStore(ctx, &cfg.Redis, logger)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		snapshotStore = redisStore
	}
	defer snapshotStore.Close()

	clock := marketclock.New()
	chains := providers.NewChainBuilder(cfg, logger, integrations.NewConfigSource(cfg))
	factory := stream.NewSessionFactory(cfg, logger, clock, publisher, snapshotStore, chains)
	registry := stream.NewRegistry(factory, logger)
	defer registry.StopAll()

	server := rest.NewServer(cfg, logger, registry, snapshotStore, clock, chains)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	logger.Info("market streamer running",
		zap.String("name", cfg.Name),
		zap.String("addr", cfg.ListenAddr()),
		zap.Int("providers", len(cfg.OrderedProviders())))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown error", zap.Error(err))
	}
}

// newLogger builds the production zap logger at the configured level.
func newLogger(level string) (*zap.Logger, error) {
	zapLevel := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level '%s': %w", level, err)
		}
		zapLevel = parsed
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	return zapConfig.Build()
}
