package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"custom-id-generator/internal/cache"
	"custom-id-generator/internal/config"
	"custom-id-generator/internal/customid"
	generator_storage "custom-id-generator/internal/generator-storage"
	"custom-id-generator/internal/inventory"
	"custom-id-generator/internal/issuer"
	"custom-id-generator/internal/lib"
	"custom-id-generator/internal/metrics"
	"custom-id-generator/internal/servers"
)

var _ generator_storage.Store = (*cache.Dragonfly)(nil)

var (
	httpPort = flag.Int("http-port", 0, "Port to run http server, overrides HTTP_PORT")
	grpcPort = flag.Int("grpc-port", 0, "Port to run grpc server, overrides GRPC_PORT")
	envFile  = flag.String("env", ".env", "Env file to load before reading the environment")
)

const shutdownTimeout = 10 * time.Second

func main() {
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *httpPort != 0 {
		cfg.HttpPort = *httpPort
	}
	if *grpcPort != 0 {
		cfg.GrpcPort = *grpcPort
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("id store ready", "driver", cfg.StoreDriver, "max_sequence", cfg.MaxSequence)

	catalog := inventory.NewCatalog()
	if err := catalog.LoadFile(cfg.CatalogPath); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("catalog loaded", "path", cfg.CatalogPath, "inventories", len(catalog.Inventories()))

	var (
		sequences customid.SequenceAllocator = store
		scopes    issuer.ScopeStore          = store
	)
	if cfg.SequenceBlockSize > 1 {
		storage, err := generator_storage.NewStorage(store, cfg.SequenceBlockSize)
		if err != nil {
			return err
		}
		sequences, scopes = storage, storage
	}

	random := lib.CryptoRandom{}
	clock := lib.SystemClock{}

	gen, err := customid.NewGenerator(customid.Deps{
		Random:     random,
		Clock:      clock,
		Sequences:  sequences,
		Uniqueness: store,
	}, customid.WithMaxAttempts(cfg.MaxUniqueAttempts))
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	iss, err := issuer.New(issuer.Config{
		Catalog:   catalog,
		Generator: gen,
		Scopes:    scopes,
		Random:    random,
		Clock:     clock,
		Metrics:   metrics.New(reg),
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	httpServer := servers.NewHttpServer(cfg.HttpPort, iss, reg, logger)
	grpcServer := servers.NewGrpcServer(cfg.GrpcPort, iss, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(httpServer.Serve)
	g.Go(grpcServer.Serve)

	if cfg.WatchCatalog {
		watcher, err := inventory.WatchFile(catalog, cfg.CatalogPath, logger)
		if err != nil {
			return err
		}
		g.Go(func() error { return watcher.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		grpcServer.Stop()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg config.Config) (generator_storage.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

		pingCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}

		return cache.NewDragonfly(client, cache.Options{
			KeyPrefix:   cfg.RedisKeyPrefix,
			MaxSequence: cfg.MaxSequence,
		}), nil
	case config.StoreSQLite:
		return generator_storage.OpenSQLStore(generator_storage.DriverSQLite, cfg.DatabaseDSN, cfg.MaxSequence)
	case config.StorePostgres:
		return generator_storage.OpenSQLStore(generator_storage.DriverPostgres, cfg.DatabaseDSN, cfg.MaxSequence)
	default:
		return generator_storage.NewMemoryStore(cfg.MaxSequence), nil
	}
}
