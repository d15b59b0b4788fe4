package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"delegation-service/internal/domain/repository"
	"delegation-service/internal/infrastructure/bus"
	"delegation-service/internal/infrastructure/config"
	"delegation-service/internal/infrastructure/persistence"
	"delegation-service/internal/infrastructure/router"
	"delegation-service/internal/interface/api"
	repo "delegation-service/internal/interface/repository"
	"delegation-service/internal/usecase"
	"delegation-service/pkg/logger"
	"delegation-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger().Fatal("Failed to load config", "error", err)
	}

	log := logger.NewLoggerWithLevel(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting Delegation Service", "version", cfg.AppVersion)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewMetrics(cfg.MetricsNamespace, prometheus.DefaultRegisterer)

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	eventRepo := repo.NewMongoEventRepository(db)
	delegationRepo := repo.NewMongoDelegationRepository(db)
	memberRepo := repo.NewMongoMemberRepository(db)

	// Lookup tables are optional
	var airlineRepo repository.AirlineRepository
	var positionRepo repository.PositionRepository
	if cfg.PostgresURI != "" {
		gormDB, err := persistence.NewPostgres(cfg.PostgresURI)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		airlineRepo = repo.NewGormAirlineRepository(gormDB)
		positionRepo = repo.NewGormPositionRepository(gormDB)
	} else {
		log.Warn("POSTGRES_DSN not set, airline and position lookups disabled")
	}

	// Invalidation bus, relayed through redis when available
	invalidations := bus.New(log.With("component", "bus"), bus.WithWindow(cfg.InvalidationWindow), bus.WithMetrics(m))
	defer invalidations.Close()

	var publisher bus.Publisher = invalidations
	var legacy repository.LegacyCache
	var redisClient *redis.Client
	var relay *bus.Relay
	if cfg.RedisURL != "" {
		redisClient, err = persistence.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to connect to Redis", "error", err)
		}
		if cfg.LegacyCacheEnabled {
			legacy = repo.NewRedisLegacyCache(redisClient, log.With("component", "legacy-cache"))
		}

		relay = bus.NewRelay(redisClient, invalidations, cfg.InvalidationChannel, log.With("component", "relay"), m)
		if err := relay.Start(ctx); err != nil {
			log.Fatal("Failed to start invalidation relay", "error", err)
		}
		publisher = relay
	}

	loader := usecase.NewSnapshotLoader(eventRepo, delegationRepo, memberRepo, airlineRepo, positionRepo, legacy, log)
	view := usecase.NewMemberView(loader, log.With("component", "member-view"), m)
	unsubscribe := view.Subscribe(invalidations)
	defer unsubscribe()

	if err := view.Refresh(ctx); err != nil {
		log.Error("Initial reconciliation failed", "error", err)
	}

	mutations := usecase.NewMutationService(eventRepo, delegationRepo, memberRepo, publisher, log)
	handler := api.NewHandler(view, mutations, log.With("component", "api"))

	// Periodic full refresh in case an invalidation was lost
	go func() {
		refreshTicker := time.NewTicker(cfg.RefreshInterval)
		defer refreshTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Periodic refresh stopped")
				return
			case <-refreshTicker.C:
				invalidations.Publish(bus.TopicGeneric)
			}
		}
	}()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(handler, prometheus.DefaultGatherer, log),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop all goroutines

	if relay != nil {
		if err := relay.Stop(); err != nil {
			log.Error("Relay stop error", "error", err)
		}
	}
	if redisClient != nil {
		redisClient.Close()
	}

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Delegation Service stopped")
}
