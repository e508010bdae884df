// main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"flight-booking/cmd"
	"flight-booking/internal/cache"
	"flight-booking/internal/data/repository"
	"flight-booking/internal/event"
	"flight-booking/internal/usecase"
	"flight-booking/internal/wire"
	"flight-booking/pkg/database"
	"flight-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.String("event_broker", config.Broker.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	if config.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Info("Database schema is up to date")
	}

	// Flight list cache
	var flightCache cache.FlightCache = cache.NopCache{}
	if config.Redis.Addr != "" {
		client := cache.NewRedisClient(config.Redis)
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unavailable, flight cache disabled", zap.Error(err))
		} else {
			flightCache = cache.NewRedisCache(client, config.Redis.CacheTTL, logger)
			logger.Info("Redis connected successfully", zap.String("addr", config.Redis.Addr))
		}
	}

	// Booking events
	publisher, err := event.NewPublisher(config.Broker, logger)
	if err != nil {
		logger.Fatal("Failed to create event publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(usecase.Dependencies{
		Repo:      repos,
		Cache:     flightCache,
		Publisher: publisher,
		Config:    config,
		Log:       logger,
	})

	created, err := app.Service.Auth.BootstrapAdmin(ctx)
	if err != nil {
		logger.Fatal("Failed to bootstrap admin", zap.Error(err))
	}
	if created {
		logger.Info("Initial admin account created", zap.String("email", config.Admin.Email))
	}

	// Start server
	if err := cmd.APIServer(ctx, app.Router, config.App.Port, config.App.ShutdownTimeout, logger); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
	logger.Info("Server stopped")
}
