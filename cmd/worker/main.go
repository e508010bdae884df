// Command worker consumes booking events from the configured broker and
// writes them to the audit log.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"flight-booking/internal/event"
	"flight-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	config, err := utils.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name+"-worker", config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer, err := event.NewConsumer(config.Broker, logger)
	if err != nil {
		logger.Fatal("Failed to create event consumer", zap.Error(err))
	}
	defer consumer.Close()

	logger.Info("Worker started", zap.String("event_broker", config.Broker.Driver))

	if err := consumer.Consume(ctx, event.AuditHandler(logger)); err != nil {
		logger.Fatal("Consumer stopped", zap.Error(err))
	}
	logger.Info("Worker stopped")
}
