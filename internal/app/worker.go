package app

import (
	"context"
	"errors"
	"go-employee/internal/config"
	"go-employee/internal/messaging/kafka"
	"go-employee/internal/messaging/kafka/producer"
	"go-employee/internal/shared/connection"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// RunWorker relays outbox events to Kafka until SIGINT or SIGTERM.
func RunWorker(cfg *config.Config) error {
	logger := zap.L().Named("app.worker")

	if cfg.Kafka.Broker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := connection.ConnectMongoWithRetry(ctx, cfg.Mongo.URI, cfg.Mongo.ConnectRetries)
	if err != nil {
		return err
	}
	infra := &Infra{Mongo: mongoClient, DB: mongoClient.Database(cfg.Mongo.Database)}
	defer infra.Close()

	if err := kafka.EnsureOutboxIndexes(ctx, infra.DB); err != nil {
		return err
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(ctx, cfg.Kafka.Broker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(infra.DB)

	logger.Info("worker connected", zap.String("broker", cfg.Kafka.Broker))
	producer.ProcessOutboxEvents(ctx, outboxRepo, kafkaWriter, logger, cfg.Kafka.PollInterval)

	logger.Info("worker shutting down")
	return nil
}
