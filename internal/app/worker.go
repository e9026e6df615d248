package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-salary/internal/config"
	"go-salary/internal/messaging/kafka"
	"go-salary/internal/messaging/kafka/producer"
	"go-salary/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker relays the outbox to Kafka until SIGINT or SIGTERM.
func RunWorker(cfg *config.Config) error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(postgresConfig(cfg), cfg.Database.MaxRetries)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.Kafka.Broker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, cfg.Database.MaxRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		producer.ProcessOutboxEvents(
			ctx,
			outboxRepo,
			kafkaWriter,
			logger,
			cfg.Kafka.OutboxPollInterval,
		)
	}()

	<-ctx.Done()
	logger.Info("worker shutting down")
	<-done

	return nil
}
