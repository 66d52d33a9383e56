package main

import (
	"context"
	"errors"

	"campustime/internal/notifications/consumer"
	"campustime/internal/notifications/handler"
	"campustime/internal/notifications/repository"
	"campustime/internal/notifications/service"
	"campustime/pkg/app"
	"campustime/pkg/config"
	"campustime/pkg/kafka"
	kafkaconfig "campustime/pkg/kafka/config"
)

const ServiceName = "notifications"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Notifications service")

	notificationService := initServices(cfg)
	fanoutConsumer := initConsumer(cfg, notificationService)

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	go func() {
		if err := fanoutConsumer.Start(consumerCtx); err != nil && !errors.Is(err, context.Canceled) {
			cfg.Log.Error("Fanout consumer stopped", "error", err)
		}
	}()

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewNotificationHandler(notificationService, cfg.Log))
	serverApp.OnShutdown(func() {
		stopConsumer()
		if err := fanoutConsumer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka consumer", "error", err)
		}
	})
	serverApp.Run()
}

func initServices(cfg *config.Config) service.NotificationService {
	notificationRepo := repository.NewMongoNotificationRepository(cfg)
	directoryRepo := repository.NewMongoDirectoryRepository(cfg)

	notificationService := service.NewNotificationService(
		notificationRepo,
		directoryRepo,
		cfg,
	)

	cfg.Log.Info("Notification service initialized", "database", cfg.MongoDatabaseName)
	return notificationService
}

func initConsumer(cfg *config.Config, notificationService service.NotificationService) *kafka.Consumer {
	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	fanoutHandler := consumer.NewFanoutHandler(notificationService, cfg.Log)

	fanoutConsumer, err := kafka.NewConsumer(
		kafkaCfg,
		kafka.TopicFanout,
		kafka.GroupNotifications,
		kafka.TopicFanoutDLQ,
		fanoutHandler.Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	return fanoutConsumer
}
