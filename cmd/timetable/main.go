package main

import (
	"context"

	"campustime/internal/timetable/handler"
	"campustime/internal/timetable/repository"
	"campustime/internal/timetable/service"
	"campustime/internal/timetable/validator"
	"campustime/pkg/app"
	"campustime/pkg/config"
	dbmongo "campustime/pkg/db/mongo"
	"campustime/pkg/kafka"
	kafkaconfig "campustime/pkg/kafka/config"
)

const ServiceName = "timetable"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Timetable service")

	sessionService, producer := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewSessionHandler(sessionService, cfg.Log))
	serverApp.OnShutdown(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.SessionService, *kafka.Producer) {
	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kafkaCfg, kafka.TopicFanout, kafka.TopicFanoutDLQ, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := dbmongo.EnsureSlotLockIndexes(context.Background(), db); err != nil {
		cfg.Log.Fatal("Failed to ensure slot lock indexes", "error", err)
	}

	sessionValidator := validator.NewSessionValidator(cfg.Log)
	sessionRepo := repository.NewMongoSessionRepository(cfg)
	courseRepo := repository.NewMongoCourseRepository(cfg)
	locker := dbmongo.NewSlotLocker(db, cfg.SlotLockTTL)

	sessionService := service.NewSessionService(
		sessionRepo,
		courseRepo,
		locker,
		sessionValidator,
		producer,
		cfg,
	)

	cfg.Log.Info("Timetable service initialized", "database", cfg.MongoDatabaseName)
	return sessionService, producer
}
