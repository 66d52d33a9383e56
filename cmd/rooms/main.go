package main

import (
	"campustime/internal/rooms/handler"
	"campustime/internal/rooms/repository"
	"campustime/internal/rooms/service"
	"campustime/internal/rooms/validator"
	"campustime/pkg/app"
	"campustime/pkg/config"
	"campustime/pkg/kafka"
	kafkaconfig "campustime/pkg/kafka/config"
)

const ServiceName = "rooms"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Rooms service")

	roomService, producer := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewRoomHandler(roomService, cfg.Log))
	serverApp.OnShutdown(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.RoomService, *kafka.Producer) {
	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kafkaCfg, kafka.TopicFanout, kafka.TopicFanoutDLQ, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	roomValidator := validator.NewRoomValidator(cfg.Log)
	roomRepo := repository.NewMongoRoomRepository(cfg)

	roomService := service.NewRoomService(
		roomRepo,
		roomValidator,
		producer,
		cfg,
	)

	cfg.Log.Info("Room service initialized", "database", cfg.MongoDatabaseName)
	return roomService, producer
}
