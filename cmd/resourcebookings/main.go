package main

import (
	"context"

	"campustime/internal/resourcebookings/handler"
	"campustime/internal/resourcebookings/repository"
	"campustime/internal/resourcebookings/service"
	"campustime/internal/resourcebookings/validator"
	"campustime/pkg/app"
	"campustime/pkg/config"
	dbmongo "campustime/pkg/db/mongo"
)

const ServiceName = "resourcebookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Resource bookings service")

	bookingService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewResourceBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.ResourceBookingService {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := dbmongo.EnsureSlotLockIndexes(context.Background(), db); err != nil {
		cfg.Log.Fatal("Failed to ensure slot lock indexes", "error", err)
	}

	bookingValidator := validator.NewResourceBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoResourceBookingRepository(cfg)
	locker := dbmongo.NewSlotLocker(db, cfg.SlotLockTTL)

	bookingService := service.NewResourceBookingService(
		bookingRepo,
		locker,
		bookingValidator,
		cfg,
	)

	cfg.Log.Info("Resource booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}
