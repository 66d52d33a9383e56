package main

import (
	"context"

	"campustime/internal/roombookings/handler"
	"campustime/internal/roombookings/repository"
	"campustime/internal/roombookings/service"
	"campustime/internal/roombookings/validator"
	"campustime/pkg/app"
	"campustime/pkg/config"
	dbmongo "campustime/pkg/db/mongo"
)

const ServiceName = "roombookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Room bookings service")

	bookingService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewRoomBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.RoomBookingService {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := dbmongo.EnsureSlotLockIndexes(context.Background(), db); err != nil {
		cfg.Log.Fatal("Failed to ensure slot lock indexes", "error", err)
	}

	bookingValidator := validator.NewRoomBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoRoomBookingRepository(cfg)
	timetableReader := repository.NewMongoTimetableReader(cfg)
	locker := dbmongo.NewSlotLocker(db, cfg.SlotLockTTL)

	bookingService := service.NewRoomBookingService(
		bookingRepo,
		timetableReader,
		locker,
		bookingValidator,
		cfg,
	)

	cfg.Log.Info("Room booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}
