package main

import (
	"fmt"
	"os"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xamuel98/ZoneFlow-sub001/internal/auth"
	"github.com/xamuel98/ZoneFlow-sub001/internal/broadcast"
	"github.com/xamuel98/ZoneFlow-sub001/internal/broadcast/rabbitmq"
	"github.com/xamuel98/ZoneFlow-sub001/internal/config"
	"github.com/xamuel98/ZoneFlow-sub001/internal/db"
	httphandler "github.com/xamuel98/ZoneFlow-sub001/internal/http"
	"github.com/xamuel98/ZoneFlow-sub001/internal/http/middleware"
	"github.com/xamuel98/ZoneFlow-sub001/internal/jobs"
	"github.com/xamuel98/ZoneFlow-sub001/internal/logger"
	"github.com/xamuel98/ZoneFlow-sub001/internal/repository"
	"github.com/xamuel98/ZoneFlow-sub001/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	var broadcaster broadcast.Broadcaster = broadcast.NopBroadcaster{}
	if cfg.Broadcast.RabbitMQURL != "" {
		conn, err := amqp.Dial(cfg.Broadcast.RabbitMQURL)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("failed to connect rabbitmq")
		}
		defer conn.Close()

		publisher, err := rabbitmq.NewPublisher(conn)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("failed to create rabbitmq publisher")
		}
		broadcaster = publisher
	} else {
		appLogger.Warn().Msg("RABBITMQ_URL not set, events will not be delivered")
	}

	dispatcher := broadcast.NewDispatcher(broadcaster, appLogger, cfg.Broadcast.BufferSize)
	defer dispatcher.Close()

	driverRepo := repository.NewDriverRepository(database)
	positionRepo := repository.NewPositionRepository(database)
	geofenceRepo := repository.NewGeofenceRepository(database)
	geofenceEventRepo := repository.NewGeofenceEventRepository(database)
	orderRepo := repository.NewOrderRepository(database)

	driverService := service.NewDriverService(driverRepo)
	geofenceService := service.NewGeofenceService(geofenceRepo, geofenceEventRepo, dispatcher, appLogger)
	locationService := service.NewLocationService(driverRepo, positionRepo, geofenceService, appLogger)
	orderService := service.NewOrderService(orderRepo, driverRepo, dispatcher, appLogger)

	overdueSweep := jobs.NewOverdueSweep(orderRepo, dispatcher, cfg.Jobs.OverdueSweepSchedule, appLogger)
	if err := overdueSweep.Start(); err != nil {
		appLogger.Fatal().Err(err).Msg("failed to start overdue sweep")
	}
	defer overdueSweep.Stop()

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(driverService, locationService, geofenceService, orderService, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, appLogger, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting zoneflow service")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
