package main

import (
	bookingshandler "dormitory/internal/bookings/handler"
	bookingsrepo "dormitory/internal/bookings/repository"
	bookingsservice "dormitory/internal/bookings/service"
	bookingsvalidator "dormitory/internal/bookings/validator"
	dashboardhandler "dormitory/internal/dashboard/handler"
	dashboardservice "dormitory/internal/dashboard/service"
	roomshandler "dormitory/internal/rooms/handler"
	roomsrepo "dormitory/internal/rooms/repository"
	roomsservice "dormitory/internal/rooms/service"
	roomsvalidator "dormitory/internal/rooms/validator"
	tenantshandler "dormitory/internal/tenants/handler"
	tenantsrepo "dormitory/internal/tenants/repository"
	tenantsservice "dormitory/internal/tenants/service"
	tenantsvalidator "dormitory/internal/tenants/validator"
	"dormitory/pkg/app"
	"dormitory/pkg/config"
	"dormitory/pkg/contracts"
	"dormitory/pkg/events"
	"dormitory/pkg/kafka"
	kafka_config "dormitory/pkg/kafka/config"
	kafka_middleware "dormitory/pkg/kafka/middleware"
	"dormitory/pkg/metrics"
)

const ServiceName = "dormitory"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	cfg.LogConfiguration()

	cfg.Log.Info("Starting Dormitory service")
	cfg.SetMongo()

	m := metrics.New()
	publisher := initPublisher(cfg, m)

	serverApp := app.NewApplication(cfg, m)
	serverApp.SetApp(cfg.Client.Mongo, initHandlers(cfg, publisher, m)...)
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.OnShutdown(cfg.GracefulShutdown)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, publisher events.Publisher, m *metrics.Metrics) []contracts.Handler {
	db := cfg.Client.Database(cfg.MongoDatabaseName)

	roomRepo := roomsrepo.NewMongoRoomRepository(db, cfg)
	tenantRepo := tenantsrepo.NewMongoTenantRepository(db, cfg)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(db, cfg)
	lockRepo := bookingsrepo.NewBookingLockRepository(db, cfg)

	roomService := roomsservice.NewRoomService(roomRepo, roomsvalidator.NewRoomValidator(cfg.Log), cfg)
	tenantService := tenantsservice.NewTenantService(tenantRepo, tenantsvalidator.NewTenantValidator(cfg.Log), cfg)
	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		lockRepo,
		roomRepo,
		tenantRepo,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		publisher,
		m,
		cfg,
	)
	dashboardService := dashboardservice.NewDashboardService(roomRepo, bookingRepo, cfg)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		roomshandler.NewRoomHandler(roomService, cfg.Log),
		tenantshandler.NewTenantHandler(tenantService, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		dashboardhandler.NewDashboardHandler(dashboardService, cfg.Log),
	}
}

// initPublisher connects the booking event producer. Without brokers, or when
// the producer cannot be built, events are dropped and the API keeps serving.
func initPublisher(cfg *config.Config, m *metrics.Metrics) events.Publisher {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Booking events disabled")
		return events.NewNoopPublisher()
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Error("Invalid Kafka configuration, booking events disabled", "error", err)
		return events.NewNoopPublisher()
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Error("Failed to create Kafka producer, booking events disabled", "error", err)
		return events.NewNoopPublisher()
	}

	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.MetricsProducerMiddleware(m))
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}

	cfg.Log.Info("Booking events enabled", "topic", cfg.BookingEventsTopic)
	return events.NewKafkaPublisher(producer)
}
