package main

import (
	availabilityhandler "tavola/internal/availability/handler"
	availabilityservice "tavola/internal/availability/service"
	contacthandler "tavola/internal/contact/handler"
	contactrepository "tavola/internal/contact/repository"
	contactservice "tavola/internal/contact/service"
	contactvalidator "tavola/internal/contact/validator"
	openinghourshandler "tavola/internal/openinghours/handler"
	openinghoursrepository "tavola/internal/openinghours/repository"
	openinghoursservice "tavola/internal/openinghours/service"
	openinghoursvalidator "tavola/internal/openinghours/validator"
	reservationhandler "tavola/internal/reservations/handler"
	reservationrepository "tavola/internal/reservations/repository"
	reservationservice "tavola/internal/reservations/service"
	reservationvalidator "tavola/internal/reservations/validator"
	"tavola/pkg/app"
	"tavola/pkg/config"
	"tavola/pkg/contracts"
	dbmongo "tavola/pkg/db/mongo"
	"tavola/pkg/kafka"
	kafka_config "tavola/pkg/kafka/config"
	"tavola/pkg/sealer"
)

const ServiceName = "tavola-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	publisher := initPublisher(cfg)

	schedules := initOpeningHours(cfg)
	reservations := initReservations(cfg, schedules, publisher)
	availability := initAvailability(cfg, schedules)
	contact := initContact(cfg, publisher)

	reservationHandler := reservationhandler.NewReservationHandler(reservations, cfg.Log)
	contactHandler := contacthandler.NewContactHandler(contact, cfg.Log)
	openingHoursHandler := openinghourshandler.NewOpeningHoursHandler(schedules, cfg.Log)
	availabilityHandler := availabilityhandler.NewAvailabilityHandler(availability, cfg.Log)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(publisher,
		[]contracts.Handler{
			availabilityHandler,
			reservationHandler,
			contactHandler,
		},
		[]contracts.AdminHandler{
			openingHoursHandler,
			reservationHandler,
			contactHandler,
		},
	)
	serverApp.Run()
}

func initPublisher(cfg *config.Config) kafka.Publisher {
	kafkaCfg := kafka_config.Load()
	if !kafkaCfg.Enabled {
		cfg.Log.Info("Kafka disabled, lifecycle events will be dropped")
		return kafka.NopPublisher{}
	}

	producer, err := kafka.NewProducer(kafkaCfg)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	cfg.Log.Info("Kafka producer initialized", "topic", kafkaCfg.Topic, "brokers", kafkaCfg.Brokers)
	return producer
}

func initOpeningHours(cfg *config.Config) openinghoursservice.OpeningHoursService {
	repo := openinghoursrepository.NewMongoOpeningHoursRepository(cfg)
	validator := openinghoursvalidator.NewOpeningHoursValidator(cfg.Log)
	service := openinghoursservice.NewOpeningHoursService(repo, validator, cfg)

	cfg.Log.Info("Opening hours service initialized", "database", cfg.MongoDatabaseName)
	return service
}

func initReservations(
	cfg *config.Config,
	schedules openinghoursservice.OpeningHoursService,
	publisher kafka.Publisher,
) reservationservice.ReservationService {
	var codeSealer *sealer.Sealer
	if cfg.ConfirmationSecret != "" {
		s, err := sealer.New(cfg.ConfirmationSecret)
		if err != nil {
			cfg.Log.Fatal("Failed to initialize confirmation code sealer", "error", err)
		}
		codeSealer = s
	} else {
		cfg.Log.Warn("CONFIRMATION_SECRET not set, confirmation codes disabled")
	}

	repo := reservationrepository.NewMongoReservationRepository(cfg)
	validator := reservationvalidator.NewReservationValidator(cfg.Log)
	txManager := dbmongo.NewTransactionManager(cfg.Client.Mongo)
	service := reservationservice.NewReservationService(
		repo,
		schedules,
		validator,
		txManager,
		publisher,
		codeSealer,
		cfg,
	)

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)
	return service
}

func initAvailability(
	cfg *config.Config,
	schedules openinghoursservice.OpeningHoursService,
) availabilityservice.AvailabilityService {
	repo := reservationrepository.NewMongoReservationRepository(cfg)
	service := availabilityservice.NewAvailabilityService(schedules, repo, cfg)

	cfg.Log.Info("Availability service initialized")
	return service
}

func initContact(cfg *config.Config, publisher kafka.Publisher) contactservice.ContactService {
	repo := contactrepository.NewMongoContactRepository(cfg)
	validator := contactvalidator.NewContactValidator(cfg.Log)
	service := contactservice.NewContactService(repo, validator, publisher, cfg)

	cfg.Log.Info("Contact service initialized", "database", cfg.MongoDatabaseName)
	return service
}
