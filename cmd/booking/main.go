package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"dancebook/internal/access"
	adminhandler "dancebook/internal/admin/handler"
	adminservice "dancebook/internal/admin/service"
	bookingshandler "dancebook/internal/bookings/handler"
	bookingsrepo "dancebook/internal/bookings/repository"
	bookingsservice "dancebook/internal/bookings/service"
	bookingsvalidator "dancebook/internal/bookings/validator"
	cataloghandler "dancebook/internal/catalog/handler"
	catalogrepo "dancebook/internal/catalog/repository"
	catalogservice "dancebook/internal/catalog/service"
	catalogvalidator "dancebook/internal/catalog/validator"
	"dancebook/internal/events"
	identityhandler "dancebook/internal/identity/handler"
	identityrepo "dancebook/internal/identity/repository"
	identityservice "dancebook/internal/identity/service"
	identityvalidator "dancebook/internal/identity/validator"
	migrations "dancebook/internal/migrations/mongo"
	"dancebook/internal/storage"
	"dancebook/pkg/app"
	"dancebook/pkg/config"
	"dancebook/pkg/kafka"
	kafka_config "dancebook/pkg/kafka/config"
	kafka_middleware "dancebook/pkg/kafka/middleware"
)

const (
	ServiceName    = "booking"
	migrateTimeout = 2 * time.Minute
)

func main() {
	cfg := config.Load(ServiceName)

	if cfg.UsesMongo() {
		cfg.SetMongo()
	}
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	if cfg.UsesMongo() && cfg.MigrateOnStart {
		migrate(cfg)
	}

	stores, err := storage.Open(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to open storage", "error", err)
	}

	publisher := initPublisher(cfg)
	sessions := initSessions(cfg)

	cfg.Log.Info("Starting booking service", "store", stores.Backend)
	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(publisher.Close)
	handlers, accounts := initHandlers(cfg, stores, publisher, sessions)
	serverApp.SetApp(stores, app.Auth{
		Middleware: access.Authenticate(sessions, accounts, cfg.Log),
		CallerID:   access.CallerID,
	}, handlers...)
	serverApp.Run()
}

func migrate(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()

	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := migrations.RunMigration(ctx, db, cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
}

func initHandlers(cfg *config.Config, stores *storage.Stores, publisher events.Publisher, sessions *access.SessionManager) ([]app.RouteRegistrar, identityrepo.AccountRepository) {
	accountRules := identityvalidator.NewAccountValidator(cfg.Log)
	accountRepo := identityrepo.NewAccountRepository(stores.Accounts, accountRules)
	classRules := catalogvalidator.NewCatalogValidator(cfg.Log)
	catalogRepo := catalogrepo.NewCatalogRepository(stores.Courses, stores.Classes, classRules)
	enrolmentRepo := bookingsrepo.NewEnrolmentRepository(stores.Enrolments)

	accountService := identityservice.NewAccountService(accountRepo, accountRules, publisher, cfg)
	catalogService := catalogservice.NewCatalogService(catalogRepo, cfg)
	bookingService := bookingsservice.NewBookingService(enrolmentRepo, catalogRepo, bookingsvalidator.NewEnrolmentValidator(cfg.Log), publisher, cfg)
	adminService := adminservice.NewAdminService(accountRepo, catalogRepo, enrolmentRepo, classRules, stores.Transactor, publisher, cfg)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName, "store", stores.Backend)

	return []app.RouteRegistrar{
		identityhandler.NewAuthHandler(accountService, sessions, cfg.Log),
		cataloghandler.NewCatalogHandler(catalogService, cfg.Log),
		bookingshandler.NewEnrolmentHandler(bookingService, cfg.Log),
		adminhandler.NewOrganiserHandler(adminService, cfg.Log),
	}, accountRepo
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Domain events disabled")
		return events.NopPublisher{}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.EventsTopic, cfg.EventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.NewMetrics().ProducerMiddleware())
	}

	cfg.Log.Info("Domain events enabled", "topic", cfg.EventsTopic, "dlq_topic", cfg.EventsDLQTopic)
	return events.NewKafkaPublisher(producer, ServiceName)
}

func initSessions(cfg *config.Config) *access.SessionManager {
	secret := cfg.SessionSecret
	if secret == "" {
		buf := make([]byte, config.MinSessionSecretLength)
		if _, err := rand.Read(buf); err != nil {
			cfg.Log.Fatal("Failed to generate session secret", "error", err)
		}
		secret = hex.EncodeToString(buf)
		cfg.Log.Warn("SESSION_SECRET not set; using a random secret, sessions end on restart")
	}

	var revoker access.Revoker
	if cfg.Client.Redis != nil {
		revoker = access.NewRedisRevoker(cfg.Client.Redis, ServiceName)
	} else {
		revoker = access.NewMemoryRevoker()
	}
	return access.NewSessionManager(secret, cfg.SessionIssuer, cfg.SessionTTL, revoker)
}
