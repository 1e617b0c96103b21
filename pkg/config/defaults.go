package config

import "time"

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "dancebook"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultMongoTransactions = false

	DefaultStoreBackend   = StoreMongo
	DefaultMigrateOnStart = false

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultSessionIssuer = "dancebook"
	DefaultSessionTTL    = 12 * time.Hour
	DefaultBcryptCost    = 10

	DefaultEventsEnabled  = false
	DefaultEventsTopic    = "dancebook.events"
	DefaultEventsDLQTopic = "dancebook.events.dlq"
	DefaultPhoneRegion    = "US"

	MinSessionSecretLength = 32
)
