package kafka_config

import "time"

const (
	DefaultKafkaBrokers     = "localhost:9092"
	DefaultEnableMiddleware = true

	// Domain events are small JSON documents published one per write.
	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 5 * time.Millisecond
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "lz4"

	// A new notifier group starts from the oldest offset so confirmations
	// published before it first ran are still sent.
	DefaultConsumerGroupID        = "dancebook-notifier"
	DefaultConsumerStartOffset    = -2
	DefaultConsumerMaxWait        = 500 * time.Millisecond
	DefaultConsumerCommitInterval = 0 // synchronous commits after each confirmation
	DefaultConsumerSessionTimeout = 10 * time.Second
	DefaultConsumerMaxRetries     = 3
	DefaultConsumerRetryBackoff   = 500 * time.Millisecond
)
