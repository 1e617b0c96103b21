package kafka_config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "broker-a:9092, broker-b:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[1] != "broker-b:9092" {
		t.Errorf("Brokers = %v", cfg.Brokers)
	}
	if cfg.ConsumerGroupID != DefaultConsumerGroupID {
		t.Errorf("ConsumerGroupID = %q", cfg.ConsumerGroupID)
	}
	if cfg.ConsumerCommitInterval != 0 {
		t.Errorf("ConsumerCommitInterval = %s, want synchronous commits", cfg.ConsumerCommitInterval)
	}
	if cfg.ConsumerRetryBackoff != DefaultConsumerRetryBackoff {
		t.Errorf("ConsumerRetryBackoff = %s", cfg.ConsumerRetryBackoff)
	}
}

func TestLoad_RetryBackoff(t *testing.T) {
	t.Setenv(EnvKafkaConsumerRetryBackoff, "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ConsumerRetryBackoff.String() != "2s" {
		t.Errorf("ConsumerRetryBackoff = %s", cfg.ConsumerRetryBackoff)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv(EnvKafkaProducerCompression, "brotli")
	t.Setenv(EnvKafkaProducerRequireAcks, "2")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"ProducerCompression", "ProducerRequireAcks"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err.Error(), want)
		}
	}
}

func TestValidate_EmptyBroker(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "a:9092,,b:9092")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "Broker 1 cannot be empty") {
		t.Fatalf("Load() error = %v", err)
	}
}
