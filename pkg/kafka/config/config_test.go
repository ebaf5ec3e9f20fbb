package kafka_config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}
	if len(cfg.Brokers) != 1 || cfg.Brokers[0] != "localhost:9092" {
		t.Errorf("unexpected brokers %v", cfg.Brokers)
	}
}

func TestLoad_BrokerList(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " k1:9092, ,k2:9092 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if strings.Join(cfg.Brokers, ",") != "k1:9092,k2:9092" {
		t.Errorf("unexpected brokers %v", cfg.Brokers)
	}
}

func TestLoad_InvalidCompression(t *testing.T) {
	t.Setenv(EnvKafkaProducerCompression, "brotli")
	t.Setenv(EnvKafkaConsumerStartOffset, "5")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "ProducerCompression") || !strings.Contains(err.Error(), "ConsumerStartOffset") {
		t.Errorf("expected both problems reported, got:\n%s", err)
	}
}
