package kafka_config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvKafkaEnabled        = "KAFKA_ENABLED"
	EnvKafkaBrokers        = "KAFKA_BROKERS"
	EnvKafkaTopic          = "KAFKA_TOPIC"
	EnvKafkaBatchTimeout   = "KAFKA_BATCH_TIMEOUT"
	EnvKafkaMaxAttempts    = "KAFKA_MAX_ATTEMPTS"
	EnvKafkaRequireAcks    = "KAFKA_REQUIRE_ACKS"
	EnvKafkaCompression    = "KAFKA_COMPRESSION"
	EnvKafkaProducerAsync  = "KAFKA_PRODUCER_ASYNC"
	EnvKafkaProduceTimeout = "KAFKA_PRODUCE_TIMEOUT"
)

const (
	DefaultKafkaBrokers        = "localhost:9092"
	DefaultKafkaTopic          = "tavola.notifications"
	DefaultKafkaBatchTimeout   = 100 * time.Millisecond
	DefaultKafkaMaxAttempts    = 3
	DefaultKafkaRequireAcks    = -1 // all replicas
	DefaultKafkaCompression    = "snappy"
	DefaultKafkaProduceTimeout = 5 * time.Second
)

type Config struct {
	Enabled bool
	Brokers []string
	Topic   string

	BatchTimeout   time.Duration
	MaxAttempts    int
	RequireAcks    int
	Compression    string
	Async          bool
	ProduceTimeout time.Duration
}

func Load() *Config {
	brokers := strings.Split(getEnvStr(EnvKafkaBrokers, DefaultKafkaBrokers), ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}

	return &Config{
		Enabled:        getEnvBool(EnvKafkaEnabled, true),
		Brokers:        brokers,
		Topic:          getEnvStr(EnvKafkaTopic, DefaultKafkaTopic),
		BatchTimeout:   getEnvDuration(EnvKafkaBatchTimeout, DefaultKafkaBatchTimeout),
		MaxAttempts:    getEnvNum(EnvKafkaMaxAttempts, DefaultKafkaMaxAttempts),
		RequireAcks:    getEnvNum(EnvKafkaRequireAcks, DefaultKafkaRequireAcks),
		Compression:    getEnvStr(EnvKafkaCompression, DefaultKafkaCompression),
		Async:          getEnvBool(EnvKafkaProducerAsync, false),
		ProduceTimeout: getEnvDuration(EnvKafkaProduceTimeout, DefaultKafkaProduceTimeout),
	}
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
