package messaging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-triage/pkg/messaging/kafka"
	"github.com/jwalitptl/clinic-triage/pkg/messaging/memory"
	"github.com/jwalitptl/clinic-triage/pkg/messaging/redis"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverKafka  = "kafka"
)

type Config struct {
	Driver string
	Redis  RedisConfig
	Kafka  KafkaConfig
}

type RedisConfig struct {
	URL          string
	MaxRetries   int
	RetryBackoff time.Duration
	PoolSize     int
	MinIdleConns int
}

type KafkaConfig struct {
	Brokers []string
	GroupID string
}

// NewBroker builds the broker selected by cfg.Driver. An empty driver means
// the in-process broker.
func NewBroker(cfg Config, logger *zerolog.Logger) (Broker, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverMemory:
		return memory.NewBroker(), nil
	case DriverRedis:
		b, err := redis.NewRedisBroker(redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	case DriverKafka:
		b, err := kafka.NewKafkaBroker(kafka.Config{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.GroupID,
		}, logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown broker driver %q", cfg.Driver)
	}
}
