package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/jwalitptl/clinic-triage/pkg/circuitbreaker"
)

type Config struct {
	Brokers []string
	GroupID string
}

// KafkaBroker maps channels to topics. Messages exposing a Key method are
// written with that key so one patient's events stay on one partition.
type KafkaBroker struct {
	config Config
	writer *kafka.Writer
	cb     *circuitbreaker.CircuitBreaker
	logger *zerolog.Logger
}

type keyed interface {
	Key() string
}

func NewKafkaBroker(config Config, logger *zerolog.Logger) (*KafkaBroker, error) {
	if len(config.Brokers) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}
	if config.GroupID == "" {
		config.GroupID = "clinic-triage"
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(config.Brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}

	return &KafkaBroker{
		config: config,
		writer: writer,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:             "kafka-broker",
			MaxRequests:      1,
			Interval:         10 * time.Second,
			Timeout:          5 * time.Second,
			FailureThreshold: 5,
			OnStateChange: func(name, from, to string) {
				logger.Warn().Str("breaker", name).Str("from", from).Str("to", to).Msg("Circuit breaker state changed")
			},
		}),
		logger: logger,
	}, nil
}

// newMessage encodes message as JSON for topic channel, keyed when the
// message has a Key method.
func newMessage(channel string, message interface{}) (kafka.Message, error) {
	value, err := json.Marshal(message)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal message: %w", err)
	}

	msg := kafka.Message{Topic: channel, Value: value}
	if k, ok := message.(keyed); ok {
		msg.Key = []byte(k.Key())
	}
	return msg, nil
}

func (b *KafkaBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	msg, err := newMessage(channel, message)
	if err != nil {
		return err
	}

	return b.cb.Execute(func() error {
		if err := b.writer.WriteMessages(ctx, msg); err != nil {
			return fmt.Errorf("failed to write to topic %s: %w", channel, err)
		}
		return nil
	})
}

func (b *KafkaBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  b.config.Brokers,
		Topic:    channel,
		GroupID:  b.config.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	msgChan := make(chan []byte, 100)

	go func() {
		defer func() {
			reader.Close()
			close(msgChan)
		}()

		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				b.logger.Error().Err(err).Str("topic", channel).Msg("Failed to read message")
				select {
				case <-time.After(time.Second):
				case <-ctx.Done():
					return
				}
				continue
			}
			select {
			case msgChan <- msg.Value:
			case <-ctx.Done():
				return
			}
		}
	}()

	return msgChan, nil
}

func (b *KafkaBroker) Close() error {
	return b.writer.Close()
}
