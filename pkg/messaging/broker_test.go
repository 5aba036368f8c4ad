package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-triage/pkg/logger"
	"github.com/jwalitptl/clinic-triage/pkg/messaging/memory"
)

func TestNewBroker(t *testing.T) {
	log := zerolog.Nop()

	b, err := NewBroker(Config{}, &log)
	require.NoError(t, err)
	assert.IsType(t, &memory.Broker{}, b)

	_, err = NewBroker(Config{Driver: "carrier-pigeon"}, &log)
	assert.Error(t, err)

	_, err = NewBroker(Config{Driver: DriverKafka}, &log)
	assert.Error(t, err)

	_, err = NewBroker(Config{Driver: DriverRedis, Redis: RedisConfig{URL: "not a url"}}, &log)
	assert.Error(t, err)
}

func TestConsume(t *testing.T) {
	broker := memory.NewBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan string, 100)
	done := make(chan error, 1)
	go func() {
		done <- Consume(ctx, broker, "triage.events", func(_ context.Context, payload []byte) error {
			received <- string(payload)
			if string(payload) == `"bad"` {
				return errors.New("rejected")
			}
			return nil
		}, logger.Nop())
	}()

	require.Eventually(t, func() bool {
		return broker.Publish(ctx, "triage.events", "bad") == nil && len(received) > 0
	}, time.Second, 10*time.Millisecond)
	require.NoError(t, broker.Publish(ctx, "triage.events", "good"))

	// The handler error does not stop consumption.
	assert.Equal(t, `"bad"`, <-received)
	for msg := range received {
		if msg == `"good"` {
			break
		}
		assert.Equal(t, `"bad"`, msg)
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}
