package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-triage/pkg/logger"
	"github.com/jwalitptl/clinic-triage/pkg/messaging"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, time.Second, cfg.Triage.TickInterval)
	assert.Equal(t, 5, cfg.Triage.BoardSlots)
	assert.Equal(t, messaging.DriverMemory, cfg.Broker.Driver)
	assert.Equal(t, "triage.events", cfg.Broker.Channel)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Broker.Kafka.Brokers)
	assert.Equal(t, "/metrics", cfg.Monitoring.MetricsPath)
	assert.False(t, cfg.Email.Enabled)
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: 9090
triage:
  tick_interval: 250ms
  board_slots: 3
broker:
  driver: redis
  redis:
    url: redis://cache:6379/1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Triage.TickInterval)
	assert.Equal(t, 3, cfg.Triage.BoardSlots)
	assert.Equal(t, messaging.DriverRedis, cfg.Broker.Driver)
	assert.Equal(t, "redis://cache:6379/1", cfg.Broker.Redis.URL)
	// untouched keys keep their defaults
	assert.Equal(t, 256, cfg.Triage.EventBuffer)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TRIAGE_BROKER_DRIVER", "kafka")
	t.Setenv("TRIAGE_BROKER_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TRIAGE_TRIAGE_TICK_INTERVAL", "2s")
	t.Setenv("TRIAGE_EMAIL_ENABLED", "true")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, messaging.DriverKafka, cfg.Broker.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Broker.Kafka.Brokers)
	assert.Equal(t, 2*time.Second, cfg.Triage.TickInterval)
	assert.True(t, cfg.Email.Enabled)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"TRIAGE_BROKER_DRIVER": "nats"}},
		{"zero tick", map[string]string{"TRIAGE_TRIAGE_TICK_INTERVAL": "0s"}},
		{"zero board", map[string]string{"TRIAGE_TRIAGE_BOARD_SLOTS": "0"}},
		{"zero retries", map[string]string{"TRIAGE_OUTBOX_RETRY_ATTEMPTS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(t.TempDir())
			assert.Error(t, err)
		})
	}
}

func TestConversions(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	relay := cfg.ToRelayConfig()
	assert.Equal(t, cfg.Triage.EventBuffer, relay.BufferSize)
	assert.Equal(t, cfg.Broker.Channel, relay.Channel)
	assert.Equal(t, cfg.Outbox.RetryAttempts, relay.RetryAttempts)

	broker := cfg.Broker.ToBrokerConfig()
	assert.Equal(t, cfg.Broker.Driver, broker.Driver)
	assert.Equal(t, cfg.Broker.Redis.URL, broker.Redis.URL)
	assert.Equal(t, cfg.Broker.Kafka.GroupID, broker.Kafka.GroupID)

	svc := cfg.ToTriageConfig()
	assert.Equal(t, cfg.Triage.TickInterval, svc.TickInterval)
	assert.Equal(t, cfg.ReportCache.TTL, svc.ReportCacheTTL)

	rc := cfg.ToRouterConfig()
	assert.Equal(t, []string{"*"}, rc.CORSConfig.AllowOrigins)
	assert.Equal(t, cfg.RateLimit.Burst, rc.RateBurst)
	assert.Equal(t, cfg.Server.MaxBodyBytes, rc.MaxBodySize)

	mail := cfg.Email.ToNotificationConfig()
	assert.Equal(t, cfg.Email.From, mail.From)

	logCfg := (&LogConfig{Level: "debug", Format: "json"}).ToLoggerConfig()
	assert.Equal(t, logger.DebugLevel, logCfg.Level)
	assert.True(t, logCfg.JSON)
}
