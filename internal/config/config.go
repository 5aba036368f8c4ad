package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jwalitptl/clinic-triage/internal/middleware"
	"github.com/jwalitptl/clinic-triage/internal/router"
	"github.com/jwalitptl/clinic-triage/internal/service/notification"
	"github.com/jwalitptl/clinic-triage/internal/service/triage"
	"github.com/jwalitptl/clinic-triage/pkg/logger"
	"github.com/jwalitptl/clinic-triage/pkg/messaging"
	"github.com/jwalitptl/clinic-triage/pkg/worker"
)

// EnvPrefix prefixes every environment override, e.g. TRIAGE_SERVER_PORT.
const EnvPrefix = "TRIAGE"

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Triage      TriageConfig      `mapstructure:"triage"`
	Broker      BrokerConfig      `mapstructure:"broker"`
	Outbox      OutboxConfig      `mapstructure:"outbox"`
	Email       EmailConfig       `mapstructure:"email"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Security    SecurityConfig    `mapstructure:"security"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
	Log         LogConfig         `mapstructure:"log"`
	ReportCache ReportCacheConfig `mapstructure:"report_cache"`
	Worker      WorkerConfig      `mapstructure:"worker"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

type TriageConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
	BoardSlots   int           `mapstructure:"board_slots"`
	EventBuffer  int           `mapstructure:"event_buffer"`
}

type BrokerConfig struct {
	Driver  string      `mapstructure:"driver"`
	Channel string      `mapstructure:"channel"`
	Redis   RedisConfig `mapstructure:"redis"`
	Kafka   KafkaConfig `mapstructure:"kafka"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	GroupID string   `mapstructure:"group_id"`
}

type OutboxConfig struct {
	RetryAttempts  int           `mapstructure:"retry_attempts"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `mapstructure:"prometheus_enabled"`
	MetricsPath       string `mapstructure:"metrics_path"`
	Namespace         string `mapstructure:"namespace"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ReportCacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type WorkerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.max_body_bytes", 64<<10)

	v.SetDefault("triage.tick_interval", time.Second)
	v.SetDefault("triage.board_slots", triage.DefaultBoardSlots)
	v.SetDefault("triage.event_buffer", 256)

	v.SetDefault("broker.driver", messaging.DriverMemory)
	v.SetDefault("broker.channel", "triage.events")
	v.SetDefault("broker.redis.url", "redis://localhost:6379/0")
	v.SetDefault("broker.redis.max_retries", 3)
	v.SetDefault("broker.redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("broker.redis.pool_size", 10)
	v.SetDefault("broker.redis.min_idle_conns", 2)
	v.SetDefault("broker.kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("broker.kafka.group_id", "clinic-triage")

	v.SetDefault("outbox.retry_attempts", 3)
	v.SetDefault("outbox.retry_delay", 500*time.Millisecond)
	v.SetDefault("outbox.publish_timeout", 5*time.Second)

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.host", "localhost")
	v.SetDefault("email.port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from", "triage@localhost")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 50.0)
	v.SetDefault("rate_limit.burst", 100)

	v.SetDefault("security.allowed_origins", []string{"*"})
	v.SetDefault("security.allowed_methods", []string{"GET", "POST", "DELETE", "OPTIONS"})
	v.SetDefault("security.allowed_headers", []string{"Origin", "Content-Type", "Accept", middleware.HeaderXRequestID})

	v.SetDefault("monitoring.prometheus_enabled", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")
	v.SetDefault("monitoring.namespace", "clinic_triage")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("report_cache.ttl", 5*time.Minute)
	v.SetDefault("report_cache.cleanup_interval", 10*time.Minute)

	v.SetDefault("worker.health_port", 8081)
}

// LoadConfig reads an optional .env file, then config.yaml from paths (or
// the usual locations), then TRIAGE_* environment variables. Every key has
// a default, so no file is required.
func LoadConfig(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config", "/app/config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Broker.Driver) {
	case messaging.DriverMemory, messaging.DriverRedis, messaging.DriverKafka:
	default:
		return fmt.Errorf("broker.driver must be memory, redis or kafka, got %q", c.Broker.Driver)
	}
	if c.Broker.Channel == "" {
		return errors.New("broker.channel is required")
	}
	if c.Triage.TickInterval <= 0 {
		return errors.New("triage.tick_interval must be positive")
	}
	if c.Triage.BoardSlots <= 0 {
		return errors.New("triage.board_slots must be positive")
	}
	if c.Triage.EventBuffer <= 0 {
		return errors.New("triage.event_buffer must be positive")
	}
	if c.Outbox.RetryAttempts <= 0 || c.Outbox.RetryDelay <= 0 {
		return errors.New("outbox.retry_attempts and outbox.retry_delay must be positive")
	}
	return nil
}

// Add conversion methods to convert config types
func (c *Config) ToTriageConfig() triage.Config {
	return triage.Config{
		TickInterval:   c.Triage.TickInterval,
		ReportCacheTTL: c.ReportCache.TTL,
		CacheCleanup:   c.ReportCache.CleanupInterval,
	}
}

func (c *Config) ToRelayConfig() worker.EventRelayConfig {
	return worker.EventRelayConfig{
		BufferSize:     c.Triage.EventBuffer,
		Channel:        c.Broker.Channel,
		RetryAttempts:  c.Outbox.RetryAttempts,
		RetryDelay:     c.Outbox.RetryDelay,
		PublishTimeout: c.Outbox.PublishTimeout,
	}
}

func (c *BrokerConfig) ToBrokerConfig() messaging.Config {
	return messaging.Config{
		Driver: c.Driver,
		Redis: messaging.RedisConfig{
			URL:          c.Redis.URL,
			MaxRetries:   c.Redis.MaxRetries,
			RetryBackoff: c.Redis.RetryBackoff,
			PoolSize:     c.Redis.PoolSize,
			MinIdleConns: c.Redis.MinIdleConns,
		},
		Kafka: messaging.KafkaConfig{
			Brokers: c.Kafka.Brokers,
			GroupID: c.Kafka.GroupID,
		},
	}
}

func (c *EmailConfig) ToNotificationConfig() notification.Config {
	return notification.Config{
		Enabled:  c.Enabled,
		Host:     c.Host,
		Port:     c.Port,
		Username: c.Username,
		Password: c.Password,
		From:     c.From,
	}
}

func (c *Config) ToRouterConfig() router.RouterConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = c.Security.AllowedOrigins
	cors.AllowMethods = c.Security.AllowedMethods
	cors.AllowHeaders = c.Security.AllowedHeaders

	return router.RouterConfig{
		Mode:             c.Server.Mode,
		RateLimitEnabled: c.RateLimit.Enabled,
		RateLimit:        c.RateLimit.RequestsPerSecond,
		RateBurst:        c.RateLimit.Burst,
		CORSConfig:       cors,
		RequestTimeout:   c.Server.RequestTimeout,
		MaxBodySize:      c.Server.MaxBodyBytes,
		MetricsPath:      c.Monitoring.MetricsPath,
	}
}

func (c *LogConfig) ToLoggerConfig() *logger.Config {
	return &logger.Config{
		Level:      logger.ParseLevel(c.Level),
		TimeFormat: time.RFC3339,
		JSON:       strings.EqualFold(c.Format, "json"),
	}
}
