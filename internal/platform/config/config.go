package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides. Keys are prefix, section and
// field, e.g. VOUCH_SERVER_ADDR or VOUCH_STORAGE_BACKEND.
const EnvPrefix = "vouch"

// Storage backends.
const (
	StorageMemory   = "memory"
	StorageBadger   = "badger"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" split_words:"true"`
	Storage  StorageConfig  `yaml:"storage" split_words:"true"`
	Redis    RedisConfig    `yaml:"redis" split_words:"true"`
	Postgres PostgresConfig `yaml:"postgres" split_words:"true"`
	Kafka    KafkaConfig    `yaml:"kafka" split_words:"true"`
	Protocol ProtocolConfig `yaml:"protocol" split_words:"true"`
	Logging  LoggingConfig  `yaml:"logging" split_words:"true"`
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string        `yaml:"addr" envconfig:"ADDR"`
	MetricsAddr     string        `yaml:"metricsAddr" envconfig:"METRICS_ADDR"`
	JWTSigningKey   string        `yaml:"jwtSigningKey" envconfig:"JWT_SIGNING_KEY"`
	JWTIssuer       string        `yaml:"jwtIssuer" envconfig:"JWT_ISSUER"`
	AdminToken      string        `yaml:"adminToken" envconfig:"ADMIN_TOKEN"`
	RequestTimeout  time.Duration `yaml:"requestTimeout" envconfig:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// StorageConfig selects the ledger backend.
type StorageConfig struct {
	Backend   string `yaml:"backend" envconfig:"BACKEND"`
	BadgerDir string `yaml:"badgerDir" envconfig:"BADGER_DIR"`
}

// RedisConfig configures the Redis client used by the redis ledger backend.
type RedisConfig struct {
	URL          string        `yaml:"url" envconfig:"URL"`
	PoolSize     int           `yaml:"poolSize" envconfig:"POOL_SIZE"`
	MinIdleConns int           `yaml:"minIdleConns" envconfig:"MIN_IDLE_CONNS"`
	DialTimeout  time.Duration `yaml:"dialTimeout" envconfig:"DIAL_TIMEOUT"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"WRITE_TIMEOUT"`
}

// PostgresConfig configures the Postgres ledger backend and audit store.
type PostgresConfig struct {
	DSN          string        `yaml:"dsn" envconfig:"DSN"`
	Table        string        `yaml:"table" envconfig:"TABLE"`
	MaxOpenConns int           `yaml:"maxOpenConns" envconfig:"MAX_OPEN_CONNS"`
	MaxIdleConns int           `yaml:"maxIdleConns" envconfig:"MAX_IDLE_CONNS"`
	ConnMaxLife  time.Duration `yaml:"connMaxLifetime" envconfig:"CONN_MAX_LIFETIME"`
}

// KafkaConfig configures the event sink.
type KafkaConfig struct {
	Enabled           bool     `yaml:"enabled" envconfig:"ENABLED"`
	Brokers           []string `yaml:"brokers" envconfig:"BROKERS"`
	Topic             string   `yaml:"topic" envconfig:"TOPIC"`
	ClientID          string   `yaml:"clientId" envconfig:"CLIENT_ID"`
	Partitions        int32    `yaml:"partitions" envconfig:"PARTITIONS"`
	ReplicationFactor int16    `yaml:"replicationFactor" envconfig:"REPLICATION_FACTOR"`
}

// ProtocolConfig holds deployment switches for protocol behavior.
type ProtocolConfig struct {
	// AllowDirectProofs enables the legacy direct proof endpoints, which accept
	// proofs without an attestation signature.
	AllowDirectProofs bool `yaml:"allowDirectProofs" envconfig:"ALLOW_DIRECT_PROOFS"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			MetricsAddr:     ":9090",
			JWTSigningKey:   "dev-secret-key-change-in-production",
			JWTIssuer:       "vouch",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{Backend: StorageMemory},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Postgres: PostgresConfig{
			Table:        "ledger_records",
			MaxOpenConns: 20,
			MaxIdleConns: 5,
			ConnMaxLife:  30 * time.Minute,
		},
		Kafka: KafkaConfig{
			Topic:             "vouch.events",
			ClientID:          "vouch",
			Partitions:        3,
			ReplicationFactor: 1,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load reads an optional YAML file over the defaults, then applies
// environment overrides, then validates.
func Load(configFile string) (*Config, error) {
	cfg := Default()
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageMemory, StorageBadger:
	case StorageRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("redis url is required for the redis storage backend")
		}
	case StoragePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres dsn is required for the postgres storage backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka brokers are required when kafka is enabled")
	}
	if c.Server.JWTSigningKey == "" {
		return fmt.Errorf("jwt signing key is required")
	}
	return nil
}
