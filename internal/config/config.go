// Package config loads the service configuration from the environment.
//
// It reads variables (optionally from a `.env` file), maps them into
// structured Go types and validates them so the process fails fast on bad
// driver settings.
//
// Responsibilities:
//   - Provide defaults for every optional block.
//   - Map NOTIFY_ prefixed env vars into the Config tree.
//   - Accept the legacy variable names used by Lambda deployments.
//   - Validate required values and cross-field driver rules.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads a `.env` file into the process env, if present.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read with the prefix NOTIFY_. The remainder is lowercased and
	"__" marks nesting, so

		NOTIFY_SERVER__PORT        -> server.port
		NOTIFY_CHANNELS__EMAIL     -> channels.email
		NOTIFY_STORE__KEY_PREFIX   -> store.key_prefix

	Lambda deployments use unprefixed names for the topics and the
	table; those are loaded first so the prefixed form wins when both exist.
*/

const (
	envPrefix    = "NOTIFY_"
	envDelimiter = "__"
	serviceName  = "notify-dispatch"
)

// legacyKeys maps the Lambda variable names to config keys.
var legacyKeys = map[string]string{
	"EMAIL_SNS_TOPIC_ARN": "channels.email",
	"SMS_SNS_TOPIC_ARN":   "channels.sms",
	"PUSH_SNS_TOPIC_ARN":  "channels.push",
	"DYNAMODB_TABLE_NAME": "store.table",
}

// Config is the root configuration object.
//
// Observability is a pointer because it is optional; defaults are injected
// when it is missing.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Store         StoreConfig          `koanf:"store" validate:"required"`
	Database      DatabaseConfig       `koanf:"database"`
	Redis         RedisConfig          `koanf:"redis"`
	AWS           AWSConfig            `koanf:"aws"`
	Kafka         KafkaConfig          `koanf:"kafka"`
	Channels      ChannelsConfig       `koanf:"channels"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server. Timeouts are seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// StoreConfig selects the usage store backend.
//
// Table is the postgres table or DynamoDB table name. KeyPrefix namespaces
// the redis hashes.
type StoreConfig struct {
	Driver    string `koanf:"driver" validate:"required,oneof=postgres redis dynamodb"`
	Table     string `koanf:"table" validate:"required"`
	KeyPrefix string `koanf:"key_prefix"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
// It is only required when Store.Driver is "postgres".
type DatabaseConfig struct {
	Host            string `koanf:"host"`
	Port            int    `koanf:"port"`
	User            string `koanf:"user"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name"`
	SSLMode         string `koanf:"ssl_mode"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time"`
}

// RedisConfig contains Redis connection details. Address is "host:port".
type RedisConfig struct {
	Address  string `koanf:"address"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// AWSConfig is used by the sns publisher and the dynamodb store. Empty
// values fall through to the SDK's default credential and region chain.
type AWSConfig struct {
	Region   string `koanf:"region"`
	Endpoint string `koanf:"endpoint"`
}

// KafkaConfig is used by the kafka publisher.
type KafkaConfig struct {
	Brokers []string `koanf:"brokers"`
}

// IntegrationConfig stores third-party API keys.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
}

// LoadConfig builds the configuration from defaults, legacy env vars and
// NOTIFY_ prefixed env vars, in that order of precedence (last wins).
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading config defaults: %w", err)
	}

	// Returning "" from the callback makes koanf skip the variable.
	err := k.Load(env.Provider("", ".", func(s string) string {
		return legacyKeys[s]
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading legacy env variables: %w", err)
	}

	err = k.Load(env.Provider(envPrefix, ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name is fixed; environment always follows primary.env.
	mainConfig.Observability.ServiceName = serviceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Validate(); err != nil {
		return nil, err
	}

	return mainConfig, nil
}

// envKey turns NOTIFY_SERVER__READ_TIMEOUT into server.read_timeout.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(key, envDelimiter, ".")
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"primary.env":          "development",
		"server.port":          "8080",
		"server.read_timeout":  30,
		"server.write_timeout": 30,
		"server.idle_timeout":  60,
		"store.driver":         "postgres",
		"store.table":          "notification_usage",
		"store.key_prefix":     "notify:usage",
		"database.port":        5432,
		"database.ssl_mode":    "disable",
		"channels.driver":      "sns",

		"observability.logging.level":                         "info",
		"observability.logging.format":                        "json",
		"observability.logging.slow_query_threshold":          "100ms",
		"observability.new_relic.app_log_forwarding_enabled":  true,
		"observability.new_relic.distributed_tracing_enabled": true,
		"observability.health_checks.enabled":                 true,
		"observability.health_checks.timeout":                 "5s",
	}
}

// Validate runs the struct-tag validator followed by the driver rules that
// tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	switch c.Store.Driver {
	case "postgres":
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "" {
			return fmt.Errorf("store driver postgres requires database.host, database.user and database.name")
		}
	case "redis":
		if c.Redis.Address == "" {
			return fmt.Errorf("store driver redis requires redis.address")
		}
	}

	if err := c.Channels.Validate(); err != nil {
		return err
	}

	switch {
	case c.Channels.Driver == "kafka" && len(c.Kafka.Brokers) == 0:
		return fmt.Errorf("channel driver kafka requires kafka.brokers")
	case c.Channels.Driver == "redis" && c.Redis.Address == "":
		return fmt.Errorf("channel driver redis requires redis.address")
	case c.Channels.EmailDriver == "resend" && c.Integration.ResendAPIKey == "":
		return fmt.Errorf("email driver resend requires integration.resend_api_key")
	}

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}
