package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Maker    MakerConfig    `mapstructure:"maker"`
	Sinks    SinksConfig    `mapstructure:"sinks"`
	Log      LogConfig      `mapstructure:"log"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// MakerConfig controls the producer loop.
type MakerConfig struct {
	MinRate       int           `mapstructure:"min_rate"`       // quotes per tick at start
	MaxRate       int           `mapstructure:"max_rate"`       // saturation rate
	BufferSeconds int           `mapstructure:"buffer_seconds"` // feed holds buffer_seconds * max_rate quotes
	Tick          time.Duration `mapstructure:"tick"`
	RateStep      time.Duration `mapstructure:"rate_step"` // cooldown between rate doublings
	StoreCapacity int           `mapstructure:"store_capacity"`
	Seed          int64         `mapstructure:"seed"` // 0 seeds from the clock
}

type SinksConfig struct {
	Stdout    bool            `mapstructure:"stdout"`
	QuoteFile string          `mapstructure:"quote_file"` // rotated text log of every quote (optional)
	Websocket WebsocketConfig `mapstructure:"websocket"`
	Postgres  ToggleConfig    `mapstructure:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
}

type ToggleConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type WebsocketConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Path    string `mapstructure:"path"`
}

type RedisConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Addr          string        `mapstructure:"addr"`
	Password      string        `mapstructure:"password"`
	DB            int           `mapstructure:"db"`
	ChannelPrefix string        `mapstructure:"channel_prefix"`
	LatestTTL     time.Duration `mapstructure:"latest_ttl"`
}

type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

// Options defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// Load reads config.yaml from the given directories (or the default search path when
// none are given), then applies a .env file and QUOTEMAKER_* environment overrides.
func Load(paths ...string) (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = searchPaths()
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Support environment variables with dot notation (e.g., QUOTEMAKER_MAKER_MAX_RATE)
	v.SetEnvPrefix("quotemaker")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects rate and buffer settings the maker cannot start with.
func (c *Config) Validate() error {
	m := c.Maker
	if m.MinRate <= 0 || m.MaxRate <= 0 || m.MinRate > m.MaxRate {
		return fmt.Errorf("%w: maker rates min=%d max=%d", ErrInvalidConfig, m.MinRate, m.MaxRate)
	}
	if m.BufferSeconds < 1 {
		return fmt.Errorf("%w: maker.buffer_seconds must be >= 1, got %d", ErrInvalidConfig, m.BufferSeconds)
	}
	if m.BufferSeconds > math.MaxInt/m.MaxRate {
		return fmt.Errorf("%w: maker.buffer_seconds*max_rate overflows (%d*%d)", ErrInvalidConfig, m.BufferSeconds, m.MaxRate)
	}
	if c.Sinks.Kafka.Enabled && (len(c.Sinks.Kafka.Brokers) == 0 || c.Sinks.Kafka.Topic == "") {
		return fmt.Errorf("%w: kafka sink needs brokers and topic", ErrInvalidConfig)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("maker.min_rate", 10)
	v.SetDefault("maker.max_rate", 10000)
	v.SetDefault("maker.buffer_seconds", 3)
	v.SetDefault("maker.tick", time.Second)
	v.SetDefault("maker.rate_step", time.Minute)
	v.SetDefault("maker.store_capacity", 100)
	v.SetDefault("maker.seed", 0)

	v.SetDefault("sinks.stdout", true)
	v.SetDefault("sinks.websocket.addr", ":8090")
	v.SetDefault("sinks.websocket.path", "/quotes")
	v.SetDefault("sinks.redis.addr", "localhost:6379")
	v.SetDefault("sinks.redis.channel_prefix", "quotes.")
	v.SetDefault("sinks.redis.latest_ttl", time.Minute)
	v.SetDefault("sinks.kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("sinks.kafka.topic", "quotes")
	v.SetDefault("sinks.kafka.batch_size", 100)
	v.SetDefault("sinks.kafka.batch_timeout", 10*time.Millisecond)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.environment", "dev")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.dbname", "quotemaker")
	v.SetDefault("postgres.sslmode", "disable")
}

func searchPaths() []string {
	paths := []string{"./config", "../config", "../../config"}
	if ex, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(ex), "../config"))
	}
	return paths
}
