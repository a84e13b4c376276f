package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	// Storage selects the repository backend: mongo or memory.
	Storage string `env:"STORAGE,   default=mongo"`

	Session    SessionConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	Classifier ClassifierConfig
	WebSocket  WebSocketConfig
	Admin      AdminConfig
}

type SessionConfig struct {
	JWTSecret     string        `env:"JWT_SECRET, required"`
	TTL           time.Duration `env:"SESSION_TTL,    default=1h"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL, default=1h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=eventsync"`
}

// RedisConfig is optional: with an empty address push messages stay in
// process and session-expired notices are not deduplicated.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type ClassifierConfig struct {
	URL     string        `env:"CLASSIFIER_URL, default=https://api-inference.huggingface.co/models/cardiffnlp/twitter-roberta-base-sentiment-latest"`
	APIKey  string        `env:"CLASSIFIER_API_KEY"`
	Timeout time.Duration `env:"CLASSIFIER_TIMEOUT, default=10s"`
	Workers int           `env:"CLASSIFY_WORKERS,   default=4"`
}

type WebSocketConfig struct {
	// AllowedOrigins are host patterns accepted for cross-origin handshakes.
	AllowedOrigins []string `env:"WS_ALLOWED_ORIGINS"`
}

// AdminConfig bootstraps one administrator at startup when all fields are set.
type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME"`
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

func (a AdminConfig) Enabled() bool {
	return a.Username != "" && a.Email != "" && a.Password != ""
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Storage != StorageMongo && c.Storage != StorageMemory {
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StorageMongo, StorageMemory, c.Storage)
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return errors.New("SWEEP_INTERVAL must be positive")
	}
	if c.Classifier.Workers <= 0 {
		return errors.New("CLASSIFY_WORKERS must be positive")
	}
	return nil
}
