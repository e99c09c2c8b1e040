package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	Environment string     `envconfig:"ENVIRONMENT" default:"development"`
	Port        string     `envconfig:"PORT" default:"3000"`
	LogLevel    slog.Level `envconfig:"LOG_LEVEL" default:"INFO"`

	Database DatabaseConfig `envconfig:"DATABASE"`
	Mongo    MongoConfig    `envconfig:"MONGO"`
	RedisURL string         `envconfig:"REDIS_URL"`

	Admin AdminConfig `envconfig:"ADMIN"`
	JWT   JWTConfig   `envconfig:"JWT"`
	AI    AIConfig    `envconfig:"AI"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	EventsTopic  string   `envconfig:"EVENTS_TOPIC" default:"question-events"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

type DatabaseConfig struct {
	Driver string `envconfig:"DRIVER" default:"mongo"`
	// Postgres DSN, read from DATABASE_URL
	URL string `envconfig:"URL"`
}

type MongoConfig struct {
	URI      string `envconfig:"URI" default:"mongodb://localhost:27017/mydb"`
	Database string `envconfig:"DATABASE" default:"mydb"`
}

// AdminConfig is the account bootstrapped at startup.
type AdminConfig struct {
	Email    string `envconfig:"EMAIL" default:"admin@yopmail.com"`
	Password string `envconfig:"PASSWORD" default:"admin@123"`
	Name     string `envconfig:"NAME" default:"Admin User"`
}

type JWTConfig struct {
	Secret    string        `envconfig:"SECRET" default:"knowledgesecrete"`
	ExpiresIn time.Duration `envconfig:"EXPIRES_IN" default:"1h"`
}

type AIConfig struct {
	APIKey string `envconfig:"API_KEY"`
	APIURL string `envconfig:"API_URL"`
	Model  string `envconfig:"MODEL" default:"gemini-2.0-flash"`
}

// LoadConfig reads an optional .env file and decodes the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMongo:
		if c.Mongo.URI == "" {
			return errors.New("MONGO_URI is required when DATABASE_DRIVER=mongo")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is required when DATABASE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}

	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.JWT.ExpiresIn <= 0 {
		return errors.New("JWT_EXPIRES_IN must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
