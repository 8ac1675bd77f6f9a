package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Workflow WorkflowConfig
	Notify   NotifyConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=reservation_system"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type WorkflowConfig struct {
	// Strict switches transition validation from the permissive default to
	// the curated per-status transition graph.
	Strict bool `env:"WORKFLOW_STRICT, default=false"`
}

type NotifyConfig struct {
	// Workers is the number of delivery workers; requests for the same
	// reservation always land on the same worker.
	Workers int `env:"NOTIFY_WORKERS, default=4"`
	// MailerURL is the webhook endpoint notifications are POSTed to.
	MailerURL string `env:"MAILER_URL, default=http://localhost:8025/send"`
	// AppURL is the public base URL used to build tracking links.
	AppURL string `env:"APP_URL, default=http://localhost:3000"`
	// AdminEmail receives the admin copies of workflow notifications.
	AdminEmail string `env:"ADMIN_EMAIL, default=admin@merelformation.local"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
