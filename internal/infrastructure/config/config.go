package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// AdminPortalURL is the external origin non-standard users are sent to.
	// A cross-application redirect, not an in-app route.
	AdminPortalURL string `env:"ADMIN_PORTAL_URL, default=https://admin.rule27design.com"`

	// BootstrapDelay is the fixed head start given to the server-side
	// sign-up trigger before the callback looks for the profile.
	BootstrapDelay time.Duration `env:"BOOTSTRAP_DELAY, default=1500ms"`

	// ErrorRedirectDelay is how long a failed callback screen is shown
	// before the client is forced back to login.
	ErrorRedirectDelay time.Duration `env:"ERROR_REDIRECT_DELAY, default=3s"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=rule27_client"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
