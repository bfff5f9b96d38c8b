package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all application configuration, loaded from the environment.
type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Store    StoreConfig    `env:",prefix=STORE_"`
	Database DatabaseConfig `env:",prefix=DB_"`
	Auth     AuthConfig     `env:",prefix=AUTH_"`
	App      AppConfig      `env:",prefix=APP_"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port         string `env:"PORT,default=5000"`
	Host         string `env:"HOST,default=0.0.0.0"`
	ReadTimeout  int    `env:"READ_TIMEOUT,default=10"`  // seconds
	WriteTimeout int    `env:"WRITE_TIMEOUT,default=15"` // seconds
}

// StoreConfig selects and locates the record store.
type StoreConfig struct {
	// Backend is "file" (JSON containers under DataDir) or "postgres".
	Backend    string `env:"BACKEND,default=file"`
	DataDir    string `env:"DATA_DIR,default=data"`
	UploadsDir string `env:"UPLOADS_DIR,default=uploads"`
}

// DatabaseConfig holds PostgreSQL settings, used when the backend is postgres.
type DatabaseConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=postgres"`
	Password string `env:"PASSWORD,default=postgres"`
	Name     string `env:"NAME,default=site_server"`
	SSLMode  string `env:"SSL_MODE,default=disable"`
	MaxConns int    `env:"MAX_CONNS,default=20"`
	MinConns int    `env:"MIN_CONNS,default=10"`
}

// AuthConfig holds the admin credential and token settings. The defaults
// mirror the legacy deployment and are meant for development only.
type AuthConfig struct {
	AdminUsername string        `env:"ADMIN_USERNAME,default=admin"`
	AdminPassword string        `env:"ADMIN_PASSWORD,default=admin123"`
	JWTSecret     string        `env:"JWT_SECRET,default=dev-only-secret-change-me"`
	TokenTTL      time.Duration `env:"TOKEN_TTL,default=12h"`
}

// AppConfig holds application-wide settings.
type AppConfig struct {
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
}

// Load reads configuration from environment variables.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return &cfg, nil
}

// GetDatabaseURL returns the PostgreSQL connection string.
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// GetServerAddr returns the listen address.
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsProduction reports whether the app runs in production.
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}
