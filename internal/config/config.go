package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string   `yaml:"port" env:"SERVER_PORT" validate:"required,numeric"`
	Mode           string   `yaml:"mode" env:"SERVER_MODE" validate:"oneof=development production test"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
	ReadTimeout    string   `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" validate:"required"`
	WriteTimeout   string   `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" validate:"required"`
}

// DatabaseConfig holds PostgreSQL settings
type DatabaseConfig struct {
	Host            string `yaml:"host" env:"DB_HOST" validate:"required"`
	Port            string `yaml:"port" env:"DB_PORT" validate:"required,numeric"`
	User            string `yaml:"user" env:"DB_USER" validate:"required"`
	Password        string `yaml:"password" env:"DB_PASSWORD"`
	DBName          string `yaml:"dbname" env:"DB_NAME" validate:"required"`
	SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" validate:"gte=0"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" validate:"gte=1"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
}

// JWTConfig holds access token settings
type JWTConfig struct {
	Secret                string `yaml:"secret" env:"JWT_SECRET" validate:"required"`
	AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
	Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" validate:"oneof=debug info warn error fatal"`
	Format string `yaml:"format" env:"LOG_FORMAT" validate:"oneof=json text"`
}

// SMTPConfig holds outgoing mail settings. Mail is only logged when Host is empty.
type SMTPConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SMTP_FROM" validate:"omitempty,email"`
}

// SeedConfig holds the default administrator created by the seeder
type SeedConfig struct {
	AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL" validate:"omitempty,email"`
	AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD" validate:"required_with=AdminEmail"`
}

// Config structure represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Logging  LoggingConfig  `yaml:"logging"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Seed     SeedConfig     `yaml:"seed"`
}

// DefaultConfigPath is used when no path is given on the command line
const DefaultConfigPath = "configs/config.yaml"

// LoadConfig loads configuration from a file, a .env file and environment variables,
// in increasing order of precedence.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if configPath == "" {
		configPath = DefaultConfigPath
	}

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env only fills variables that are not already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := applyEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.AllowedOrigins = []string{"*"}
	config.Server.ReadTimeout = "15s"
	config.Server.WriteTimeout = "15s"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "volunteerhub"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "24h"
	config.JWT.Issuer = "volunteerhub"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.SMTP.Port = 587
}

var configValidator = validator.New()

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if err := configValidator.Struct(config); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	durations := map[string]string{
		"server.read_timeout":         config.Server.ReadTimeout,
		"server.write_timeout":        config.Server.WriteTimeout,
		"database.conn_max_lifetime":  config.Database.ConnMaxLifetime,
		"jwt.access_token_expiration": config.JWT.AccessTokenExpiration,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", name, err)
		}
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// durationOr parses value, falling back to def when it is empty or invalid.
// LoadConfig has already rejected invalid values.
func durationOr(value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// AccessTokenTTL returns the parsed access token lifetime
func (c *Config) AccessTokenTTL() time.Duration {
	return durationOr(c.JWT.AccessTokenExpiration, 24*time.Hour)
}

// ReadTimeout returns the HTTP server read timeout
func (c *Config) ReadTimeout() time.Duration {
	return durationOr(c.Server.ReadTimeout, 15*time.Second)
}

// WriteTimeout returns the HTTP server write timeout
func (c *Config) WriteTimeout() time.Duration {
	return durationOr(c.Server.WriteTimeout, 15*time.Second)
}

// ConnMaxLifetime returns how long a pooled connection may be reused
func (c *Config) ConnMaxLifetime() time.Duration {
	return durationOr(c.Database.ConnMaxLifetime, time.Hour)
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Mode == "production"
}
