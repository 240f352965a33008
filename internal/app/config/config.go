// Package config loads runtime settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// DefaultTokenExpiration is the token lifetime used when JWT_EXPIRE is unset.
const DefaultTokenExpiration = 7 * 24 * time.Hour

// Config holds runtime settings for the Flexora backend.
//
// Fields:
//   - Port: HTTP listen port.
//   - DBUser / DBPassword / DBHost / DBPort / DBName: MySQL connection settings.
//   - InstanceConnectionName: Cloud SQL unix-socket instance (overrides host/port).
//   - JWTSecret: HMAC secret for signing session tokens (HS256).
//   - JWTExpire: session token lifetime.
//   - UploadDir: root directory for uploaded avatar files.
//   - RedisHost / RedisPort / RedisPassword: optional profile cache backend.
//   - RunMigrations: whether to run gorm AutoMigrate at startup.
type Config struct {
	Port                   string
	DBUser                 string
	DBPassword             string
	DBHost                 string
	DBPort                 string
	DBName                 string
	InstanceConnectionName string
	JWTSecret              string
	JWTExpire              time.Duration
	UploadDir              string
	RedisHost              string
	RedisPort              string
	RedisPassword          string
	RunMigrations          bool
}

// Load reads the configuration from the environment and validates it.
// The process must not serve traffic when the signing secret or the
// database settings are absent, so those produce an error here.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                   getenvDefault("PORT", "8080"),
		DBUser:                 os.Getenv("DB_USER"),
		DBPassword:             os.Getenv("DB_PASSWORD"),
		DBHost:                 os.Getenv("DB_HOST"),
		DBPort:                 os.Getenv("DB_PORT"),
		DBName:                 os.Getenv("DB_NAME"),
		InstanceConnectionName: os.Getenv("INSTANCE_CONNECTION_NAME"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		JWTExpire:              DefaultTokenExpiration,
		UploadDir:              getenvDefault("UPLOAD_DIR", "uploads"),
		RedisHost:              os.Getenv("REDIS_HOST"),
		RedisPort:              os.Getenv("REDIS_PORT"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RunMigrations:          os.Getenv("RUN_MIGRATIONS") == "true",
	}

	if v := os.Getenv("JWT_EXPIRE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRE %q: %w", v, err)
		}
		cfg.JWTExpire = d
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate reports every missing required setting at once.
func (c *Config) validate() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.DBUser == "" {
		missing = append(missing, "DB_USER")
	}
	if c.DBName == "" {
		missing = append(missing, "DB_NAME")
	}
	if c.InstanceConnectionName == "" {
		if c.DBHost == "" {
			missing = append(missing, "DB_HOST")
		}
		if c.DBPort == "" {
			missing = append(missing, "DB_PORT")
		}
	}
	if len(missing) > 0 {
		return errors.New("missing required environment variables: " + strings.Join(missing, ", "))
	}
	return nil
}

// DSN returns the MySQL data source name. When InstanceConnectionName is set,
// it connects through the Cloud SQL unix socket instead of TCP.
func (c *Config) DSN() string {
	if c.InstanceConnectionName != "" {
		return fmt.Sprintf("%s:%s@unix(/cloudsql/%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			c.DBUser, c.DBPassword, c.InstanceConnectionName, c.DBName)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// RedisAddr returns the Redis endpoint, or "" when no cache is configured.
func (c *Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
