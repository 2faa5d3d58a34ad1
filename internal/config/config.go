package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration. It is constructed once at
// startup and passed by reference; nothing reads ambient environment state
// mid-request.
type Config struct {
	Env        string `envconfig:"ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"debug"`
	ServerPort string `envconfig:"PORT" default:"7100"`

	// Database (PostgreSQL)
	DBHost    string `envconfig:"DB_HOST" required:"true"`
	DBPort    string `envconfig:"DB_PORT" default:"5432"`
	DBUser    string `envconfig:"DB_USER" required:"true"`
	DBPass    string `envconfig:"DB_PASSWORD" required:"true"`
	DBName    string `envconfig:"DB_NAME" required:"true"`
	DBSSLMode string `envconfig:"DB_SSL_MODE" default:"disable"`

	// Redis (backs the login/register rate limiter)
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// JWT: токены живут один час, продление только повторным логином.
	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"1h"`

	// Object store for uploaded images (any S3-compatible endpoint)
	S3Endpoint  string `envconfig:"S3_ENDPOINT" required:"true"`
	S3Region    string `envconfig:"S3_REGION" default:"auto"`
	S3Bucket    string `envconfig:"S3_BUCKET" required:"true"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY" required:"true"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY" required:"true"`
	S3BaseURL   string `envconfig:"S3_BASE_URL" required:"true"`

	// Mail sender
	SMTPHost     string `envconfig:"SMTP_HOST" required:"true"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME" default:""`
	SMTPPassword string `envconfig:"SMTP_PASSWORD" default:""`
	SMTPFrom     string `envconfig:"SMTP_FROM" required:"true"`

	// CORS Settings
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// DatabaseDSN builds the postgres connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadConfig loads configuration from environment variables. Required fields
// (the signing secret above all) abort startup when missing: the service must
// fail closed rather than run unsigned.
func LoadConfig(envFilePath string) (*Config, error) {
	if _, err := os.Stat(envFilePath); err == nil {
		if err := godotenv.Load(envFilePath); err != nil {
			log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
		} else {
			log.Printf("Loaded configuration from %s", envFilePath)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	return &cfg, nil
}
