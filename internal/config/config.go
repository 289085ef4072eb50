// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultJWTSecret is the development fallback; it is rejected in production.
const DefaultJWTSecret = "your-secret-key-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port              string  `mapstructure:"PORT"`
	Env               string  `mapstructure:"APP_ENV"`
	DBPath            string  `mapstructure:"DB_PATH"`
	DBSchemaMode      string  `mapstructure:"DB_SCHEMA_MODE"`
	JWTSecret         string  `mapstructure:"JWT_SECRET"`
	CSRFSecret        string  `mapstructure:"CSRF_SECRET"`
	SessionTTLHours   int     `mapstructure:"SESSION_TTL_HOURS"`
	CookieSecure      bool    `mapstructure:"COOKIE_SECURE"`
	RedisURL          string  `mapstructure:"REDIS_URL"`
	AllowedOrigins    string  `mapstructure:"ALLOWED_ORIGINS"`
	CountriesBaseURL  string  `mapstructure:"COUNTRIES_BASE_URL"`
	CountriesTimeout  int     `mapstructure:"COUNTRIES_TIMEOUT_SECONDS"`
	StorageDriver     string  `mapstructure:"STORAGE_DRIVER"`
	UploadDir         string  `mapstructure:"UPLOAD_DIR"`
	PublicUploadPath  string  `mapstructure:"PUBLIC_UPLOAD_PREFIX"`
	S3Bucket          string  `mapstructure:"S3_BUCKET"`
	S3Region          string  `mapstructure:"S3_REGION"`
	S3Endpoint        string  `mapstructure:"S3_ENDPOINT"`
	S3AccessKey       string  `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey       string  `mapstructure:"S3_SECRET_KEY"`
	ImageMaxUploadMB  int     `mapstructure:"IMAGE_MAX_UPLOAD_SIZE_MB"`
	TracingEnabled    bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter   string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint      string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRate float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
	LogLevel          string  `mapstructure:"LOG_LEVEL"`
	// SeedPreset names a seed preset applied at startup to an empty
	// development database.
	SeedPreset string `mapstructure:"SEED_PRESET"`
}

// LoadConfig loads application configuration from .env, config files and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// Initial read to get APP_ENV if set in base config
	// We intentionally ignore this error as the config file may not exist yet
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.normalize()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "8375")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_PATH", "wanderlog.db")
	viper.SetDefault("DB_SCHEMA_MODE", "hybrid")
	viper.SetDefault("JWT_SECRET", DefaultJWTSecret)
	viper.SetDefault("CSRF_SECRET", "")
	viper.SetDefault("SESSION_TTL_HOURS", 24)
	viper.SetDefault("COOKIE_SECURE", false)
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("COUNTRIES_BASE_URL", "https://restcountries.com/v3.1")
	viper.SetDefault("COUNTRIES_TIMEOUT_SECONDS", 10)
	viper.SetDefault("STORAGE_DRIVER", "local")
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.SetDefault("PUBLIC_UPLOAD_PREFIX", "/uploads")
	viper.SetDefault("S3_BUCKET", "")
	viper.SetDefault("S3_REGION", "us-east-1")
	viper.SetDefault("S3_ENDPOINT", "")
	viper.SetDefault("S3_ACCESS_KEY", "")
	viper.SetDefault("S3_SECRET_KEY", "")
	viper.SetDefault("IMAGE_MAX_UPLOAD_SIZE_MB", 5)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SEED_PRESET", "")
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.DBSchemaMode = strings.ToLower(strings.TrimSpace(c.DBSchemaMode))
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	if c.CSRFSecret == "" && !c.IsProduction() {
		c.CSRFSecret = c.JWTSecret
	}
}

// IsProduction reports whether the config targets a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// SessionTTL is the lifetime of session credentials and their cookies.
func (c *Config) SessionTTL() time.Duration {
	if c.SessionTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// CountriesRequestTimeout bounds a single upstream country lookup.
func (c *Config) CountriesRequestTimeout() time.Duration {
	if c.CountriesTimeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.CountriesTimeout) * time.Second
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.ImageMaxUploadMB <= 0 {
		return errors.New("IMAGE_MAX_UPLOAD_SIZE_MB must be greater than zero")
	}
	switch c.StorageDriver {
	case "", "local":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}

	// Strict checks for production
	if c.IsProduction() {
		if c.JWTSecret == DefaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.CSRFSecret == "" {
			return errors.New("CSRF_SECRET is required in production")
		}
		if !c.CookieSecure {
			log.Println("WARNING: COOKIE_SECURE is false in production. Session cookies will be sent over plain HTTP.")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
