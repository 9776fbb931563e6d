// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	JWTSecret   string `mapstructure:"JWT_SECRET"`
	JWTTTLHours int    `mapstructure:"JWT_TTL_HOURS"`

	DBHost                   string `mapstructure:"DB_HOST"`
	DBPort                   string `mapstructure:"DB_PORT"`
	DBUser                   string `mapstructure:"DB_USER"`
	DBPassword               string `mapstructure:"DB_PASSWORD"`
	DBName                   string `mapstructure:"DB_NAME"`
	DBSSLMode                string `mapstructure:"DB_SSLMODE"`
	DBReadHost               string `mapstructure:"DB_READ_HOST"`
	DBReadPort               string `mapstructure:"DB_READ_PORT"`
	DBReadUser               string `mapstructure:"DB_READ_USER"`
	DBReadPassword           string `mapstructure:"DB_READ_PASSWORD"`
	DBSchemaMode             string `mapstructure:"DB_SCHEMA_MODE"`
	DBMaxOpenConns           int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`

	RedisURL string `mapstructure:"REDIS_URL"`

	ImageStore           string `mapstructure:"IMAGE_STORE"`
	MediaDir             string `mapstructure:"MEDIA_DIR"`
	MediaURLPrefix       string `mapstructure:"MEDIA_URL_PREFIX"`
	ImageMaxUploadSizeMB int    `mapstructure:"IMAGE_MAX_UPLOAD_SIZE_MB"`
	S3Bucket             string `mapstructure:"S3_BUCKET"`
	S3Region             string `mapstructure:"S3_REGION"`
	S3Endpoint           string `mapstructure:"S3_ENDPOINT"`
	S3PublicURL          string `mapstructure:"S3_PUBLIC_URL"`
	S3AccessKeyID        string `mapstructure:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey    string `mapstructure:"S3_SECRET_ACCESS_KEY"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint        string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSamplerRatio float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional; env vars and defaults are enough to boot.
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

	viper.SetDefault("PORT", "8000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_TTL_HOURS", 24*7)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "foodgram")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "foodgram")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_READ_HOST", "")
	viper.SetDefault("DB_READ_PORT", "5432")
	viper.SetDefault("DB_READ_USER", "foodgram")
	viper.SetDefault("DB_READ_PASSWORD", "password")
	viper.SetDefault("DB_SCHEMA_MODE", "hybrid")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("IMAGE_STORE", "local")
	viper.SetDefault("MEDIA_DIR", "./media")
	viper.SetDefault("MEDIA_URL_PREFIX", "/media")
	viper.SetDefault("IMAGE_MAX_UPLOAD_SIZE_MB", 10)
	viper.SetDefault("S3_BUCKET", "")
	viper.SetDefault("S3_REGION", "us-east-1")
	viper.SetDefault("S3_ENDPOINT", "")
	viper.SetDefault("S3_PUBLIC_URL", "")
	viper.SetDefault("S3_ACCESS_KEY_ID", "")
	viper.SetDefault("S3_SECRET_ACCESS_KEY", "")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)

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

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.DBSchemaMode = strings.ToLower(strings.TrimSpace(c.DBSchemaMode))
	c.ImageStore = strings.ToLower(strings.TrimSpace(c.ImageStore))
	c.MediaURLPrefix = "/" + strings.Trim(strings.TrimSpace(c.MediaURLPrefix), "/")
}

// IsProduction reports whether the config targets a production environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTTTLHours <= 0 {
		return errors.New("JWT_TTL_HOURS must be positive")
	}

	switch c.ImageStore {
	case "", "local":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when IMAGE_STORE=s3")
		}
	default:
		return fmt.Errorf("unsupported IMAGE_STORE %q", c.ImageStore)
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable TLS in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
