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

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags   string `mapstructure:"FEATURE_FLAGS"`
	Timezone       string `mapstructure:"TIMEZONE"`

	DBHost                        string `mapstructure:"DB_HOST"`
	DBPort                        string `mapstructure:"DB_PORT"`
	DBUser                        string `mapstructure:"DB_USER"`
	DBPassword                    string `mapstructure:"DB_PASSWORD"`
	DBName                        string `mapstructure:"DB_NAME"`
	DBSSLMode                     string `mapstructure:"DB_SSLMODE"`
	DBSchemaMode                  string `mapstructure:"DB_SCHEMA_MODE"`
	DBAutoMigrateAllowDestructive bool   `mapstructure:"DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE"`
	DBMaxOpenConns                int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns                int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes      int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`

	RedisURL string `mapstructure:"REDIS_URL"`

	JWTSecret      string `mapstructure:"JWT_SECRET"`
	JWTExpireHours int    `mapstructure:"JWT_EXPIRE_HOURS"`

	UploadPath    string `mapstructure:"UPLOAD_PATH"`
	MaxFileSizeMB int    `mapstructure:"MAX_FILE_SIZE_MB"`

	EmailService            string `mapstructure:"EMAIL_SERVICE"`
	EmailHost               string `mapstructure:"EMAIL_HOST"`
	EmailPort               int    `mapstructure:"EMAIL_PORT"`
	EmailUser               string `mapstructure:"EMAIL_USER"`
	EmailPassword           string `mapstructure:"EMAIL_PASSWORD"`
	EmailFrom               string `mapstructure:"EMAIL_FROM"`
	EmailSendTimeoutSeconds int    `mapstructure:"EMAIL_SEND_TIMEOUT_SECONDS"`

	OfficeProfilePath string `mapstructure:"OFFICE_PROFILE_PATH"`

	AdminBootstrap bool   `mapstructure:"ADMIN_BOOTSTRAP"`
	AdminEmail     string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword  string `mapstructure:"ADMIN_PASSWORD"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint        string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSamplerRatio float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
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
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("FEATURE_FLAGS", "")
	viper.SetDefault("TIMEZONE", "Asia/Jakarta")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "kunjungan")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_SCHEMA_MODE", "hybrid")
	viper.SetDefault("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE", false)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)

	viper.SetDefault("REDIS_URL", "localhost:6379")

	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_EXPIRE_HOURS", 24)

	viper.SetDefault("UPLOAD_PATH", "./uploads")
	viper.SetDefault("MAX_FILE_SIZE_MB", 10)

	viper.SetDefault("EMAIL_SERVICE", "smtp")
	viper.SetDefault("EMAIL_HOST", "")
	viper.SetDefault("EMAIL_PORT", 587)
	viper.SetDefault("EMAIL_USER", "")
	viper.SetDefault("EMAIL_PASSWORD", "")
	viper.SetDefault("EMAIL_FROM", "")
	viper.SetDefault("EMAIL_SEND_TIMEOUT_SECONDS", 30)

	viper.SetDefault("OFFICE_PROFILE_PATH", "")

	viper.SetDefault("ADMIN_BOOTSTRAP", false)
	viper.SetDefault("ADMIN_EMAIL", "admin@dprd.lampungprov.go.id")
	viper.SetDefault("ADMIN_PASSWORD", "")

	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.DBSchemaMode = strings.ToLower(strings.TrimSpace(c.DBSchemaMode))
	c.EmailService = strings.ToLower(strings.TrimSpace(c.EmailService))
	c.EmailHost = strings.TrimSpace(c.EmailHost)
	c.EmailUser = strings.TrimSpace(c.EmailUser)
	c.EmailFrom = strings.TrimSpace(c.EmailFrom)
	c.AdminEmail = strings.ToLower(strings.TrimSpace(c.AdminEmail))
	c.Timezone = strings.TrimSpace(c.Timezone)
}

// IsProduction reports whether the production profile is active.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Location returns the office time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MaxFileSizeBytes is the cover letter size cap.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

// SenderAddress is EMAIL_FROM, or EMAIL_USER when EMAIL_FROM is unset.
func (c *Config) SenderAddress() string {
	if c.EmailFrom != "" {
		return c.EmailFrom
	}
	return c.EmailUser
}

// EmailSendTimeout bounds a single detached email send.
func (c *Config) EmailSendTimeout() time.Duration {
	if c.EmailSendTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.EmailSendTimeoutSeconds) * time.Second
}

// JWTTTL is the lifetime of an admin session token.
func (c *Config) JWTTTL() time.Duration {
	if c.JWTExpireHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.JWTExpireHours) * time.Hour
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.MaxFileSizeMB < 1 || c.MaxFileSizeMB > 50 {
		return fmt.Errorf("MAX_FILE_SIZE_MB must be between 1 and 50, got %d", c.MaxFileSizeMB)
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("TIMEZONE %q is not a known location: %w", c.Timezone, err)
		}
	}
	if c.DBConnMaxLifetimeMinutes < 0 {
		return errors.New("DB_CONN_MAX_LIFETIME_MINUTES must not be negative")
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
			return errors.New("DB_SSLMODE must enable SSL in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	if c.AdminBootstrap && c.AdminPassword == "" {
		return errors.New("ADMIN_PASSWORD must be set when ADMIN_BOOTSTRAP is enabled")
	}

	return nil
}
