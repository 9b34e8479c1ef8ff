package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/xo/dburl"
	"gopkg.in/yaml.v3"

	"journal-backend/internal/storage"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Storage    StorageConfig    `yaml:"storage"`
	Email      EmailConfig      `yaml:"email"`
	Invitation InvitationConfig `yaml:"invitation"`
	JWT        JWTConfig        `yaml:"jwt"`
	Site       SiteConfig       `yaml:"site"`
	Log        LogConfig        `yaml:"log"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
}

// ServerConfig contains HTTP and gRPC listener settings
type ServerConfig struct {
	Host           string   `yaml:"host" env:"SERVER_HOST"`
	Port           int      `yaml:"port" env:"SERVER_PORT"`
	GRPCPort       int      `yaml:"grpc_port" env:"GRPC_PORT"`
	BaseURL        string   `yaml:"base_url" env:"BASE_URL"` // public URL used in mail links
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// DatabaseConfig contains PostgreSQL connection settings. URL, when set, wins over the
// discrete fields.
type DatabaseConfig struct {
	URL      string `yaml:"url" env:"DATABASE_URL"`
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Database string `yaml:"database" env:"DB_NAME"`
	SSLMode  string `yaml:"ssl_mode" env:"DB_SSL_MODE"`
}

// RedisConfig enables the shared menu cache. An empty Addr keeps the cache in process.
type RedisConfig struct {
	Addr       string `yaml:"addr" env:"REDIS_ADDR"`
	Password   string `yaml:"password" env:"REDIS_PASSWORD"`
	DB         int    `yaml:"db" env:"REDIS_DB"`
	Prefix     string `yaml:"prefix" env:"REDIS_PREFIX"`
	TTLMinutes int    `yaml:"ttl_minutes" env:"MENU_CACHE_TTL_MINUTES"`
}

// StorageConfig contains import document storage settings
type StorageConfig struct {
	Type            string `yaml:"type" env:"STORAGE_TYPE"` // "local" or "s3"
	LocalDir        string `yaml:"local_dir" env:"STORAGE_LOCAL_DIR"`
	Bucket          string `yaml:"bucket" env:"S3_BUCKET"`
	Region          string `yaml:"region" env:"AWS_REGION"`
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT"`
	AccessKeyID     string `yaml:"access_key_id" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
}

// EmailConfig contains SendGrid settings
type EmailConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
	FromEmail      string `yaml:"from_email" env:"MAIL_FROM_EMAIL"`
	FromName       string `yaml:"from_name" env:"MAIL_FROM_NAME"`
}

type InvitationConfig struct {
	ExpiryDays int `yaml:"expiry_days" env:"INVITATION_EXPIRY_DAYS"`
}

// JWTConfig contains admin API token settings
type JWTConfig struct {
	Secret        string `yaml:"secret" env:"JWT_SECRET"`
	Issuer        string `yaml:"issuer" env:"JWT_ISSUER"`
	ExpiryMinutes int    `yaml:"expiry_minutes" env:"JWT_EXPIRY_MINUTES"`
}

type SiteConfig struct {
	PrimaryLocale string `yaml:"primary_locale" env:"SITE_PRIMARY_LOCALE"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`   // "debug", "info", "warn", "error"
	Format string `yaml:"format" env:"LOG_FORMAT"` // "json" or "text"
}

// TelemetryConfig turns on OTLP trace export.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" env:"OTEL_ENABLED"`
	Endpoint    string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure    bool   `yaml:"insecure" env:"OTEL_EXPORTER_OTLP_INSECURE"`
	ServiceName string `yaml:"service_name" env:"OTEL_SERVICE_NAME"`
}

// SchedulerConfig contains cron schedules, with seconds
type SchedulerConfig struct {
	ExpireInvitations string `yaml:"expire_invitations" env:"CRON_EXPIRE_INVITATIONS"`
	DeliverQueuedMail string `yaml:"deliver_queued_mail" env:"CRON_DELIVER_QUEUED_MAIL"`
	MailBatchSize     int    `yaml:"mail_batch_size" env:"MAIL_BATCH_SIZE"`
}

// Load reads configuration from a YAML file, then a .env file, then the environment.
// An empty configPath skips the YAML step.
func Load(configPath string) (*Config, error) {
	var cfg Config
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.Server.GRPCPort)
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server base_url is required")
	}
	if u, err := url.Parse(c.Server.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server base_url %q must be an absolute URL", c.Server.BaseURL)
	}

	if c.Database.URL == "" {
		if c.Database.Host == "" {
			return fmt.Errorf("database url or host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "journal-backend"
	}
	if c.JWT.ExpiryMinutes == 0 {
		c.JWT.ExpiryMinutes = 60
	}

	if c.Storage.Type == "" {
		c.Storage.Type = "local"
	}
	switch c.Storage.Type {
	case "local":
		if c.Storage.LocalDir == "" {
			c.Storage.LocalDir = "./data/documents"
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("s3 bucket is required")
		}
	default:
		return fmt.Errorf("unknown storage type: %s", c.Storage.Type)
	}

	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "journal:"
	}
	if c.Redis.TTLMinutes == 0 {
		c.Redis.TTLMinutes = 60
	}
	if c.Invitation.ExpiryDays == 0 {
		c.Invitation.ExpiryDays = 3
	}
	if c.Site.PrimaryLocale == "" {
		c.Site.PrimaryLocale = "en"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "journal-backend"
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry endpoint is required when telemetry is enabled")
	}

	if c.Scheduler.ExpireInvitations == "" {
		c.Scheduler.ExpireInvitations = "0 0 * * * *" // hourly
	}
	if c.Scheduler.DeliverQueuedMail == "" {
		c.Scheduler.DeliverQueuedMail = "0 * * * * *" // every minute
	}
	if c.Scheduler.MailBatchSize == 0 {
		c.Scheduler.MailBatchSize = 50
	}
	return nil
}

// DatabaseDriverAndDSN returns the sql driver name and data source for sql.Open.
func (c *Config) DatabaseDriverAndDSN() (string, string, error) {
	raw := c.Database.URL
	if raw == "" {
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.Database.User, c.Database.Password),
			Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
			Path:     "/" + c.Database.Database,
			RawQuery: url.Values{"sslmode": {c.Database.SSLMode}}.Encode(),
		}
		raw = u.String()
	}
	u, err := dburl.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse database url: %w", err)
	}
	return u.Driver, u.DSN, nil
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetGRPCAddress returns the gRPC listen address, or "" when gRPC is off.
func (c *Config) GetGRPCAddress() string {
	if c.Server.GRPCPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

func (c *Config) MenuCacheTTL() time.Duration {
	return time.Duration(c.Redis.TTLMinutes) * time.Minute
}

func (c *Config) TokenExpiry() time.Duration {
	return time.Duration(c.JWT.ExpiryMinutes) * time.Minute
}

// StorageOptions converts the storage section for storage.New.
func (c *Config) StorageOptions() storage.Config {
	return storage.Config{
		Type:            c.Storage.Type,
		LocalDir:        c.Storage.LocalDir,
		BaseURL:         c.Server.BaseURL,
		Bucket:          c.Storage.Bucket,
		Region:          c.Storage.Region,
		Endpoint:        c.Storage.Endpoint,
		AccessKeyID:     c.Storage.AccessKeyID,
		SecretAccessKey: c.Storage.SecretAccessKey,
	}
}
