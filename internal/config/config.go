package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"smartparking-backend/internal/utils"
)

const (
	StoreTypePostgres = "postgres"
	StoreTypeMemory   = "memory"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Store     StoreConfig     `yaml:"store"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	JWT       JWTConfig       `yaml:"jwt"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	Billing   BillingConfig   `yaml:"billing"`
	Booking   BookingConfig   `yaml:"booking"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	ReadTimeoutSeconds     int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int    `yaml:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	AutoMigrate  bool   `yaml:"auto_migrate"`
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Type string `yaml:"type"` // "postgres" or "memory"
}

// RedisConfig enables the available-space cache when Addr is set
type RedisConfig struct {
	Addr            string `yaml:"addr"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

// KafkaConfig enables lifecycle events when Brokers is set
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// SendGridConfig enables email when APIKey is set
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// JWTConfig contains operator token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	Issuer            string `yaml:"issuer"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// OperatorConfig is a staff account allowed to call the API
type OperatorConfig struct {
	Username     string   `yaml:"username"`
	PasswordHash string   `yaml:"password_hash"` // bcrypt
	Roles        []string `yaml:"roles"`
}

type AuthConfig struct {
	Operators []OperatorConfig `yaml:"operators"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// BillingConfig contains the flat tariff
type BillingConfig struct {
	HourlyRateCents int64 `yaml:"hourly_rate_cents"`
	MinimumFeeCents int64 `yaml:"minimum_fee_cents"`
}

// BookingConfig bounds lock waits and transaction retries
type BookingConfig struct {
	MaxTxAttempts      int `yaml:"max_tx_attempts"`
	LockTimeoutMillis  int `yaml:"lock_timeout_ms"`
	RetryBackoffMillis int `yaml:"retry_backoff_ms"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	SendPaymentReminders      string `yaml:"send_payment_reminders"`
	ReportOverdueReservations string `yaml:"report_overdue_reservations"`
	ReconcileSpaceStatus      string `yaml:"reconcile_space_status"`
}

// Load reads configuration from a YAML file. A .env file in the working
// directory is loaded first when present, and environment variables override
// file values. An empty path builds the configuration from the environment
// alone.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

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

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}
	if val := os.Getenv("STORE_TYPE"); val != "" {
		c.Store.Type = val
	}

	// Redis / Kafka / SendGrid
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}
	if val := os.Getenv("KAFKA_BROKERS"); val != "" {
		c.Kafka.Brokers = splitList(val)
	}
	if val := os.Getenv("KAFKA_TOPIC"); val != "" {
		c.Kafka.Topic = val
	}
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("SENDGRID_FROM_EMAIL"); val != "" {
		c.SendGrid.FromEmail = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Billing
	if val := os.Getenv("BILLING_HOURLY_RATE_CENTS"); val != "" {
		fmt.Sscanf(val, "%d", &c.Billing.HourlyRateCents)
	}
	if val := os.Getenv("BILLING_MINIMUM_FEE_CENTS"); val != "" {
		fmt.Sscanf(val, "%d", &c.Billing.MinimumFeeCents)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the configuration and fills in defaults
func (c *Config) Validate() error {
	// Server
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 15
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 15
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 10
	}

	// Store
	if c.Store.Type == "" {
		c.Store.Type = StoreTypePostgres
	}
	switch c.Store.Type {
	case StoreTypePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	case StoreTypeMemory:
	default:
		return fmt.Errorf("unknown store type: %q", c.Store.Type)
	}

	// JWT
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "smartparking"
	}

	for i, op := range c.Auth.Operators {
		if op.Username == "" || op.PasswordHash == "" {
			return fmt.Errorf("operator %d: username and password_hash are required", i)
		}
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Billing defaults
	if c.Billing.HourlyRateCents == 0 {
		c.Billing.HourlyRateCents = utils.DefaultHourlyRateCents
	}
	if c.Billing.MinimumFeeCents == 0 {
		c.Billing.MinimumFeeCents = utils.DefaultMinimumFeeCents
	}
	if err := c.Billing.Tariff().Validate(); err != nil {
		return fmt.Errorf("billing: %w", err)
	}

	// Booking defaults
	if c.Booking.MaxTxAttempts == 0 {
		c.Booking.MaxTxAttempts = 3
	}
	if c.Booking.LockTimeoutMillis == 0 {
		c.Booking.LockTimeoutMillis = 2000
	}
	if c.Booking.RetryBackoffMillis == 0 {
		c.Booking.RetryBackoffMillis = 50
	}

	// Redis / Kafka / SendGrid defaults
	if c.Redis.CacheTTLSeconds == 0 {
		c.Redis.CacheTTLSeconds = 30
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "parking.events"
	}
	if c.SendGrid.APIKey != "" && c.SendGrid.FromEmail == "" {
		return fmt.Errorf("sendgrid from_email is required when an API key is set")
	}
	if c.SendGrid.FromName == "" {
		c.SendGrid.FromName = "Smart Parking"
	}

	// Scheduler defaults
	if c.Scheduler.SendPaymentReminders == "" {
		c.Scheduler.SendPaymentReminders = "0 0 9 * * *" // Daily at 9 AM UTC
	}
	if c.Scheduler.ReportOverdueReservations == "" {
		c.Scheduler.ReportOverdueReservations = "0 */15 * * * *" // Every 15 minutes
	}
	if c.Scheduler.ReconcileSpaceStatus == "" {
		c.Scheduler.ReconcileSpaceStatus = "0 0 3 * * *" // 3 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (b BillingConfig) Tariff() utils.Tariff {
	return utils.Tariff{HourlyRateCents: b.HourlyRateCents, MinimumFeeCents: b.MinimumFeeCents}
}

func (b BookingConfig) LockTimeout() time.Duration {
	return time.Duration(b.LockTimeoutMillis) * time.Millisecond
}

func (b BookingConfig) RetryBackoff() time.Duration {
	return time.Duration(b.RetryBackoffMillis) * time.Millisecond
}

func (r RedisConfig) CacheTTL() time.Duration {
	return time.Duration(r.CacheTTLSeconds) * time.Second
}
