package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	JWT           JWTConfig           `yaml:"jwt"`
	Log           LogConfig           `yaml:"log"`
	Payment       PaymentConfig       `yaml:"payment"`
	Redis         RedisConfig         `yaml:"redis"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Pricing       PricingConfig       `yaml:"pricing"`
	Booking       BookingConfig       `yaml:"booking"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
	File   string `yaml:"file"`   // optional rotating log file
}

// PaymentConfig selects the payment provider
type PaymentConfig struct {
	Type            string `yaml:"type"` // "stripe" or "mock"
	StripeSecretKey string `yaml:"stripe_secret_key"`
	Currency        string `yaml:"currency"`
}

// RedisConfig is shared by the booking lock and the event queue
type RedisConfig struct {
	Addr           string `yaml:"addr"`
	Password       string `yaml:"password"`
	DB             int    `yaml:"db"`
	QueueDB        int    `yaml:"queue_db"`
	LockTTLSeconds int    `yaml:"lock_ttl_seconds"`
}

// NotificationsConfig contains push and email delivery settings
type NotificationsConfig struct {
	FirebaseCredentialsFile string `yaml:"firebase_credentials_file"`
	SendGridAPIKey          string `yaml:"sendgrid_api_key"`
	FromEmail               string `yaml:"from_email"`
	FromName                string `yaml:"from_name"`
}

// PricingConfig holds the platform rates as fractions (0.15 = 15%)
type PricingConfig struct {
	ServiceFeePercent float64 `yaml:"service_fee_percent"`
	InsurancePercent  float64 `yaml:"insurance_percent"`
	CommissionPercent float64 `yaml:"commission_percent"`
	MaxCreditPercent  float64 `yaml:"max_credit_percent"`
}

// BookingConfig contains booking window and cancellation settings
type BookingConfig struct {
	MaxFutureDays         int `yaml:"max_future_days"`
	FreeCancellationHours int `yaml:"free_cancellation_hours"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	RetryPendingSettlements  string `yaml:"retry_pending_settlements"`
	RetryDepositRefunds      string `yaml:"retry_deposit_refunds"`
	RetryCancellationRefunds string `yaml:"retry_cancellation_refunds"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a Config from YAML bytes, applying env overrides and defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
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

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Payment
	if val := os.Getenv("PAYMENT_TYPE"); val != "" {
		c.Payment.Type = val
	}
	if val := os.Getenv("STRIPE_SECRET_KEY"); val != "" {
		c.Payment.StripeSecretKey = val
	}

	// Redis
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}

	// Notifications
	if val := os.Getenv("FIREBASE_CREDENTIALS_FILE"); val != "" {
		c.Notifications.FirebaseCredentialsFile = val
	}
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Notifications.SendGridAPIKey = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
	if val := os.Getenv("LOG_FILE"); val != "" {
		c.Log.File = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Payment validation
	if c.Payment.Type == "" {
		c.Payment.Type = "mock"
	}
	switch c.Payment.Type {
	case "mock":
	case "stripe":
		if c.Payment.StripeSecretKey == "" {
			return fmt.Errorf("stripe secret key is required when payment type is stripe")
		}
	default:
		return fmt.Errorf("unknown payment type: %s", c.Payment.Type)
	}
	if c.Payment.Currency == "" {
		c.Payment.Currency = "usd"
	}

	// Redis defaults
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.LockTTLSeconds == 0 {
		c.Redis.LockTTLSeconds = 30
	}

	// Pricing defaults
	if c.Pricing.ServiceFeePercent == 0 {
		c.Pricing.ServiceFeePercent = 0.15
	}
	if c.Pricing.InsurancePercent == 0 {
		c.Pricing.InsurancePercent = 0.10
	}
	if c.Pricing.CommissionPercent == 0 {
		c.Pricing.CommissionPercent = 0.20
	}
	if c.Pricing.MaxCreditPercent == 0 {
		c.Pricing.MaxCreditPercent = 0.50
	}
	for name, v := range map[string]float64{
		"service_fee_percent": c.Pricing.ServiceFeePercent,
		"insurance_percent":   c.Pricing.InsurancePercent,
		"commission_percent":  c.Pricing.CommissionPercent,
		"max_credit_percent":  c.Pricing.MaxCreditPercent,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("pricing %s must be between 0 and 1, got %v", name, v)
		}
	}

	// Booking defaults
	if c.Booking.MaxFutureDays == 0 {
		c.Booking.MaxFutureDays = 365
	}
	if c.Booking.FreeCancellationHours == 0 {
		c.Booking.FreeCancellationHours = 24
	}

	// Scheduler defaults
	if c.Scheduler.RetryPendingSettlements == "" {
		c.Scheduler.RetryPendingSettlements = "0 */15 * * * *" // Every 15 minutes
	}
	if c.Scheduler.RetryDepositRefunds == "" {
		c.Scheduler.RetryDepositRefunds = "0 0 * * * *" // Hourly
	}
	if c.Scheduler.RetryCancellationRefunds == "" {
		c.Scheduler.RetryCancellationRefunds = "0 30 * * * *" // Hourly, offset from deposit refunds
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

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
