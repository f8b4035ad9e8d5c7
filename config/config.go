package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"lotterypay/database"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string
	AutoMigrate  bool // Apply pending migrations on startup

	// HTTP configuration
	Port           string
	GRPCHealthPort string // Empty disables the gRPC health server

	// Payment gateway configuration
	MollieAPIKey string
	MollieAPIURL string // API root, paths such as v2/payments are resolved against it
	RedirectURL  string // Hosted checkout returns the customer here
	WebhookURL   string // Optional, gateway posts status changes here
	Currency     string

	// SMTP configuration
	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	SMTPSecure bool // Implicit TLS instead of STARTTLS
	FromEmail  string
	FromName   string

	// Lottery configuration
	LotteryMinNumber        int
	LotteryMaxNumber        int
	LotteryNumbersPerTicket int

	// NATS configuration
	NATSServers string // Empty keeps callback processing in-process

	// Discord operator alerts
	DiscordToken          string
	DiscordAlertChannelID string

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelServiceName          string
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelExportIntervalMillis int

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// DiscordAlertsEnabled reports whether operator alerts should be posted
func (c *Config) DiscordAlertsEnabled() bool {
	return c.DiscordToken != "" && c.DiscordAlertChannelID != ""
}

// Load reads configuration from the environment, after applying an optional .env file
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return load()
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// HTTP
		Port:           getEnvWithDefault("PORT", "3000"),
		GRPCHealthPort: os.Getenv("GRPC_HEALTH_PORT"),

		// Payment gateway
		MollieAPIKey: os.Getenv("MOLLIE_API_KEY"),
		MollieAPIURL: getEnvWithDefault("MOLLIE_API_URL", "https://api.mollie.com/"),
		RedirectURL:  os.Getenv("REDIRECT_URL"),
		WebhookURL:   os.Getenv("WEBHOOK_URL"),
		Currency:     getEnvWithDefault("CURRENCY", "EUR"),

		// SMTP
		SMTPHost:  os.Getenv("SMTP_HOST"),
		SMTPUser:  os.Getenv("SMTP_USER"),
		SMTPPass:  os.Getenv("SMTP_PASS"),
		FromEmail: os.Getenv("FROM_EMAIL"),
		FromName:  getEnvWithDefault("FROM_NAME", "De Boss Loterij"),

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),

		// Discord
		DiscordToken:          os.Getenv("DISCORD_TOKEN"),
		DiscordAlertChannelID: os.Getenv("DISCORD_ALERT_CHANNEL_ID"),

		// OpenTelemetry
		OTelServiceName:  getEnvWithDefault("OTEL_SERVICE_NAME", "lotterypay"),
		OTelExporterType: getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint: getEnvWithDefault("OTEL_OTLP_ENDPOINT", "localhost:4317"),

		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
	}

	var err error
	if config.AutoMigrate, err = getBoolEnv("AUTO_MIGRATE", false); err != nil {
		return nil, err
	}
	if config.SMTPSecure, err = getBoolEnv("SMTP_SECURE", false); err != nil {
		return nil, err
	}
	if config.OTelEnabled, err = getBoolEnv("OTEL_ENABLED", false); err != nil {
		return nil, err
	}
	if config.LotteryMinNumber, err = getIntEnv("LOTTERY_MIN_NUMBER", 1); err != nil {
		return nil, err
	}
	if config.LotteryMaxNumber, err = getIntEnv("LOTTERY_MAX_NUMBER", 45); err != nil {
		return nil, err
	}
	if config.LotteryNumbersPerTicket, err = getIntEnv("LOTTERY_NUMBERS_PER_TICKET", 6); err != nil {
		return nil, err
	}
	if config.OTelExportIntervalMillis, err = getIntEnv("OTEL_EXPORT_INTERVAL_MS", 60000); err != nil {
		return nil, err
	}

	if port := os.Getenv("SMTP_PORT"); port != "" {
		parsed, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", port, err)
		}
		config.SMTPPort = parsed
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks required settings and the lottery number range
func (c *Config) Validate() error {
	if c.Environment != "test" {
		required := []struct {
			name  string
			value string
		}{
			{"DATABASE_URL", c.DatabaseURL},
			{"MOLLIE_API_KEY", c.MollieAPIKey},
			{"REDIRECT_URL", c.RedirectURL},
			{"SMTP_HOST", c.SMTPHost},
			{"SMTP_USER", c.SMTPUser},
			{"SMTP_PASS", c.SMTPPass},
			{"FROM_EMAIL", c.FromEmail},
		}
		for _, r := range required {
			if strings.TrimSpace(r.value) == "" {
				return fmt.Errorf("%s is required", r.name)
			}
		}
		if c.SMTPPort == 0 {
			return fmt.Errorf("SMTP_PORT is required")
		}
	}

	if c.LotteryMinNumber > c.LotteryMaxNumber {
		return fmt.Errorf("LOTTERY_MIN_NUMBER (%d) must not exceed LOTTERY_MAX_NUMBER (%d)",
			c.LotteryMinNumber, c.LotteryMaxNumber)
	}
	if c.LotteryNumbersPerTicket < 1 {
		return fmt.Errorf("LOTTERY_NUMBERS_PER_TICKET must be at least 1")
	}
	if rangeSize := c.LotteryMaxNumber - c.LotteryMinNumber + 1; c.LotteryNumbersPerTicket > rangeSize {
		return fmt.Errorf("LOTTERY_NUMBERS_PER_TICKET (%d) exceeds the %d numbers available between %d and %d",
			c.LotteryNumbersPerTicket, rangeSize, c.LotteryMinNumber, c.LotteryMaxNumber)
	}

	return nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return parsed, nil
}

func getBoolEnv(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return parsed, nil
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:              "test",
		Port:                     "3000",
		MollieAPIKey:             "test_key",
		MollieAPIURL:             "https://api.mollie.com/",
		RedirectURL:              "https://example.test/thanks",
		Currency:                 "EUR",
		FromEmail:                "loterij@example.test",
		FromName:                 "De Boss Loterij",
		LotteryMinNumber:         1,
		LotteryMaxNumber:         45,
		LotteryNumbersPerTicket:  6,
		OTelServiceName:          "lotterypay",
		OTelExporterType:         "none",
		OTelExportIntervalMillis: 60000,
		LogLevel:                 "info",
	}
}
