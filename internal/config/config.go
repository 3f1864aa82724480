package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	Database    DatabaseConfig
	Paystack    PaystackConfig
	Auth        AuthConfig
	Checkout    CheckoutConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string // DB_MIGRATIONS_PATH: directory holding golang-migrate files
	AutoMigrate    bool   // DB_AUTO_MIGRATE: apply pending migrations when the server starts
}

// DSN returns a lib/pq keyword/value connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// PaystackConfig is used to verify webhooks and call the transaction API
type PaystackConfig struct {
	SecretKey string // PAYSTACK_SECRET_KEY: HMAC key for x-paystack-signature and API bearer token
	BaseURL   string // e.g. https://api.paystack.co
	Timeout   time.Duration
}

type AuthConfig struct {
	JWTSecret string
	JWTTTL    time.Duration
	// LoginRatePerMinute is the sustained login attempts allowed per client IP
	LoginRatePerMinute int
}

type CheckoutConfig struct {
	CommissionRate    decimal.Decimal
	OrderNumberPrefix string
	EnforceLivePrice  bool // CHECKOUT_ENFORCE_LIVE_PRICE: reject carts whose price differs from the catalog
}

// RedisConfig enables the catalog cache; empty Addr disables it
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// KafkaConfig enables the order event relay; no brokers disables it
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	PollInterval time.Duration
}

func Load() (*Config, error) {
	if err := readConfig(); err != nil {
		return nil, err
	}

	commission, err := decimal.NewFromString(getEnvOrViper("COMMISSION_RATE", "0.05"))
	if err != nil {
		return nil, fmt.Errorf("invalid COMMISSION_RATE: %w", err)
	}
	if commission.IsNegative() || commission.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("COMMISSION_RATE must be between 0 and 1")
	}

	jwtTTL, err := time.ParseDuration(getEnvOrViper("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnvOrViper("CATALOG_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_CACHE_TTL: %w", err)
	}
	pollInterval, err := time.ParseDuration(getEnvOrViper("OUTBOX_POLL_INTERVAL", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid OUTBOX_POLL_INTERVAL: %w", err)
	}
	paystackTimeout, err := time.ParseDuration(getEnvOrViper("PAYSTACK_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYSTACK_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Database:    databaseConfig(),
		Paystack: PaystackConfig{
			SecretKey: strings.TrimSpace(getEnvOrViper("PAYSTACK_SECRET_KEY", "")),
			BaseURL:   strings.TrimRight(strings.TrimSpace(getEnvOrViper("PAYSTACK_BASE_URL", "https://api.paystack.co")), "/"),
			Timeout:   paystackTimeout,
		},
		Auth: AuthConfig{
			JWTSecret:          strings.TrimSpace(getEnvOrViper("JWT_SECRET", "")),
			JWTTTL:             jwtTTL,
			LoginRatePerMinute: getInt("LOGIN_RATE_PER_MINUTE", 10),
		},
		Checkout: CheckoutConfig{
			CommissionRate:    commission,
			OrderNumberPrefix: getEnvOrViper("ORDER_NUMBER_PREFIX", "MHH"),
			EnforceLivePrice:  getBool("CHECKOUT_ENFORCE_LIVE_PRICE", false),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getEnvOrViper("REDIS_ADDR", "")),
			Password: getEnvOrViper("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
			CacheTTL: cacheTTL,
		},
		Kafka: KafkaConfig{
			Brokers:      splitList(getEnvOrViper("KAFKA_BROKERS", "")),
			Topic:        getEnvOrViper("KAFKA_TOPIC", "order-events"),
			PollInterval: pollInterval,
		},
	}

	// Validate required fields
	if cfg.Paystack.SecretKey == "" {
		return nil, fmt.Errorf("PAYSTACK_SECRET_KEY is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// LoadDatabase reads only the database section; CLI tools use it so they do
// not need the payment and auth secrets
func LoadDatabase() (DatabaseConfig, error) {
	if err := readConfig(); err != nil {
		return DatabaseConfig{}, err
	}
	return databaseConfig(), nil
}

func readConfig() error {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func databaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:           getEnvOrViper("DB_HOST", "localhost"),
		Port:           getEnvOrViper("DB_PORT", "5432"),
		User:           getEnvOrViper("DB_USER", "postgres"),
		Password:       getEnvOrViper("DB_PASSWORD", "postgres"),
		DBName:         getEnvOrViper("DB_NAME", "marketplace"),
		SSLMode:        getEnvOrViper("DB_SSLMODE", "disable"),
		MigrationsPath: getEnvOrViper("DB_MIGRATIONS_PATH", "migrations"),
		AutoMigrate:    getBool("DB_AUTO_MIGRATE", false),
	}
}

// IsProduction reports whether the service runs with production logging and gin release mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnvOrViper(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnvOrViper(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
