package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the reservations backend
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// JWT configuration (staff dashboard)
	JWT JWTConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Kafka (notifications + analytics pipeline)
	Kafka KafkaConfig

	// Payment provider
	Stripe StripeConfig

	// Restaurant identity
	Restaurant RestaurantConfig

	// Scheduled jobs
	Cron CronConfig

	// Notification dispatch
	Notify NotifyConfig

	// Bootstrap staff account
	Admin AdminConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret       string
	JWTExpiresIn time.Duration
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool
	WindowDuration  time.Duration
	DefaultRequests int
	PublicRequests  int
	BookingRequests int
	WebhookRequests int
	CronRequests    int
	AuthRequests    int
	AdminRequests   int
	HealthRequests  int
}

// KafkaConfig holds the notification/analytics pipeline configuration
type KafkaConfig struct {
	Enabled           bool
	Brokers           []string
	NotificationTopic string
	AnalyticsTopic    string
}

// StripeConfig holds payment provider configuration
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	APIBase       string
}

// RestaurantConfig holds restaurant-local settings that are not operator
// editable (the editable booking policy lives in the settings table)
type RestaurantConfig struct {
	Name       string
	Timezone   string
	Currency   string
	StaffEmail string
}

// CronConfig holds scheduled job configuration
type CronConfig struct {
	Secret        string
	SweepInterval time.Duration
}

// NotifyConfig bounds the wait on fire-and-forget dispatch
type NotifyConfig struct {
	DispatchTimeout time.Duration
}

// AdminConfig seeds the first staff account
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		// Database configuration
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "donatheresa_db"),
			User:     getEnv("DB_USER", "donatheresa_user"),
			Password: getEnv("DB_PASSWORD", "donatheresa_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		// Redis configuration
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},

		// JWT configuration
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", "change-me-in-production"),
			JWTExpiresIn: getDurationEnvSeconds("JWT_EXPIRES_IN", 12*time.Hour),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:         getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:  getDurationEnv("RATE_LIMIT_WINDOW_DURATION", time.Hour),
			DefaultRequests: getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 120),
			PublicRequests:  getIntEnv("RATE_LIMIT_PUBLIC_REQUESTS", 300),
			BookingRequests: getIntEnv("RATE_LIMIT_BOOKING_REQUESTS", 10),
			WebhookRequests: getIntEnv("RATE_LIMIT_WEBHOOK_REQUESTS", 600),
			CronRequests:    getIntEnv("RATE_LIMIT_CRON_REQUESTS", 30),
			AuthRequests:    getIntEnv("RATE_LIMIT_AUTH_REQUESTS", 10),
			AdminRequests:   getIntEnv("RATE_LIMIT_ADMIN_REQUESTS", 300),
			HealthRequests:  getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 120),
		},

		// Kafka configuration
		Kafka: KafkaConfig{
			Enabled:           getBoolEnv("KAFKA_ENABLED", true),
			Brokers:           getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			NotificationTopic: getEnv("KAFKA_NOTIFICATION_TOPIC", "notifications"),
			AnalyticsTopic:    getEnv("KAFKA_ANALYTICS_TOPIC", "analytics-events"),
		},

		// Stripe configuration
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			APIBase:       getEnv("STRIPE_API_BASE", "https://api.stripe.com"),
		},

		// Restaurant configuration
		Restaurant: RestaurantConfig{
			Name:       getEnv("RESTAURANT_NAME", "Dona Theresa"),
			Timezone:   getEnv("RESTAURANT_TIMEZONE", "Europe/London"),
			Currency:   getEnv("RESTAURANT_CURRENCY", "gbp"),
			StaffEmail: getEnv("RESTAURANT_STAFF_EMAIL", ""),
		},

		// Cron configuration
		Cron: CronConfig{
			Secret:        getEnv("CRON_SECRET", ""),
			SweepInterval: getDurationEnv("RECONFIRMATION_SWEEP_INTERVAL", time.Hour),
		},

		// Notification dispatch
		Notify: NotifyConfig{
			DispatchTimeout: getDurationEnv("NOTIFY_DISPATCH_TIMEOUT", 10*time.Second),
		},

		// Bootstrap staff account
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
			Name:     getEnv("ADMIN_NAME", "Manager"),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getDurationEnvSeconds gets an environment variable as seconds (int) and converts to time.Duration
func getDurationEnvSeconds(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
