package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetFloatEnv returns a float environment variable or a default value.
func GetFloatEnv(key string, defaultVal float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}

// DatabaseConfig holds postgres connection and pool settings.
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// AlertConfig holds the operations alert mail settings. An empty SMTPHost
// disables outbound mail; alerts are then only logged.
type AlertConfig struct {
	SMTPHost string
	SMTPPort string
	From     string
	To       string
}

// Config is the full application configuration. It is built once in main
// and passed explicitly into constructors; nothing reads the environment
// after startup.
type Config struct {
	Port          string
	AllowOrigins  string
	StripeKey     string
	ReturnURL     string
	InvoicePrefix string
	CardFeeRate   float64
	Database      DatabaseConfig
	Redis         RedisConfig
	Alerts        AlertConfig
}

// Load builds the application configuration from the environment.
func Load() *Config {
	return &Config{
		Port:          GetEnv("PORT", "3000"),
		AllowOrigins:  GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173"),
		StripeKey:     GetEnv("STRIPE_SECRET_KEY", ""),
		ReturnURL:     GetEnv("CHECKOUT_RETURN_URL", "https://donate.example.org/thank-you/"),
		InvoicePrefix: GetEnv("INVOICE_PREFIX", "donare"),
		CardFeeRate:   GetFloatEnv("CARD_FEE_RATE", 0.03),
		Database: DatabaseConfig{
			Host:            GetEnv("DB_HOST", "localhost"),
			Port:            GetEnv("DB_PORT", "5432"),
			User:            GetEnv("DB_USER", "postgres"),
			Password:        GetEnv("DB_PASSWORD", "postgres"),
			Name:            GetEnv("DB_NAME", "donare"),
			MaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetIntEnv("REDIS_DB", 0),
		},
		Alerts: AlertConfig{
			SMTPHost: GetEnv("ALERT_SMTP_HOST", ""),
			SMTPPort: GetEnv("ALERT_SMTP_PORT", "25"),
			From:     GetEnv("ALERT_FROM", "gateway@donare.org"),
			To:       GetEnv("ALERT_TO", "ops@donare.org"),
		},
	}
}
