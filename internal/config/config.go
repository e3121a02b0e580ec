package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries every setting the service needs. It is built once in main
// and handed to components explicitly; nothing reads the environment after
// Load returns.
type Config struct {
	Port string

	MySQLUser     string
	MySQLPassword string
	MySQLHost     string
	MySQLPort     string
	MySQLDatabase string

	RedisAddr string
	AMQPURL   string

	StripeWebhookSecret string
	JWTSecret           string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromEmail    string
	AdminEmail   string

	// LowStockThreshold may be zero or negative: that still means "alert when
	// stock lands at or below the value", it just fires less often.
	LowStockThreshold int
	ShippingFee       float64
	Currency          string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8080"),

		MySQLUser:     getEnv("MYSQL_USER", "root"),
		MySQLPassword: os.Getenv("MYSQL_PASSWORD"),
		MySQLHost:     getEnv("MYSQL_HOST", "127.0.0.1"),
		MySQLPort:     getEnv("MYSQL_PORT", "3306"),
		MySQLDatabase: getEnv("MYSQL_DATABASE", "storefront"),

		RedisAddr: getEnv("REDIS_HOST", "127.0.0.1") + ":" + getEnv("REDIS_PORT", "6379"),
		AMQPURL:   os.Getenv("RABBITMQ_URL"),

		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		JWTSecret:           os.Getenv("JWT_SECRET"),

		SMTPHost:     getEnv("SMTP_HOST", "127.0.0.1"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		FromEmail:    getEnv("FROM_EMAIL", "store@localhost"),
		AdminEmail:   getEnv("ADMIN_EMAIL", "admin@localhost"),

		LowStockThreshold: getEnvInt("LOW_STOCK_THRESHOLD", 3),
		ShippingFee:       getEnvFloat("SHIPPING_FEE", 0),
		Currency:          getEnv("CURRENCY", "usd"),
	}
}

// DSN renders the MySQL connection string for the gorm driver.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.MySQLUser, c.MySQLPassword, c.MySQLHost, c.MySQLPort, c.MySQLDatabase)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
