package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string // takes precedence over the DB_* parts when set
	DBHost      string
	DBPort      int
	DBName      string
	DBUser      string
	DBPassword  string

	// Redis (coin directory cache)
	RedisAddr     string
	RedisCacheTTL time.Duration

	// CoinGecko
	CoinGeckoAPIBase string

	// Price refresh
	UpdateInterval time.Duration

	// HTTP server
	Port            int
	CORSAllowOrigin string

	// Notifications
	WebhookURL  string
	ServiceName string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: envStr("DATABASE_URL", ""),
		DBHost:      envStr("DB_HOST", "localhost"),
		DBPort:      envInt("DB_PORT", 5432),
		DBName:      envStr("DB_NAME", "cryptos"),
		DBUser:      envStr("DB_USER", "postgres"),
		DBPassword:  envStr("DB_PASSWORD", ""),

		RedisAddr:     envStr("REDIS_ADDR", "localhost:6379"),
		RedisCacheTTL: time.Duration(envInt("REDIS_CACHE_TTL", 3600)) * time.Second,

		CoinGeckoAPIBase: envStr("COINGECKO_API_BASE", "https://api.coingecko.com/api/v3"),

		UpdateInterval: time.Duration(envInt("UPDATE_INTERVAL_MINUTES", 10)) * time.Minute,

		Port:            envInt("PORT", 8000),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		WebhookURL:  envStr("WEBHOOK_URL", ""),
		ServiceName: envStr("SERVICE_NAME", "coingecko-crud"),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.DatabaseURL == "" && c.DBUser == "" {
		errs = append(errs, "DATABASE_URL or DB_USER is required")
	}
	if c.UpdateInterval <= 0 {
		errs = append(errs, "UPDATE_INTERVAL_MINUTES must be positive")
	}
	if c.RedisCacheTTL <= 0 {
		errs = append(errs, "REDIS_CACHE_TTL must be positive")
	}
	if !strings.HasPrefix(c.CoinGeckoAPIBase, "http://") && !strings.HasPrefix(c.CoinGeckoAPIBase, "https://") {
		errs = append(errs, fmt.Sprintf("COINGECKO_API_BASE must be an http(s) URL, got %q", c.CoinGeckoAPIBase))
	}
	if c.WebhookURL == "" {
		fmt.Println("[WARN] WEBHOOK_URL not set, refresh summaries will only be logged locally")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== Crypto Tracker Configuration ===")
	if c.DatabaseURL != "" {
		fmt.Println("Database: DATABASE_URL override active")
	} else {
		fmt.Printf("Database: %s:%d/%s\n", c.DBHost, c.DBPort, c.DBName)
	}
	fmt.Printf("Redis: %s (directory TTL %s)\n", c.RedisAddr, c.RedisCacheTTL)
	fmt.Printf("CoinGecko: %s\n", c.CoinGeckoAPIBase)
	fmt.Printf("Price refresh: every %s\n", c.UpdateInterval)
	fmt.Printf("HTTP port: %d\n", c.Port)
	fmt.Printf("Webhook: %s\n", boolLabel(c.WebhookURL != "", "configured", "not set"))
	fmt.Println("====================================")
}

func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
