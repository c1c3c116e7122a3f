package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"
	_ "time/tzdata" // Europe/Amsterdam without system zoneinfo

	"github.com/joho/godotenv"
)

// Subscriber store backends.
const (
	SubscriberStoreMemory   = "memory"
	SubscriberStorePostgres = "postgres"
	SubscriberStoreRedis    = "redis"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken         string // Empty disables the Telegram bot and the daily broadcast
	DatabaseURL           string
	AdminTelegramID       int64 // 0 disables Telegram admin commands
	LogLevel              string
	Environment           string
	HTTPAddr              string
	CronSpecDailySoup     string
	Timezone              *time.Location
	TelegramWeekdayPolicy string
	TeamsWeekdayPolicy    string
	TelegramLocale        string
	TeamsLocale           string
	SubscriberStore       string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	SendTimeout           time.Duration
	BroadcastConcurrency  int
	DBTimeout             time.Duration
	DBMaxOpenConns        int
	DBMaxIdleConns        int
	CORSAllowedOrigins    []string // Empty allows every origin on /api
	AdminWebUser          string
	AdminWebPassword      string // Empty leaves the admin UI without basic auth
	TeamsEnabled          bool
	TeamsWebhookSecret    string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables; a missing file is fine.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	if adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID"); adminIDStr != "" {
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	cfg.CronSpecDailySoup = getEnv("CRON_SPEC_DAILY_SOUP", "0 12 * * 1-5") // Default: 12:00 on weekdays

	tz := getEnv("TIMEZONE", "Europe/Amsterdam")
	cfg.Timezone, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	// Telegram keeps the strictly-after-today reading of a weekday, Teams counts today.
	// WEEKDAY_POLICY sets both unless a platform specific variable is given.
	cfg.TelegramWeekdayPolicy = strings.ToLower(getEnv("TELEGRAM_WEEKDAY_POLICY", getEnv("WEEKDAY_POLICY", "next_week")))
	cfg.TeamsWeekdayPolicy = strings.ToLower(getEnv("TEAMS_WEEKDAY_POLICY", getEnv("WEEKDAY_POLICY", "include_today")))
	cfg.TelegramLocale = getEnv("TELEGRAM_LOCALE", "nl")
	cfg.TeamsLocale = getEnv("TEAMS_LOCALE", "en")

	cfg.SubscriberStore = strings.ToLower(getEnv("SUBSCRIBER_STORE", SubscriberStoreMemory))
	switch cfg.SubscriberStore {
	case SubscriberStoreMemory, SubscriberStorePostgres, SubscriberStoreRedis:
	default:
		return nil, fmt.Errorf("invalid SUBSCRIBER_STORE %q: want memory, postgres or redis", cfg.SubscriberStore)
	}
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if cfg.RedisDB, err = getIntEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}

	if cfg.SendTimeout, err = getDurationEnv("SEND_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.DBTimeout, err = getDurationEnv("DB_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.DBMaxOpenConns, err = getIntEnv("DB_MAX_OPEN_CONNS", 10); err != nil {
		return nil, err
	}
	if cfg.DBMaxIdleConns, err = getIntEnv("DB_MAX_IDLE_CONNS", 5); err != nil {
		return nil, err
	}
	if cfg.BroadcastConcurrency, err = getIntEnv("BROADCAST_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if cfg.BroadcastConcurrency < 1 {
		return nil, fmt.Errorf("BROADCAST_CONCURRENCY must be at least 1")
	}

	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	cfg.AdminWebUser = getEnv("ADMIN_WEB_USER", "admin")
	cfg.AdminWebPassword = os.Getenv("ADMIN_WEB_PASSWORD")
	if cfg.TeamsEnabled, err = getBoolEnv("TEAMS_ENABLED", true); err != nil {
		return nil, err
	}
	cfg.TeamsWebhookSecret = os.Getenv("TEAMS_WEBHOOK_SECRET")

	return cfg, nil
}

// TelegramEnabled reports whether a bot token was configured.
func (c *AppConfig) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) (bool, error) {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue, nil
	}
	switch strings.ToLower(valueStr) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getIntEnv(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

// getDurationEnv accepts Go durations ("15s") or a bare number of seconds.
func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
