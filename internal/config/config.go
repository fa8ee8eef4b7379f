package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env string

	// Storage: "postgres" or "memory"
	StoreDriver string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Identity is delegated to an external provider; tokens are verified either with a
	// shared HS256 secret or against a JWKS endpoint.
	JWTSecret  string
	JWTJWKSURL string

	// Platform operator
	AdminToken string

	// Server
	Port        string
	CORSOrigins string

	// Redis (optional)
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	SnapshotCacheTTL time.Duration
	LedgerStreamLen  int64

	// Loyalty policy
	ClinicTimezone           string
	GoldThreshold            float64
	PlatinumThreshold        float64
	RedeemCapPercent         int64
	AppointmentConflictScope string

	// Throttling of mutating endpoints per clinic
	ClinicRateLimit float64
	ClinicRateBurst int

	DailyResetInterval time.Duration
	LogRetention       time.Duration

	// Observability
	OTLPEndpoint string
	SentryDSN    string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:         getEnv("APP_ENV", "development"),
		StoreDriver: getEnv("STORE_DRIVER", "postgres"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "clinic_loyalty"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:  getEnv("JWT_SECRET", ""),
		JWTJWKSURL: getEnv("JWT_JWKS_URL", ""),

		AdminToken: getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          parseInt(getEnv("REDIS_DB", "0"), 0),
		SnapshotCacheTTL: parseDuration(getEnv("SNAPSHOT_CACHE_TTL", "5m"), 5*time.Minute),
		LedgerStreamLen:  int64(parseInt(getEnv("LEDGER_STREAM_MAXLEN", "100000"), 100000)),

		ClinicTimezone:           getEnv("CLINIC_TIMEZONE", "Asia/Kolkata"),
		GoldThreshold:            parseFloat(getEnv("GOLD_THRESHOLD", "25000"), 25000),
		PlatinumThreshold:        parseFloat(getEnv("PLATINUM_THRESHOLD", "100000"), 100000),
		RedeemCapPercent:         int64(parseInt(getEnv("REDEEM_CAP_PERCENT", "25"), 25)),
		AppointmentConflictScope: getEnv("APPOINTMENT_CONFLICT_SCOPE", "clinic"),

		ClinicRateLimit: parseFloat(getEnv("CLINIC_RATE_LIMIT", "20"), 20),
		ClinicRateBurst: parseInt(getEnv("CLINIC_RATE_BURST", "40"), 40),

		DailyResetInterval: parseDuration(getEnv("DAILY_RESET_INTERVAL", "1h"), time.Hour),
		LogRetention:       parseDuration(getEnv("LOG_RETENTION", "720h"), 30*24*time.Hour),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		SentryDSN:    getEnv("SENTRY_DSN", ""),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// Location resolves ClinicTimezone, falling back to UTC for unknown zones.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ClinicTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}
