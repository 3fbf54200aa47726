package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the reference API server configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	JWTSecret   string
	SwaggerHost string
	LogLevel    string
	LogFormat   string
}

// PortalConfig holds the portal process configuration.
type PortalConfig struct {
	Addr             string
	APIBaseURL       string
	APITimeout       time.Duration
	CredentialStore  string // file, redis or memory
	CredentialPath   string
	RedisAddr        string
	RedisDB          int
	RedisPass        string
	RedisKeyPrefix   string
	VerifySession    bool
	DashboardRefresh time.Duration
	DashboardTTL     time.Duration
	LogLevel         string
	LogFormat        string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	loadDotEnv()
	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		MySQLDSN:    getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/hostel?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		JWTSecret:   getEnv("JWT_SECRET", "change-me"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
	}
}

// LoadPortal builds PortalConfig from environment with sensible defaults.
func LoadPortal() *PortalConfig {
	loadDotEnv()
	return &PortalConfig{
		Addr:             getEnv("PORTAL_ADDR", "127.0.0.1:3000"),
		APIBaseURL:       getEnv("PORTAL_API_BASE_URL", "http://localhost:8080"),
		APITimeout:       getEnvDuration("PORTAL_API_TIMEOUT", 10*time.Second),
		CredentialStore:  getEnv("PORTAL_CREDENTIAL_BACKEND", "file"),
		CredentialPath:   os.Getenv("PORTAL_CREDENTIAL_PATH"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		RedisPass:        os.Getenv("REDIS_PASSWORD"),
		RedisKeyPrefix:   getEnv("PORTAL_REDIS_PREFIX", "portal:"),
		VerifySession:    getEnvBool("PORTAL_VERIFY_SESSION", false),
		DashboardRefresh: getEnvDuration("PORTAL_DASHBOARD_REFRESH", 30*time.Second),
		DashboardTTL:     getEnvDuration("PORTAL_DASHBOARD_CACHE_TTL", 15*time.Second),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
	}
}

// loadDotEnv reads .env from the working directory when present.
// Variables already set in the environment win.
func loadDotEnv() {
	_ = godotenv.Load(".env")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
