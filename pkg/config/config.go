package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Ingest    IngestConfig
	Admin     AdminConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type AppConfig struct {
	Name   string
	Port   string
	Env    string
	LogDir string
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "sqlite"
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type StorageConfig struct {
	Root string // Managed asset root (videos are stored under Root/videos)
}

type IngestConfig struct {
	LockTTL           time.Duration
	WorkerConcurrency int
	InboxDir          string // Optional drop directory scanned by the scheduler
	InboxCron         string
}

type AdminConfig struct {
	Token string
}

type RateLimitConfig struct {
	Enabled       bool
	MaxRequests   int
	WindowSeconds int
}

type CORSConfig struct {
	AllowOrigins string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists (optional for production)
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	rateMax, _ := strconv.Atoi(getEnv("RATE_LIMIT_MAX", "300"))
	rateWindow, _ := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW", "60"))
	concurrency, _ := strconv.Atoi(getEnv("INGEST_WORKER_CONCURRENCY", "2"))
	if concurrency <= 0 {
		concurrency = 2
	}
	lockTTL, err := time.ParseDuration(getEnv("INGEST_LOCK_TTL", "30m"))
	if err != nil {
		lockTTL = 30 * time.Minute
	}

	config := &Config{
		App: AppConfig{
			Name:   getEnv("APP_NAME", "Drone Topview Analysis"),
			Port:   getEnv("APP_PORT", "8000"),
			Env:    getEnv("APP_ENV", "development"),
			LogDir: getEnv("LOG_DIR", "logs"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", ""),
			DBName:     getEnv("DB_NAME", "drone_topview"),
			SSLMode:    getEnv("DB_SSL_MODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "drone_topview.db"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Storage: StorageConfig{
			Root: getEnv("STORAGE_ROOT", "media"),
		},
		Ingest: IngestConfig{
			LockTTL:           lockTTL,
			WorkerConcurrency: concurrency,
			InboxDir:          getEnv("INGEST_INBOX_DIR", ""),
			InboxCron:         getEnv("INGEST_INBOX_CRON", "*/5 * * * *"),
		},
		Admin: AdminConfig{
			Token: getEnv("ADMIN_TOKEN", ""),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnv("RATE_LIMIT_ENABLED", "true") == "true",
			MaxRequests:   rateMax,
			WindowSeconds: rateWindow,
		},
		CORS: CORSConfig{
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		},
	}

	return config, nil
}

// IsProduction reports whether the app runs with APP_ENV=production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
