package shared

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	LogLevel    string
	LogFile     string

	StoreDriver    string // mysql | memory
	MySQLDSN       string
	MigrateOnStart bool

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	JWTSecret        string
	ReviewsPerMinute int

	ObjectStoreURL       string
	ObjectStoreKey       string
	ObjectStorePublicURL string
	ObjectStoreRPS       int

	ReconcileWorkers int
}

// Load reads the environment, after merging an optional .env file that never
// overrides variables already set.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to read .env")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:               env("APP_ENV", "prod"),
		HTTPAddr:             env("HTTP_ADDR", ":8080"),
		MetricsAddr:          env("METRICS_ADDR", ""),
		LogLevel:             env("LOG_LEVEL", "info"),
		LogFile:              env("LOG_FILE", ""),
		StoreDriver:          strings.ToLower(env("STORE_DRIVER", "mysql")),
		MySQLDSN:             env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hotels?parseTime=true&charset=utf8mb4&loc=UTC"),
		MigrateOnStart:       envBool("MIGRATE_ON_START", true),
		RedisAddr:            env("REDIS_ADDR", ""),
		RedisPass:            env("REDIS_PASSWORD", ""),
		RedisDB:              atoi("REDIS_DB", 0),
		CacheTTL:             time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		JWTSecret:            env("AUTH_JWT_SECRET", ""),
		ReviewsPerMinute:     atoi("REVIEW_RATE_PER_MIN", 10),
		ObjectStoreURL:       env("OBJECT_STORE_URL", ""),
		ObjectStoreKey:       env("OBJECT_STORE_KEY", ""),
		ObjectStorePublicURL: env("OBJECT_STORE_PUBLIC_URL", ""),
		ObjectStoreRPS:       atoi("OBJECT_STORE_RPS", 5),
		ReconcileWorkers:     atoi("RECONCILE_WORKERS", 8),
	}
	return c
}

// Warn logs settings that are legal but unsafe outside development.
func (c Config) Warn() {
	if c.JWTSecret == "" {
		log.Warn().Msg("AUTH_JWT_SECRET is empty; request user ids are trusted")
	}
	if c.ObjectStoreURL == "" {
		log.Warn().Msg("OBJECT_STORE_URL is empty; hotel image uploads are disabled")
	}
	if c.RedisAddr == "" {
		log.Warn().Msg("REDIS_ADDR is empty; using the in-process cache")
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
