package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	DataDir     string
	Years       []int
	BLSBaseURL  string
	H1BBaseURL  string
	FetchMode   string
	ChromeBin   string
	HTTPTimeout time.Duration
	MaxRetries  int
	RetryDelay  time.Duration

	MaxConcurrency int
	RateLimitMs    int

	CacheBackend  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	HTTPAddr      string
	CSVOutputPath string
	LogLevel      string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "compdash"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "compdash"),
		PostgresDB:       getEnv("POSTGRES_DB", "compensation"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		DataDir:     getEnv("DATA_DIR", "./data"),
		Years:       getEnvInts("YEARS", []int{2023}),
		BLSBaseURL:  getEnv("BLS_BASE_URL", "https://www.bls.gov/oes/special.requests"),
		H1BBaseURL:  getEnv("H1B_BASE_URL", "https://www.dol.gov/sites/dolgov/files/ETA/oflc/pdfs"),
		FetchMode:   strings.ToLower(getEnv("FETCH_MODE", "http")),
		ChromeBin:   getEnv("CHROME_BIN", ""),
		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		MaxRetries:  getEnvInt("MAX_RETRIES", 3),
		RetryDelay:  getEnvDuration("RETRY_DELAY", 2*time.Second),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 2),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 250),

		CacheBackend:  strings.ToLower(getEnv("CACHE_BACKEND", "file")),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/compensation.csv"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}

// getEnvInts parses a comma-separated list of integers; a single "2021-2023"
// range is expanded. Any malformed entry makes the whole value fall back.
func getEnvInts(key string, fallback []int) []int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []int
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			from, err1 := strconv.Atoi(strings.TrimSpace(lo))
			to, err2 := strconv.Atoi(strings.TrimSpace(hi))
			if err1 != nil || err2 != nil || from > to {
				return fallback
			}
			for y := from; y <= to; y++ {
				out = append(out, y)
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return fallback
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
