package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration loaded from environment variables.
// The search itself lives in input.json, see LoadSearchRequest.
type Config struct {
	InputPath     string
	OutputPath    string
	CSVOutputPath string
	BaseURL       string
	SortOutput    bool

	MaxConcurrency     int
	RateLimitMs        int
	ListingMaxAttempts int
	MaxIdleScrolls     int
	MaxGalleryScrolls  int
	ImageLimit         int

	SelectorTimeout time.Duration
	PageLoadTimeout time.Duration
	SetupTimeout    time.Duration

	Headless  bool
	ChromeBin string
	Debug     bool

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		InputPath:     getEnv("INPUT_PATH", "input.json"),
		OutputPath:    getEnv("OUTPUT_PATH", "output.json"),
		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", ""),
		BaseURL:       getEnv("BASE_URL", "https://www.booking.com/"),
		SortOutput:    getEnvBool("SORT_OUTPUT", false),

		MaxConcurrency:     getEnvInt("MAX_CONCURRENCY", 4),
		RateLimitMs:        getEnvInt("RATE_LIMIT_MS", 0),
		ListingMaxAttempts: getEnvInt("LISTING_MAX_ATTEMPTS", 1),
		MaxIdleScrolls:     getEnvInt("MAX_IDLE_SCROLLS", 5),
		MaxGalleryScrolls:  getEnvInt("MAX_GALLERY_SCROLLS", 20),
		ImageLimit:         getEnvInt("IMAGE_LIMIT", 15),

		SelectorTimeout: getEnvSeconds("SELECTOR_TIMEOUT_SEC", 6),
		PageLoadTimeout: getEnvSeconds("PAGE_LOAD_TIMEOUT_SEC", 20),
		SetupTimeout:    getEnvSeconds("SETUP_TIMEOUT_SEC", 25),

		Headless:  getEnvBool("HEADLESS", true),
		ChromeBin: getEnv("CHROME_BIN", ""),
		Debug:     getEnvBool("DEBUG", false),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "hotels_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
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

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}
