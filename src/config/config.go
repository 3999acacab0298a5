package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port               string
	LogLevel           string
	DatabasePath       string
	RateAPIBaseURL     string
	RateFetchTimeout   time.Duration
	RateCacheTTL       time.Duration // current-year cache entries only; past years never expire
	SectionAliasesPath string        // optional override for the embedded section alias list
	MaxUploadSizeBytes int64
}

var Cfg *AppConfig

func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found. Relying on OS environment variables and defaults.")
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	rateFetchTimeoutStr := getEnv("RATE_FETCH_TIMEOUT", "20s")
	rateFetchTimeout, err := time.ParseDuration(rateFetchTimeoutStr)
	if err != nil {
		log.Printf("WARNING: Invalid RATE_FETCH_TIMEOUT format '%s'. Using default 20s. Error: %v", rateFetchTimeoutStr, err)
		rateFetchTimeout = 20 * time.Second
	}

	rateCacheTTLStr := getEnv("RATE_CACHE_TTL", "24h")
	rateCacheTTL, err := time.ParseDuration(rateCacheTTLStr)
	if err != nil {
		log.Printf("WARNING: Invalid RATE_CACHE_TTL format '%s'. Using default 24h. Error: %v", rateCacheTTLStr, err)
		rateCacheTTL = 24 * time.Hour
	}

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	Cfg = &AppConfig{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabasePath:       getEnv("DATABASE_PATH", "./fursio.db"),
		RateAPIBaseURL:     getEnv("RATE_API_BASE_URL", "https://api.frankfurter.dev/v1"),
		RateFetchTimeout:   rateFetchTimeout,
		RateCacheTTL:       rateCacheTTL,
		SectionAliasesPath: getEnv("SECTION_ALIASES_PATH", ""),
		MaxUploadSizeBytes: maxUploadSizeBytes,
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, RateAPI=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.RateAPIBaseURL)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}
