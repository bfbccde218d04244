package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// Backend REST API
	BackendURL           string
	HTTPTimeout          time.Duration
	BackendRatePerSecond float64
	BackendBurst         int

	// Server
	ApiPort           string
	ServiceApiPort    string
	CORSAllowedOrigin string

	// Client storage ("memory", "redis" or "mongo")
	StorageDriver string

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Logging
	LogLevel        string
	LogJSON         bool
	LogColor        bool
	FluentEnabled   bool
	FluentHost      string
	FluentPort      int
	FluentTagPrefix string

	// UI behaviour
	SessionIdleTTL     time.Duration
	CarouselFrame      time.Duration
	ImageMaxDimension  int
	DefaultMapLat      float64
	DefaultMapLng      float64
	UploadProgressTick time.Duration

	// Background work
	MarkSoldAsync bool

	// VietQR deposit codes
	VietQRBankID      string
	VietQRAccountNo   string
	VietQRAccountName string
	VietQRTemplate    string

	// Rate Limiting Defaults
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode,
	}

	var err error

	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists || value == "" {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	cfg.BackendURL, err = getRequiredEnv("BACKEND_URL")
	if err != nil {
		return nil, err
	}
	cfg.ApiPort = getEnv("API_PORT", "8090")
	cfg.ServiceApiPort = getEnv("SERVICE_API_PORT", "8091")
	cfg.CORSAllowedOrigin = getEnv("CORS_ALLOWED_ORIGIN", "*")
	cfg.StorageDriver = getEnv("STORAGE_DRIVER", "memory")
	cfg.MongoURI = getEnv("MONGO_URI", "")
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "portal")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.FluentHost = getEnv("FLUENTBIT_HOST", "")
	cfg.FluentTagPrefix = getEnv("FLUENTBIT_TAG_PREFIX", "portal")
	cfg.VietQRBankID = getEnv("VIETQR_BANK_ID", "")
	cfg.VietQRAccountNo = getEnv("VIETQR_ACCOUNT_NO", "")
	cfg.VietQRAccountName = getEnv("VIETQR_ACCOUNT_NAME", "")
	cfg.VietQRTemplate = getEnv("VIETQR_TEMPLATE", "compact2")

	switch cfg.StorageDriver {
	case "memory", "redis":
	case "mongo":
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI is required when STORAGE_DRIVER=mongo")
		}
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER: %q", cfg.StorageDriver)
	}
	if runMode == "bg" && cfg.StorageDriver == "memory" {
		return nil, fmt.Errorf("STORAGE_DRIVER=memory cannot be shared with a separate bg worker")
	}

	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	timeoutSeconds, err := strconv.ParseInt(getEnv("HTTP_TIMEOUT_SECONDS", "15"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT_SECONDS: %w", err)
	}
	cfg.HTTPTimeout = time.Duration(timeoutSeconds) * time.Second

	cfg.BackendRatePerSecond, err = strconv.ParseFloat(getEnv("BACKEND_RATE_PER_SECOND", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_RATE_PER_SECOND: %w", err)
	}
	cfg.BackendBurst, err = strconv.Atoi(getEnv("BACKEND_BURST", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_BURST: %w", err)
	}

	cfg.LogJSON, err = strconv.ParseBool(getEnv("LOG_JSON", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_JSON: %w", err)
	}
	cfg.LogColor, err = strconv.ParseBool(getEnv("LOG_COLOR", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_COLOR: %w", err)
	}
	cfg.FluentEnabled, err = strconv.ParseBool(getEnv("FLUENTBIT_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid FLUENTBIT_ENABLED: %w", err)
	}
	cfg.FluentPort, err = strconv.Atoi(getEnv("FLUENTBIT_PORT", "24224"))
	if err != nil {
		return nil, fmt.Errorf("invalid FLUENTBIT_PORT: %w", err)
	}

	idleMinutes, err := strconv.ParseInt(getEnv("SESSION_IDLE_TTL_MINUTES", "30"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_IDLE_TTL_MINUTES: %w", err)
	}
	cfg.SessionIdleTTL = time.Duration(idleMinutes) * time.Minute

	frameMs, err := strconv.ParseInt(getEnv("CAROUSEL_FRAME_MS", "16"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CAROUSEL_FRAME_MS: %w", err)
	}
	if frameMs <= 0 {
		return nil, fmt.Errorf("invalid CAROUSEL_FRAME_MS: must be positive")
	}
	cfg.CarouselFrame = time.Duration(frameMs) * time.Millisecond

	cfg.ImageMaxDimension, err = strconv.Atoi(getEnv("IMAGE_MAX_DIMENSION", "2048"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMAGE_MAX_DIMENSION: %w", err)
	}

	progressMs, err := strconv.ParseInt(getEnv("UPLOAD_PROGRESS_MS", "500"), 10, 64)
	if err != nil || progressMs <= 0 {
		return nil, fmt.Errorf("invalid UPLOAD_PROGRESS_MS: %q", getEnv("UPLOAD_PROGRESS_MS", "500"))
	}
	cfg.UploadProgressTick = time.Duration(progressMs) * time.Millisecond

	cfg.MarkSoldAsync, err = strconv.ParseBool(getEnv("MARK_SOLD_ASYNC", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid MARK_SOLD_ASYNC: %w", err)
	}

	cfg.DefaultMapLat, err = strconv.ParseFloat(getEnv("DEFAULT_MAP_LAT", "10.7769"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_MAP_LAT: %w", err)
	}
	cfg.DefaultMapLng, err = strconv.ParseFloat(getEnv("DEFAULT_MAP_LNG", "106.7009"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_MAP_LNG: %w", err)
	}

	// Rate Limiting
	cfg.RateLimitBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_BUCKET_SIZE", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_REFILL_RATE", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_RATE: %w", err)
	}

	return cfg, nil
}
