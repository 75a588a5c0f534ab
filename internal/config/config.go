package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Gemini   GeminiConfig
	Document DocumentConfig
	Breaker  BreakerConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	LogLevel     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type GeminiConfig struct {
	APIKey          string
	Model           string
	MaxOutputTokens int32
	RequestTimeout  time.Duration
}

type DocumentConfig struct {
	MaxFileSize            int64
	DownloadTimeout        time.Duration
	MinResumeChars         int
	MinJobDescriptionChars int
}

type BreakerConfig struct {
	Enabled      bool
	MinRequests  uint32
	FailureRatio float64
	OpenTimeout  time.Duration
}

const (
	DefaultMaxFileSize     int64 = 10 * 1024 * 1024
	DefaultDownloadTimeout       = 30 * time.Second
	DefaultModel                 = "gemini-2.5-flash"
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment and default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "3000"),
			Env:          getEnv("ENV", "development"),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", "60s"),
			WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", "120s"),
		},
		Gemini: GeminiConfig{
			APIKey:          getEnv("GEMINI_API_KEY", ""),
			Model:           getEnv("GEMINI_MODEL", DefaultModel),
			MaxOutputTokens: int32(getEnvAsInt("GEMINI_MAX_OUTPUT_TOKENS", 8192)),
			RequestTimeout:  getEnvAsDuration("GEMINI_REQUEST_TIMEOUT", "90s"),
		},
		Document: DocumentConfig{
			MaxFileSize:            getEnvAsInt64("MAX_FILE_SIZE", DefaultMaxFileSize),
			DownloadTimeout:        getEnvAsDuration("DOWNLOAD_TIMEOUT", DefaultDownloadTimeout.String()),
			MinResumeChars:         getEnvAsInt("MIN_RESUME_CHARS", 50),
			MinJobDescriptionChars: getEnvAsInt("MIN_JOB_DESCRIPTION_CHARS", 30),
		},
		Breaker: BreakerConfig{
			Enabled:      getEnvAsBool("BREAKER_ENABLED", true),
			MinRequests:  uint32(getEnvAsInt("BREAKER_MIN_REQUESTS", 5)),
			FailureRatio: getEnvAsFloat("BREAKER_FAILURE_RATIO", 0.6),
			OpenTimeout:  getEnvAsDuration("BREAKER_OPEN_TIMEOUT", "30s"),
		},
	}
}

// GeminiConfigured reports whether an API key is present.
func (c *Config) GeminiConfigured() bool {
	return c.Gemini.APIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil && duration > 0 {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
