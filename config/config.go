// Package config provides application configuration management.
package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	ServerPort     string
	AllowedOrigins []string
	MaxUploadBytes int64
	UploadDir      string

	// Model artifacts
	ModelsDir        string
	DiseaseBridgeCmd string
	DiseaseTimeout   time.Duration

	// Persistence configuration
	DataStoreDriver string
	DataStoreDSN    string

	// Weather proxy configuration
	OpenWeatherAPIKey string
	OpenWeatherURL    string
	WeatherTimeout    time.Duration
	WeatherCacheTTL   time.Duration

	// Redis cache configuration
	RedisAddr        string
	RedisUsername    string
	RedisPassword    string
	RedisDB          int
	RedisTLSEnabled  bool
	RedisTLSInsecure bool
}

// Load loads configuration from environment variables with defaults.
func Load() *Config {
	dataStoreDriver := getEnv("DATASTORE_DRIVER", "")
	dataStoreDSN := getEnv("DATASTORE_DSN", "")
	if dataStoreDriver == "postgres" && dataStoreDSN == "" {
		dataStoreDSN = os.Getenv("POSTGRES_DSN")
	}
	if dataStoreDriver == "sqlite" && dataStoreDSN == "" {
		dataStoreDSN = filepath.Join(getEnv("STATE_PATH", "/app/state"), "agri-api.db")
	}

	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "5000"),
		AllowedOrigins:    getEnvList("ALLOWED_ORIGINS", defaultOrigins),
		MaxUploadBytes:    getEnvInt64("MAX_UPLOAD_BYTES", 16<<20),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		ModelsDir:         getEnv("MODELS_DIR", "models"),
		DiseaseBridgeCmd:  getEnv("DISEASE_BRIDGE_CMD", ""),
		DiseaseTimeout:    getEnvDuration("DISEASE_BRIDGE_TIMEOUT", 30*time.Second),
		DataStoreDriver:   dataStoreDriver,
		DataStoreDSN:      dataStoreDSN,
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherURL:    getEnv("OPENWEATHER_BASE_URL", "http://api.openweathermap.org/data/2.5"),
		WeatherTimeout:    getEnvDuration("WEATHER_TIMEOUT", 10*time.Second),
		WeatherCacheTTL:   getEnvDuration("WEATHER_CACHE_TTL", 5*time.Minute),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisUsername:     getEnv("REDIS_USERNAME", ""),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RedisTLSEnabled:   getEnvBool("REDIS_TLS_ENABLED", false),
		RedisTLSInsecure:  getEnvBool("REDIS_TLS_INSECURE_SKIP_VERIFY", false),
	}
}

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://localhost:8080",
	"http://localhost:8081",
	"https://hingan-ai.vercel.app",
	"https://hingan-ai-*.vercel.app",
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s: %s, using default %s", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s: %s, using default %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
		log.Printf("Invalid int for %s: %s, using default %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "1", "true", "yes", "y":
			return true
		case "0", "false", "no", "n":
			return false
		default:
			log.Printf("Invalid bool for %s: %s, using default %t", key, value, defaultValue)
		}
	}
	return defaultValue
}
