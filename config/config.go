package config

import (
	"os"
	"strconv"
	"time"
)

// Config collects all service settings from environment variables.
type Config struct {
	Port string

	// Storage backend: memory | file | rest | postgres
	StoreBackend string
	StoreFile    string
	StoreBaseURL string
	StoreTimeout time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisHost string
	RedisPort string

	JWTSecret   []byte
	TokenTTL    time.Duration
	CSRFEnabled bool
	CSRFAuthKey []byte

	WeatherGeocodingURL string
	WeatherForecastURL  string
	WeatherCacheTTL     time.Duration

	RateLimitRequests int
	RateLimitWindow   time.Duration
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		StoreBackend: getEnv("STORE_BACKEND", "file"),
		StoreFile:    getEnv("STORE_FILE", "./data/users.json"),
		StoreBaseURL: getEnv("STORE_BASE_URL", ""),
		StoreTimeout: getDuration("STORE_TIMEOUT", 8*time.Second),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "1234"),
		DBName:     getEnv("DB_NAME", "waterbuddy_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisHost: getEnv("REDIS_HOST", "localhost"),
		RedisPort: getEnv("REDIS_PORT", "6379"),

		JWTSecret:   []byte(getEnv("JWT_SECRET", "supersecretkey")),
		TokenTTL:    getDuration("TOKEN_TTL", 24*time.Hour),
		CSRFEnabled: getBool("CSRF_ENABLED", false),
		CSRFAuthKey: []byte(getEnv("CSRF_AUTH_KEY", "32-byte-long-auth-key-for-csrf!!")),

		WeatherGeocodingURL: getEnv("WEATHER_GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1/search"),
		WeatherForecastURL:  getEnv("WEATHER_FORECAST_URL", "https://api.open-meteo.com/v1/forecast"),
		WeatherCacheTTL:     getDuration("WEATHER_CACHE_TTL", 10*time.Minute),

		RateLimitRequests: getInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getDuration("RATE_LIMIT_WINDOW", time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
