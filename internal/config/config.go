package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort       string // Application port
	DBPath        string // SQLite database file path
	JWTSecret     string // JWT secret key
	RedisAddr     string // Redis server address
	RedisPass     string // Redis password
	RedisDB       int    // Redis database number
	HolidayAPIKey string // Calendarific API key
	ModelPath     string // Serialized pricing model file
	ForecastDays  int    // Forecast horizon in days (10 or 12)
	IsProd        bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	forecastDays := 12 // Default horizon (the newer Open-Meteo page used 12)
	if v, err := strconv.Atoi(os.Getenv("FORECAST_DAYS")); err == nil && v > 0 {
		forecastDays = v
	}

	return &Config{
		AppPort:       getEnv("APP_PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "retail_forecasts.db"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPass:     os.Getenv("REDIS_PASS"),
		RedisDB:       redisDB,
		HolidayAPIKey: os.Getenv("HOLIDAY_API_KEY"),
		ModelPath:     getEnv("MODEL_PATH", "model.json"),
		ForecastDays:  forecastDays,
		IsProd:        os.Getenv("IS_PROD") == "true",
	}
}

// getEnv returns the environment variable or a default when unset
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
