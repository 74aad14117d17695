package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Ai       AIConfig
	Monitor  MonitorConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	MonitorLogFilePath string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JwtSecret    string
	TokenTTLHour int
}

type AIConfig struct {
	GeminiAPIKey   string
	Model          string
	MaxCallsPerMin int
	TimeoutSeconds int
	CacheTTLSecs   int
}

type MonitorConfig struct {
	ScreenshotQuality   int
	ScreenshotMaxWidth  int
	ScreenshotMaxHeight int
	IngestMaxPerMin     int
	ScreenshotTTLSecs   int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "classguard.log"),
			MonitorLogFilePath: getEnv("MONITOR_LOG_FILE_PATH", "classguard.monitor.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JwtSecret:    getEnv("JWT_SECRET", "jwt-secret-key"),
			TokenTTLHour: getEnvAsInt("JWT_TTL_HOURS", 8),
		},
		Ai: AIConfig{
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			Model:        getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			// Free tier ceiling: 15 requests per minute.
			MaxCallsPerMin: getEnvAsInt("AI_RATE_LIMIT", 15),
			TimeoutSeconds: getEnvAsInt("AI_TIMEOUT", 10),
			CacheTTLSecs:   getEnvAsInt("AI_CACHE_TTL", 300),
		},
		Monitor: MonitorConfig{
			ScreenshotQuality:   getEnvAsInt("SCREENSHOT_QUALITY", 60),
			ScreenshotMaxWidth:  getEnvAsInt("SCREENSHOT_MAX_WIDTH", 1280),
			ScreenshotMaxHeight: getEnvAsInt("SCREENSHOT_MAX_HEIGHT", 720),
			IngestMaxPerMin:     getEnvAsInt("INGEST_RATE_LIMIT", 100),
			ScreenshotTTLSecs:   getEnvAsInt("SCREENSHOT_TTL", 600),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
