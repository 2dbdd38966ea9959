package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	JWTSecret string
	JWTTTL    time.Duration

	MeiliSearchHost string
	MeiliMasterKey  string

	DocumentRoot string

	ExpoPushURL     string
	ExpoAccessToken string

	// Cron expressions for the two daily birthday runs.
	BirthdayTodaySpec    string
	BirthdayTomorrowSpec string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),
		JWTTTL:    time.Hour,

		MeiliSearchHost: getEnv("MEILISEARCH_HOST", ""),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		DocumentRoot: getEnv("DOCUMENT_ROOT", "storage/documents"),

		ExpoPushURL:     os.Getenv("EXPO_PUSH_URL"),
		ExpoAccessToken: os.Getenv("EXPO_ACCESS_TOKEN"),

		BirthdayTodaySpec:    getEnv("BIRTHDAY_TODAY_CRON", "0 8 * * *"),
		BirthdayTomorrowSpec: getEnv("BIRTHDAY_TOMORROW_CRON", "0 20 * * *"),
	}

	if ttlStr := os.Getenv("JWT_TTL_MINUTES"); ttlStr != "" {
		if minutes, err := strconv.Atoi(ttlStr); err == nil {
			cfg.JWTTTL = time.Duration(minutes) * time.Minute
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
