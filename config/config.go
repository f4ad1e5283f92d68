package config

import (
	"os"
	"strconv"
)

type Config struct {
	MongoURI  string
	MongoDB   string
	RedisAddr string
	HTTPPort  string

	// Gameplay tuning
	ReadingCharsPerSec float64 // narration speed used to gate buzzers
	CountdownSec       int     // answer window after narration finishes
}

func Load() *Config {
	return &Config{
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:            getEnv("MONGO_DB", "trivio"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		ReadingCharsPerSec: getEnvFloat("READING_CHARS_PER_SEC", 25),
		CountdownSec:       getEnvInt("COUNTDOWN_SEC", 5),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
