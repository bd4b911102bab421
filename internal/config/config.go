package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBDriver      string // sqlite or postgres
	DBPath        string
	DBHost        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPort        string
	DBSSLMode     string
	VerifyToken   string
	WhatsAppToken string
	PhoneNumberID string
	Transport     string // meta or simulated
	JWTSecret     string
	LogPath       string
	SweepMinutes  int
	// SendFailureRate is the simulated per-item failure probability (0..1).
	SendFailureRate float64
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		DBDriver:        getEnv("DB_DRIVER", "sqlite"),
		DBPath:          getEnv("DB_PATH", "./whatsbot.db"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", ""),
		DBName:          getEnv("DB_NAME", "whatsbot"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBSSLMode:       getEnv("DB_SSLMODE", "disable"),
		VerifyToken:     getEnv("VERIFY_TOKEN", ""),
		WhatsAppToken:   getEnv("WHATSAPP_TOKEN", ""),
		PhoneNumberID:   getEnv("PHONE_NUMBER_ID", ""),
		Transport:       getEnv("TRANSPORT", "simulated"),
		JWTSecret:       getEnv("JWT_SECRET", "whatsbot-dev-secret"),
		LogPath:         getEnv("LOG_PATH", "./logs/whatsbot.log"),
		SweepMinutes:    getEnvInt("SWEEP_INTERVAL_MINUTES", 60),
		SendFailureRate: getEnvFloat("SEND_FAILURE_RATE", 0),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
