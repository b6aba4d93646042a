package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL      string
	WhatsAppStoreURL string
	Port             string
	Env              string

	// Session lifecycle
	SessionIdleTimeout  time.Duration
	TurnHistoryCapacity int
	SweepInterval       time.Duration

	// AI responder
	AITimeout       time.Duration
	AIFallbackReply string

	PaymentGateway string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		WhatsAppStoreURL: os.Getenv("WHATSAPP_STORE_URL"),
		Port:             os.Getenv("PORT"),
		Env:              os.Getenv("ENV"),
		AIFallbackReply:  os.Getenv("AI_FALLBACK_REPLY"),
		PaymentGateway:   os.Getenv("PAYMENT_GATEWAY"),

		SessionIdleTimeout:  getDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		TurnHistoryCapacity: getInt("TURN_HISTORY_CAPACITY", 20),
		SweepInterval:       getDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		AITimeout:           getDuration("AI_TIMEOUT", 30*time.Second),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.WhatsAppStoreURL == "" {
		// Default to main database if not specified
		cfg.WhatsAppStoreURL = cfg.DatabaseURL
	}
	if cfg.AIFallbackReply == "" {
		cfg.AIFallbackReply = "I'm sorry, I couldn't process your message right now. Please hold on and try again in a moment."
	}
	if cfg.PaymentGateway == "" {
		cfg.PaymentGateway = "manual"
	}

	return cfg
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("⚠️ Invalid duration for %s (%q), using default %s", key, raw, fallback)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("⚠️ Invalid value for %s (%q), using default %d", key, raw, fallback)
		return fallback
	}
	return n
}
