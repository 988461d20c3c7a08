package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Scheduling backend
	BackendURL     string
	BackendTimeout time.Duration
	ChatbotUserID  int

	// Dialogue engine REST channel
	DialogueWebhookURL string
	DialogueTimeout    time.Duration

	// WhatsApp Cloud API
	WhatsAppAccessToken   string
	WhatsAppPhoneNumberID string
	WhatsAppVerifyToken   string
	WhatsAppAppSecret     string
	WhatsAppAPIKey        string
	GraphAPIBase          string

	// Optional infrastructure
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	DedupTTL      time.Duration
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present; real environment wins.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		BackendURL:     getEnv("BACKEND_URL", ""),
		BackendTimeout: getEnvAsDuration("BACKEND_TIMEOUT", 10*time.Second),
		ChatbotUserID:  getEnvAsInt("CHATBOT_USER_ID", 0),

		DialogueWebhookURL: getEnv("DIALOGUE_WEBHOOK_URL", "http://localhost:5005/webhooks/rest/webhook"),
		DialogueTimeout:    getEnvAsDuration("DIALOGUE_TIMEOUT", 5*time.Second),

		WhatsAppAccessToken:   getEnv("WHATSAPP_ACCESS_TOKEN", ""),
		WhatsAppPhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		WhatsAppVerifyToken:   getEnv("WHATSAPP_VERIFY_TOKEN", ""),
		WhatsAppAppSecret:     getEnv("WHATSAPP_APP_SECRET", ""),
		WhatsAppAPIKey:        getEnv("X_API_KEY", ""),
		GraphAPIBase:          getEnv("GRAPH_API_BASE", "https://graph.facebook.com/v16.0"),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		DedupTTL:      getEnvAsDuration("DEDUP_TTL", 24*time.Hour),
	}
}

// Validate reports every required setting that is missing.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.BackendURL) == "" {
		errs = append(errs, errors.New("BACKEND_URL is required"))
	}
	if c.ChatbotUserID <= 0 {
		errs = append(errs, errors.New("CHATBOT_USER_ID must be a positive backend user id"))
	}
	if strings.TrimSpace(c.WhatsAppVerifyToken) == "" {
		errs = append(errs, errors.New("WHATSAPP_VERIFY_TOKEN is required"))
	}
	if strings.TrimSpace(c.WhatsAppAccessToken) == "" {
		errs = append(errs, errors.New("WHATSAPP_ACCESS_TOKEN is required"))
	}
	if strings.TrimSpace(c.WhatsAppPhoneNumberID) == "" {
		errs = append(errs, errors.New("WHATSAPP_PHONE_NUMBER_ID is required"))
	}
	if c.BackendTimeout <= 0 {
		errs = append(errs, fmt.Errorf("BACKEND_TIMEOUT must be positive, got %s", c.BackendTimeout))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: %w", errors.Join(errs...))
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
