package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration (webhook receiver)
	Server ServerConfig

	// Backend REST API configuration
	API APIConfig

	// Payment gateway configuration
	Payment PaymentConfig

	// Chat assistant configuration
	Assistant AssistantConfig

	// Secure store configuration
	Store StoreConfig
}

// ServerConfig holds webhook server configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// APIConfig holds backend REST API configuration
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PaymentConfig holds Chapa gateway configuration
type PaymentConfig struct {
	Environment     string // "sandbox" or "production"
	PublicKey       string // Chapa public key (Bearer auth)
	Currency        string // defaults to ETB
	ReturnURLPrefix string // checkout redirects here on completion
	CallbackURL     string // webhook URL Chapa notifies asynchronously
}

// AssistantConfig holds chat assistant configuration
type AssistantConfig struct {
	PrimaryURL  string
	FallbackURL string
	Timeout     time.Duration
}

// StoreConfig holds secure store configuration
type StoreConfig struct {
	Path       string
	Passphrase string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", ""),
			Timeout: time.Duration(getEnvAsInt("API_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Payment: PaymentConfig{
			Environment:     getEnv("CHAPA_ENVIRONMENT", "sandbox"),
			PublicKey:       getEnv("CHAPA_PUBLIC_KEY", ""),
			Currency:        getEnv("CHAPA_CURRENCY", "ETB"),
			ReturnURLPrefix: getEnv("CHAPA_RETURN_URL", ""),
			CallbackURL:     getEnv("CHAPA_CALLBACK_URL", ""),
		},
		Assistant: AssistantConfig{
			PrimaryURL:  getEnv("ASSISTANT_PRIMARY_URL", ""),
			FallbackURL: getEnv("ASSISTANT_FALLBACK_URL", ""),
			Timeout:     time.Duration(getEnvAsInt("ASSISTANT_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Store: StoreConfig{
			Path:       getEnv("SECURE_STORE_PATH", defaultStorePath()),
			Passphrase: getEnv("SECURE_STORE_PASSPHRASE", ""),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}

	// Payment configuration is only required when a key is present at all;
	// a keyless build can still browse and reserve.
	if c.Payment.PublicKey != "" {
		if c.Payment.ReturnURLPrefix == "" {
			return fmt.Errorf("CHAPA_RETURN_URL is required when CHAPA_PUBLIC_KEY is set")
		}
		if c.Payment.Environment != "sandbox" && c.Payment.Environment != "production" {
			return fmt.Errorf("invalid CHAPA_ENVIRONMENT: %s (must be 'sandbox' or 'production')", c.Payment.Environment)
		}
	}

	return nil
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tourapp/store.enc"
	}
	return home + "/.tourapp/store.enc"
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}
