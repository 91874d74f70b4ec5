package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	BackendURL     string
	RequestTimeout time.Duration

	// Directory where the session token and cached profile are persisted.
	StateDir string

	// Default timezone used to format appointment windows for the backend.
	Timezone string

	// Clinic identity printed on receipts and share links.
	ClinicName    string
	ClinicPhone   string
	ClinicAddress string

	// Country calling prefix for wa.me links.
	WhatsAppPrefix string

	// Notification badge polling interval for the topbar.
	NotifyPollInterval time.Duration

	MetricsEnabled bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		BackendURL:         getEnv("BACKEND_URL", "http://localhost:8081"),
		RequestTimeout:     getEnvAsDuration("REQUEST_TIMEOUT", 20*time.Second),
		StateDir:           getEnv("STATE_DIR", defaultStateDir()),
		Timezone:           getEnv("CLINIC_TZ", "America/Guatemala"),
		ClinicName:         getEnv("CLINIC_NAME", "Absolute Clínica Fisioterapeutas"),
		ClinicPhone:        getEnv("CLINIC_PHONE", "2335-5691"),
		ClinicAddress:      getEnv("CLINIC_ADDRESS", "Guatemala, Guatemala"),
		WhatsAppPrefix:     getEnv("WHATSAPP_PREFIX", "502"),
		NotifyPollInterval: getEnvAsDuration("NOTIFY_POLL_INTERVAL", 30*time.Second),
		MetricsEnabled:     getEnvAsBool("METRICS_ENABLED", true),
	}
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".clinic-admin"
	}
	return filepath.Join(home, ".clinic-admin")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
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
