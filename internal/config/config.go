package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Port       string
	SessionKey string
	// SecureCookies marks session cookies Secure; enable behind HTTPS.
	SecureCookies bool
	LogLevel      string
	LogFormat     string
	BcryptCost    int
	SeedDemo      bool
	// AllowTestUserHeader lets X-Test-User-ID act as the signed-in user (DEV ONLY).
	AllowTestUserHeader bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:                getEnv("PORT", "8080"),
		SessionKey:          getEnv("SESSION_KEY", ""),
		SecureCookies:       getEnvBool("SECURE_COOKIES", false),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "json"),
		BcryptCost:          getEnvInt("BCRYPT_COST", 0),
		SeedDemo:            getEnvBool("SEED_DEMO", false),
		AllowTestUserHeader: getEnvBool("ALLOW_TEST_USER_HEADER", false),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(getEnv(key, "")))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(strings.TrimSpace(getEnv(key, "")))
	if err != nil {
		return defaultValue
	}
	return v
}
