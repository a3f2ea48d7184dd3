package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Issuer         string        `validate:"required,url"`               // HELLO_ISSUER: authority base URL (keycloak) or issuer (discovery)
	Realm          string        `validate:"required_without=Discovery"` // HELLO_REALM: keycloak realm (default: tabsession)
	Discovery      bool                                                  // HELLO_DISCOVERY: resolve the JWKS URL by OIDC discovery (default: false)
	ClientID       string        `validate:"required"`                   // HELLO_CLIENT_ID: client whose roles are read (default: tabsession-web)
	Audience       string                                                // HELLO_AUDIENCE: required aud claim, empty accepts any
	AllowedOrigins []string      `validate:"dive,url"`                   // HELLO_ALLOWED_ORIGINS: space separated (default: http://localhost:5173)
	AdminRole      string        `validate:"required"`                   // HELLO_ADMIN_ROLE (default: ADMIN)
	ClockSkew      time.Duration `validate:"gte=0"`                      // HELLO_CLOCK_SKEW: leeway for exp/nbf/iat (default: 5s)

	Env                 string        `validate:"required"`                    // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        `validate:"oneof=debug info warn error"` // Log level (default: info)
	LogFormat           string        `validate:"oneof=json text"`             // Log format (default: json)
	Port                int           `validate:"gt=0,lte=65535"`              // HTTP server port (default: 8081)
	ShutdownGracePeriod time.Duration `validate:"gt=0"`                        // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() (Config, error) {
	cfg := Config{
		Issuer:         getEnvOrDefault("HELLO_ISSUER", "http://localhost:8180"),
		Realm:          getEnvOrDefault("HELLO_REALM", "tabsession"),
		Discovery:      os.Getenv("HELLO_DISCOVERY") == "true",
		ClientID:       getEnvOrDefault("HELLO_CLIENT_ID", "tabsession-web"),
		Audience:       os.Getenv("HELLO_AUDIENCE"),
		AllowedOrigins: strings.Fields(getEnvOrDefault("HELLO_ALLOWED_ORIGINS", "http://localhost:5173")),
		AdminRole:      getEnvOrDefault("HELLO_ADMIN_ROLE", "ADMIN"),
		ClockSkew:      getEnvDurationOrDefault("HELLO_CLOCK_SKEW", 5*time.Second),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("HELLO_PORT", 8081),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if intValue, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if duration, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return duration
	}
	return defaultValue
}
