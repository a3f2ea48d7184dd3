package app

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/tabsession/pkg/session"
)

type Config struct {
	// Authority
	Issuer           string   `validate:"required,url"`               // AUTH_ISSUER: base URL (keycloak) or issuer (discovery)
	Realm            string   `validate:"required_without=Discovery"` // AUTH_REALM: keycloak realm, unused with discovery
	Discovery        bool                                             // AUTH_DISCOVERY: resolve endpoints from .well-known/openid-configuration (default: false)
	ClientID         string   `validate:"required"`                   // AUTH_CLIENT_ID
	ClientSecret     string                                           // AUTH_CLIENT_SECRET: empty for public clients
	RedirectURL      string   `validate:"required,url"`               // AUTH_REDIRECT_URL (default: http://localhost:5173/callback)
	PostLogoutURL    string   `validate:"omitempty,url"`              // AUTH_POST_LOGOUT_URL (default: http://localhost:5173/)
	Scopes           []string `validate:"min=1,dive,required"`        // AUTH_SCOPES: space separated (default: "openid profile")
	VerifySignatures bool                                             // AUTH_VERIFY_SIGNATURES: verify access tokens against the JWKS (default: true)
	AdminRole        string   `validate:"required"`                   // AUTH_ADMIN_ROLE: role that opens /admin (default: ADMIN)

	// Session lifecycle
	RefreshMargin     time.Duration `validate:"gte=0"`                          // SESSION_REFRESH_MARGIN (default: 30s)
	ClockSkew         time.Duration `validate:"gte=0"`                          // SESSION_CLOCK_SKEW (default: 5s)
	InactivityTimeout time.Duration `validate:"gt=0"`                           // SESSION_INACTIVITY_TIMEOUT (default: 5m)
	RefreshRetries    int           `validate:"gte=0,lte=10"`                   // SESSION_REFRESH_RETRIES (default: 2)
	RefreshBackoff    time.Duration `validate:"gte=0"`                          // SESSION_REFRESH_BACKOFF (default: 500ms)
	StoreDriver       string        `validate:"oneof=memory sqlite redis"`      // SESSION_STORE (default: memory)
	DatabaseFile      string        `validate:"required_if=StoreDriver sqlite"` // SESSION_DATABASE_FILE (default: ./session.db)
	RedisURL          string        `validate:"required_if=StoreDriver redis"`  // SESSION_REDIS_URL
	MasterKey         []byte                                                    // SESSION_MASTER_KEY: base64, empty generates an ephemeral key

	ResourceURL string `validate:"omitempty,url"` // RESOURCE_URL: hello API base (default: http://localhost:8081)

	Env                  string        `validate:"required"`                    // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        `validate:"oneof=debug info warn error"` // Log level (default: info)
	LogFormat            string        `validate:"oneof=json text"`             // Log format (default: json)
	Port                 int           `validate:"gt=0,lte=65535"`              // HTTP server port (default: 5173)
	ShutdownGracePeriod  time.Duration `validate:"gt=0"`                        // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration `validate:"gt=0"`                        // Expired record sweep interval (default: 1h)
}

func LoadConfig() (Config, error) {
	cfg := Config{
		Issuer:           getEnvOrDefault("AUTH_ISSUER", "http://localhost:8180"),
		Realm:            getEnvOrDefault("AUTH_REALM", "tabsession"),
		Discovery:        getEnvBoolOrDefault("AUTH_DISCOVERY", false),
		ClientID:         getEnvOrDefault("AUTH_CLIENT_ID", "tabsession-web"),
		ClientSecret:     os.Getenv("AUTH_CLIENT_SECRET"),
		RedirectURL:      getEnvOrDefault("AUTH_REDIRECT_URL", "http://localhost:5173/callback"),
		PostLogoutURL:    getEnvOrDefault("AUTH_POST_LOGOUT_URL", "http://localhost:5173/"),
		Scopes:           strings.Fields(getEnvOrDefault("AUTH_SCOPES", "openid profile")),
		VerifySignatures: getEnvBoolOrDefault("AUTH_VERIFY_SIGNATURES", true),
		AdminRole:        getEnvOrDefault("AUTH_ADMIN_ROLE", "ADMIN"),

		RefreshMargin:     getEnvDurationOrDefault("SESSION_REFRESH_MARGIN", session.DefaultRefreshMargin),
		ClockSkew:         getEnvDurationOrDefault("SESSION_CLOCK_SKEW", session.DefaultClockSkew),
		InactivityTimeout: getEnvDurationOrDefault("SESSION_INACTIVITY_TIMEOUT", session.DefaultInactivityTimeout),
		RefreshRetries:    getEnvIntOrDefault("SESSION_REFRESH_RETRIES", session.DefaultRefreshRetries),
		RefreshBackoff:    getEnvDurationOrDefault("SESSION_REFRESH_BACKOFF", session.DefaultRefreshBackoff),
		StoreDriver:       getEnvOrDefault("SESSION_STORE", "memory"),
		DatabaseFile:      getEnvOrDefault("SESSION_DATABASE_FILE", "session.db"),
		RedisURL:          os.Getenv("SESSION_REDIS_URL"),

		ResourceURL: getEnvOrDefault("RESOURCE_URL", "http://localhost:8081"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 5173),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if raw := os.Getenv("SESSION_MASTER_KEY"); raw != "" {
		key, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return Config{}, fmt.Errorf("SESSION_MASTER_KEY is not valid base64: %w", err)
		}
		cfg.MasterKey = key
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the struct tags and reports every failing field.
func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// WebOrigin is the scheme and host the browser uses for this client, taken
// from the redirect URL. "" when the URL has no host.
func (c Config) WebOrigin() string {
	u, err := url.Parse(c.RedirectURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// "1h", "30m", "90s"
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
