package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config is the read-only view of service configuration the rest of the
// code depends on. The EnvVars implementation reads the process
// environment; tests substitute a static implementation.
type Config interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsProduction() bool

	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetGoogleRedirectURL() string

	GetDatabaseDSN() string
	GetRedisAddr() string

	GetSessionTTLSeconds() int
	GetPostLoginRedirect() string
	GetPostLogoutRedirect() string
}

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	envVar        = "ENV"
	defaultTTLSec = 3600
)

type EnvVars struct{}

var _ Config = EnvVars{}

func New() Config {
	return EnvVars{}
}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "QR Scanner Registry")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "DEV")
}

func (e EnvVars) IsProduction() bool {
	return e.GetEnv() == "PROD"
}

func (EnvVars) GetGoogleClientID() string {
	return GetEnv("GOOGLE_CLIENT_ID", "")
}

func (EnvVars) GetGoogleClientSecret() string {
	return GetEnv("GOOGLE_CLIENT_SECRET", "")
}

func (EnvVars) GetGoogleRedirectURL() string {
	return GetEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/callback")
}

func (EnvVars) GetDatabaseDSN() string {
	return GetEnv("DATABASE_DSN", "")
}

func (EnvVars) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "")
}

func (EnvVars) GetSessionTTLSeconds() int {
	raw := GetEnv("SESSION_TTL_SECONDS", "")
	if raw == "" {
		return defaultTTLSec
	}
	ttl, err := strconv.Atoi(raw)
	if err != nil || ttl <= 0 {
		return defaultTTLSec
	}
	return ttl
}

func (EnvVars) GetPostLoginRedirect() string {
	return GetEnv("POST_LOGIN_REDIRECT", "/")
}

func (EnvVars) GetPostLogoutRedirect() string {
	return GetEnv("POST_LOGOUT_REDIRECT", "/")
}

// GetEnv reads an environment variable with a default.
func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
