package config

import (
	"fmt"
	"os"
)

const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

type Config struct {
	StorageBackend   string
	DatabasePath     string
	DataFile         string
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string
	SessionSecret    string
	FeedToken        string
	LogLevel         string
	Port             string
	AutoAssign       bool
}

func Load() (Config, error) {
	config := Config{
		StorageBackend:   envOrDefault("STORAGE_BACKEND", BackendSQLite),
		DatabasePath:     envOrDefault("DATABASE_PATH", "./data/roomie-roster.db"),
		DataFile:         envOrDefault("DATA_FILE", "./data/roomie-roster.json"),
		OIDCIssuer:       os.Getenv("OIDC_ISSUER"),
		OIDCClientID:     os.Getenv("OIDC_CLIENT_ID"),
		OIDCClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
		OIDCRedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
		SessionSecret:    os.Getenv("SESSION_SECRET"),
		FeedToken:        os.Getenv("FEED_TOKEN"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		Port:             envOrDefault("PORT", "8080"),
		AutoAssign:       envOrDefault("AUTO_ASSIGN", "true") == "true",
	}

	if config.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required")
	}

	if config.StorageBackend != BackendSQLite && config.StorageBackend != BackendJSON {
		return Config{}, fmt.Errorf("unknown STORAGE_BACKEND %q (want %q or %q)",
			config.StorageBackend, BackendSQLite, BackendJSON)
	}

	return config, nil
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
