package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config carries everything main needs to wire the service. Values come from
// the environment with development defaults; only DATABASE_URL is mandatory.
type Config struct {
	DatabaseURL string
	Port        int

	JWTSecret       string
	AccessTokenTTL  int // seconds
	RefreshTokenTTL int // seconds

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool

	// TriStateFilterMode selects browse filter semantics for the
	// vaccinated/neutered tri-state fields: "exact" or "yes_only".
	TriStateFilterMode string
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		Port:               getenvInt("PORT", 8080),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		AccessTokenTTL:     getenvInt("ACCESS_TOKEN_TTL", 3600),
		RefreshTokenTTL:    getenvInt("REFRESH_TOKEN_TTL", 30*24*3600),
		RedisAddr:          getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            getenvInt("REDIS_DB", 0),
		MinioEndpoint:      getenv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:     getenv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey:     getenv("MINIO_SECRET_KEY", "minioadmin"),
		MinioUseSSL:        os.Getenv("MINIO_USE_SSL") == "true",
		TriStateFilterMode: getenv("TRISTATE_FILTER_MODE", "exact"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
