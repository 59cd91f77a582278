package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process level configuration. Loaded once at startup so main
// stays lean; everything downstream receives values, never the environment.
type Server struct {
	Addr           string
	JWTSigningKey  string
	DatabaseURL    string
	RedisURL       string
	AllowedOrigins []string
	TokenTTL       time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("LEADFLOW_ADDR")
	if addr == "" {
		addr = ":4000"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	tokenTTL := 24 * time.Hour
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			tokenTTL = d
		}
	}

	return Server{
		Addr:           addr,
		JWTSigningKey:  jwtSigningKey,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		AllowedOrigins: splitOrigins(os.Getenv("ALLOWED_ORIGINS")),
		TokenTTL:       tokenTTL,
	}
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
