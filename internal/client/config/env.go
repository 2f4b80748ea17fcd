package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays cfg with environment variables, loading a .env file
// first when one exists in the working directory.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("CLOCKIN_BACKEND_URL"); v != "" {
		cfg.BackendBaseURL = v
	}
	if v := os.Getenv("CLOCKIN_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HTTPTimeout = d
		}
	}
	if v := os.Getenv("CLOCKIN_DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("CLOCKIN_NOMINATIM_URL"); v != "" {
		cfg.NominatimBaseURL = v
	}
	if v := os.Getenv("CLOCKIN_NOMINATIM_USER_AGENT"); v != "" {
		cfg.NominatimUserAgent = v
	}
}
