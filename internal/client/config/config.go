// Package config assembles the CLI runtime settings. Sources are applied in
// order (defaults, JSON file, .env/environment, command-line flags) with
// later sources taking precedence.
package config

import "time"

type Config struct {
	// BackendBaseURL is the root of the remote time-tracking backend.
	BackendBaseURL string
	// HTTPTimeout bounds every backend call.
	HTTPTimeout time.Duration
	// DatabasePath is the sqlite file backing the local store.
	DatabasePath string

	// Nominatim reverse-geocoding settings. The public instance requires an
	// identifying User-Agent.
	NominatimBaseURL   string
	NominatimUserAgent string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendBaseURL = "https://rapportskollen.com"
	c.HTTPTimeout = 15 * time.Second
	c.DatabasePath = "clockin.db"
	c.NominatimBaseURL = "https://nominatim.openstreetmap.org"
	c.NominatimUserAgent = "clockin-cli/1.0 (support@rapportskollen.com)"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present), the environment, and command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
