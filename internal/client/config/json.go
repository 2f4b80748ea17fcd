package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rapportskollen/clockin/internal/flagx"
	"github.com/rapportskollen/clockin/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the timeout either as a string like
// "15s" or as integer nanoseconds.
type JsonConfig struct {
	BackendBaseURL     string         `json:"backend_base_url"`
	HTTPTimeout        timex.Duration `json:"http_timeout"`
	DatabasePath       string         `json:"database_path"`
	NominatimBaseURL   string         `json:"nominatim_base_url"`
	NominatimUserAgent string         `json:"nominatim_user_agent"`
}

// parseJson overlays cfg with values from the JSON file named by the -c or
// -config flag. No flag, no JSON. Only fields present in the file override.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.BackendBaseURL != "" {
		cfg.BackendBaseURL = jc.BackendBaseURL
	}
	if jc.HTTPTimeout.Duration != 0 {
		cfg.HTTPTimeout = time.Duration(jc.HTTPTimeout.Duration)
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.NominatimBaseURL != "" {
		cfg.NominatimBaseURL = jc.NominatimBaseURL
	}
	if jc.NominatimUserAgent != "" {
		cfg.NominatimUserAgent = jc.NominatimUserAgent
	}
}
