// Package config loads runtime settings for the CVKeeper terminal client.
// Values are layered: built-in defaults, then an optional JSON file
// (-c/-config), then command-line flags; later sources win.
package config

import "time"

// Config holds runtime settings for the terminal client.
type Config struct {
	// ServerBaseURL is the scheme://host[:port] of the profile backend.
	ServerBaseURL string
	// RequestTimeout bounds every gateway round trip.
	RequestTimeout time.Duration
	// DataDir is where the local state database lives.
	DataDir string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 10 * time.Second
	c.DataDir = "."
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if a config file was given) and command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
