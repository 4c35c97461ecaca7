package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/cvkeeper/internal/flagx"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. The timeout
// is accepted as a duration string ("10s", "1m30s").
type jsonConfig struct {
	ServerBaseURL  string `json:"server_base_url"`
	RequestTimeout string `json:"request_timeout"`
	DataDir        string `json:"data_dir"`
}

// parseJSON overlays Config with values from the JSON file named by the
// -c/-config flag. Absent flag means no file is loaded. Only fields present
// in the file override the current values. Read or parse failures panic;
// a broken config file should stop the program immediately.
func parseJSON(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.RequestTimeout != "" {
		d, err := time.ParseDuration(jc.RequestTimeout)
		if err != nil {
			panic(err)
		}
		cfg.RequestTimeout = d
	}
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
}
