package config

import (
	"encoding/json"
	"os"

	"github.com/theeverestnews/newsdesk/internal/flagx"
	"github.com/theeverestnews/newsdesk/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. Durations may
// be given either as strings like "250ms" or as integer nanoseconds; parsed
// values are copied into the runtime Config.
type jsonConfig struct {
	APIBaseURL    string         `json:"api_base_url"`
	DatabasePath  string         `json:"database_path"`
	SubmitDelay   timex.Duration `json:"submit_delay"`
	RedirectDelay timex.Duration `json:"redirect_delay"`
	RedirectURL   string         `json:"redirect_url"`
	LogFormat     string         `json:"log_format"`
}

// parseJSON overlays cfg with values loaded from the JSON file named by the
// -c/-config flag. When no file is given the function is a no-op. Only fields
// present in the file override the current values, so a partial file works.
func parseJSON(cfg *Config) {
	jsonConfigFile := flagx.JSONConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc jsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.SubmitDelay.Duration != 0 {
		cfg.SubmitDelay = jc.SubmitDelay.Duration
	}
	if jc.RedirectDelay.Duration != 0 {
		cfg.RedirectDelay = jc.RedirectDelay.Duration
	}
	if jc.RedirectURL != "" {
		cfg.RedirectURL = jc.RedirectURL
	}
	if jc.LogFormat != "" {
		cfg.LogFormat = jc.LogFormat
	}
}
