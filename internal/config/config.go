package config

import "time"

// Config holds runtime settings for the newsdesk console.
//
// Fields:
//   - APIBaseURL: base URL of the publishing site's REST API.
//   - DatabasePath: sqlite file holding the cached credentials.
//   - SubmitDelay: pause between pressing submit on the login form and the
//     network call firing.
//   - RedirectDelay: grace period before a non-admin session is redirected
//     to the public site, so the warning stays readable.
//   - RedirectURL: where non-admin accounts are sent.
//   - LogFormat: "text" (slog) or "json" (zap).
type Config struct {
	APIBaseURL    string
	DatabasePath  string
	SubmitDelay   time.Duration
	RedirectDelay time.Duration
	RedirectURL   string
	LogFormat     string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8080"
	c.DatabasePath = "newsdesk.db"
	c.SubmitDelay = 250 * time.Millisecond
	c.RedirectDelay = 2 * time.Second
	c.RedirectURL = "https://theeverestnews.com"
	c.LogFormat = "text"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
