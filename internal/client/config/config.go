package config

import (
	"path/filepath"
	"time"
)

// Config holds runtime settings for the JobCoach client.
//
// Fields:
//   - APIBaseURL: base URL of the backend; the GraphQL endpoint is APIBaseURL + "/graphql".
//   - RequestTimeout: upper bound for every backend call.
//   - FeatureGatePollInterval: how often the feature-gate snapshot is refetched.
//   - DataDir: directory holding the local database.
//   - SecureDir: directory holding the device secret; kept outside DataDir so
//     exporting app data never carries the key.
//   - DatabaseFile: database file name inside DataDir.
//   - LogLevel/LogFormat: see logging.New.
//   - PolicyVersion: privacy policy version sent with customized consent.
type Config struct {
	APIBaseURL              string
	RequestTimeout          time.Duration
	FeatureGatePollInterval time.Duration
	DataDir                 string
	SecureDir               string
	DatabaseFile            string
	LogLevel                string
	LogFormat               string
	PolicyVersion           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:4000"
	c.RequestTimeout = 30 * time.Second
	c.FeatureGatePollInterval = 2 * time.Minute
	c.DataDir = "jobcoach_data"
	c.SecureDir = "jobcoach_secure"
	c.DatabaseFile = "client.db"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.PolicyVersion = "1.0"
}

// DatabasePath returns the full path of the local database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, c.DatabaseFile)
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if given), command-line flags and the environment. Later
// sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	parseEnv(cfg)
	return cfg, nil
}
