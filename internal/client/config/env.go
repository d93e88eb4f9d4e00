package config

import "os"

const (
	EnvAPIURL   = "JOBCOACH_API_URL"
	EnvLogLevel = "JOBCOACH_LOG_LEVEL"
)

func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvAPIURL); ok && v != "" {
		cfg.APIBaseURL = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
}
