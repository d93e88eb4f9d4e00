// Package config loads runtime configuration for the JobCoach client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file (see parseFile) selected via flags: -c or -config.
//     Files ending in .yaml or .yml are read as YAML, anything else as JSON.
//  3. Command-line flags (see parseFlags).
//  4. Environment variables (see parseEnv), which override everything else.
//
// Supported flags
//
//	-a string   base URL of the backend API
//	-t int      request timeout (seconds)
//	-p int      feature gate poll interval (seconds)
//	-d string   data directory
//
// Environment
//
//	JOBCOACH_API_URL     base URL of the backend API
//	JOBCOACH_LOG_LEVEL   debug, info, warn or error
//
// # File schema
//
// Durations use timex.Duration, so values can be either strings like "30s"
// or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://api.example.com",
//	  "request_timeout": "30s",
//	  "feature_gate_poll_interval": "2m",
//	  "data_dir": "/var/lib/jobcoach",
//	  "secure_dir": "/var/lib/jobcoach-secure",
//	  "log_level": "debug"
//	}
package config
