package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/jobcoach/internal/flagx"
	"github.com/dmitrijs2005/jobcoach/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for file unmarshalling. Empty fields
// leave the corresponding Config value untouched.
type FileConfig struct {
	APIBaseURL              string         `json:"api_base_url" yaml:"api_base_url"`
	RequestTimeout          timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	FeatureGatePollInterval timex.Duration `json:"feature_gate_poll_interval" yaml:"feature_gate_poll_interval"`
	DataDir                 string         `json:"data_dir" yaml:"data_dir"`
	SecureDir               string         `json:"secure_dir" yaml:"secure_dir"`
	DatabaseFile            string         `json:"database_file" yaml:"database_file"`
	LogLevel                string         `json:"log_level" yaml:"log_level"`
	LogFormat               string         `json:"log_format" yaml:"log_format"`
	PolicyVersion           string         `json:"policy_version" yaml:"policy_version"`
}

// parseFile overlays cfg with values from the file named by -c/-config.
// Without the flag nothing is loaded.
func parseFile(cfg *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.APIBaseURL, fc.APIBaseURL)
	setDuration(&cfg.RequestTimeout, fc.RequestTimeout)
	setDuration(&cfg.FeatureGatePollInterval, fc.FeatureGatePollInterval)
	setString(&cfg.DataDir, fc.DataDir)
	setString(&cfg.SecureDir, fc.SecureDir)
	setString(&cfg.DatabaseFile, fc.DatabaseFile)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.PolicyVersion, fc.PolicyVersion)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration > 0 {
		*dst = v.Duration
	}
}
