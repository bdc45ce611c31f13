package commands

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig holds defaults loaded from an optional YAML config file.
// Command-line flags that were set explicitly always win over it.
type fileConfig struct {
	// WorkingDir is the default working directory.
	WorkingDir string `yaml:"working_dir"`

	// StrictFail overrides the default failure policy.
	StrictFail *bool `yaml:"strict_fail"`

	// Cleanup overrides the default cleanup behavior.
	Cleanup *bool `yaml:"cleanup"`

	// AccessTokenEnv names an environment variable to read the access
	// token from, so the token stays out of shell history.
	AccessTokenEnv string `yaml:"access_token_env"`

	// MetricsListen is an address to expose Prometheus metrics on.
	MetricsListen string `yaml:"metrics_listen"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}
	return &cfg, nil
}
