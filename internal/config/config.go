package config

import (
	"fmt"
	"runtime"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type Config struct {
	BaseURL     string `yaml:"canvas_url"`
	Token       string `yaml:"canvas_token"`
	Destination string `yaml:"destination"`
	Workers     int    `yaml:"workers"`
	LogLevel    string `yaml:"log_level"`
}

func (c *Config) SetDefaults() {
	if c.Destination == "" {
		c.Destination = "."
	}
	if c.Workers < 1 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = LogLevelInfo
	}
}

// Credentials is the content of the credential file.
type Credentials struct {
	CanvasURL   string `yaml:"canvas_url"`
	CanvasToken string `yaml:"canvas_token"`
}

func LoadCredentials(fs afero.Fs, path string) (*Credentials, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("cannot read credential file: %w", err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("cannot unmarshal credential file: %w", err)
	}

	return &creds, nil
}

func SaveCredentials(fs afero.Fs, path string, creds *Credentials) error {
	data, err := yaml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("cannot marshal credentials: %w", err)
	}

	if err := afero.WriteFile(fs, path, data, 0o600); err != nil {
		return fmt.Errorf("cannot write credential file: %w", err)
	}

	return nil
}
