package app

import (
	"fmt"
)

// Config holds everything an App instance needs to run.
type Config struct {
	// ConfigPath is a single .hcl file or a directory of .hcl files.
	ConfigPath string
	// OutputDir receives one <measurement>.qua file per measurement.
	// Empty writes every program to standard output instead.
	OutputDir string
	LogFormat string
	LogLevel  string
}

// NewConfig validates and fills in defaults for a Config.
func NewConfig(c Config) (*Config, error) {
	if c.ConfigPath == "" {
		return nil, fmt.Errorf("config path is required")
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return &c, nil
}
