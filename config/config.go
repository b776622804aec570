package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the scraper configuration
type Config struct {
	Scrape struct {
		Filter5Stars bool `yaml:"filter_5_stars"`
		MaxPages     int  `yaml:"max_pages"`
		Workers      int  `yaml:"workers"`
	} `yaml:"scrape"`
	Fetch struct {
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		MaxAttempts    int     `yaml:"max_attempts"`
		DelaySeconds   float64 `yaml:"delay_seconds"`
	} `yaml:"fetch"`
	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// GetDefaultConfig returns a default configuration
func GetDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Scrape.Filter5Stars = false
	cfg.Scrape.MaxPages = 100
	cfg.Scrape.Workers = 1
	cfg.Fetch.TimeoutSeconds = 30
	cfg.Fetch.MaxAttempts = 3
	cfg.Fetch.DelaySeconds = 2.0
	cfg.Output.Dir = "."
	return cfg
}
