package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		Bank            string `yaml:"bank"`
		DurationSec     int    `yaml:"duration_seconds"`
		Questions       int    `yaml:"questions"`
		WinnerThreshold int    `yaml:"winner_threshold"`
		TTL             string `yaml:"ttl"`
	} `yaml:"quiz"`
}

// Quiz defaults; every value is overridable from the config file.
const (
	DefaultBankID          = "default"
	DefaultDurationSec     = 360
	DefaultQuestionCount   = 10
	DefaultWinnerThreshold = 7
)

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Normalize fills zero-valued quiz settings with the defaults above.
func (c *Config) Normalize() {
	if c.Quiz.Bank == "" {
		c.Quiz.Bank = DefaultBankID
	}
	if c.Quiz.DurationSec <= 0 {
		c.Quiz.DurationSec = DefaultDurationSec
	}
	if c.Quiz.Questions <= 0 {
		c.Quiz.Questions = DefaultQuestionCount
	}
	if c.Quiz.WinnerThreshold <= 0 {
		c.Quiz.WinnerThreshold = DefaultWinnerThreshold
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
