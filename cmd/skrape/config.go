package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "skrape.yaml"

// Config holds CLI settings. Values are layered: YAML file, then
// environment (including .env), then command-line flags.
type Config struct {
	APIKey     string        `yaml:"apiKey"`
	BaseURL    string        `yaml:"baseUrl"`
	MaxRetries int           `yaml:"maxRetries"`
	Timeout    time.Duration `yaml:"timeout"`
}

// loadConfig reads path (when it exists) and applies environment overrides.
// A missing file is only an error when the path was set explicitly.
func loadConfig(path string, explicit bool) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := loadDotenv(".env"); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotenv loads variables from the given .env files. Missing files are
// skipped; real environment variables take precedence over file values.
func loadDotenv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("SKRAPE_API_KEY"); ok && v != "" {
		c.APIKey = v
	}
	if v, ok := lookup("SKRAPE_BASE_URL"); ok && v != "" {
		c.BaseURL = v
	}
	if v, ok := lookup("SKRAPE_MAX_RETRIES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SKRAPE_MAX_RETRIES: %w", err)
		}
		c.MaxRetries = n
	}
	if v, ok := lookup("SKRAPE_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SKRAPE_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	return nil
}
