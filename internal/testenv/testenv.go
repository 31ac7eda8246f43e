// Package testenv loads settings of integration tests, which send real requests to the Resend API.
//
// Settings are read from environment variables, optionally defined in a ".env" file
// in the working directory or in any parent directory up to the module root.
package testenv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envFile = ".env"

// Config of the integration tests.
type Config struct {
	APIKey  string `mapstructure:"api_key"`
	From    string `mapstructure:"from"`
	To      string `mapstructure:"to"`
	BaseURL string `mapstructure:"base_url"`
}

// Load reads the config, missing values are empty.
func Load() (*Config, error) {
	if path, found := findEnvFile(); found {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf(`cannot load "%s": %w`, path, err)
		}
	}

	v := viper.New()
	for key, env := range map[string]string{
		"api_key":  "RESEND_API_KEY",
		"from":     "RESEND_FROM",
		"to":       "RESEND_TO",
		"base_url": "RESEND_BASE_URL",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// LoadOrSkip returns the config, or skips the test if the API key, the sender or the recipient is not set.
func LoadOrSkip(t testing.TB) *Config {
	t.Helper()
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Skipf("integration test skipped: %s", err)
	}
	return cfg
}

// Validate checks that all required values are set.
func (c *Config) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, errors.New("RESEND_API_KEY is not set"))
	}
	if c.From == "" {
		errs = append(errs, errors.New("RESEND_FROM is not set"))
	}
	if c.To == "" {
		errs = append(errs, errors.New("RESEND_TO is not set"))
	}
	return errors.Join(errs...)
}

// findEnvFile searches the working directory and its parents, the search stops at the module root.
func findEnvFile() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		path := filepath.Join(dir, envFile)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return "", false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
