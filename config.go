// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	EIAAPIKey       string `yaml:"eia_api_key"`
	DataDir         string `yaml:"data_dir"`
	ForceUpdate     bool   `yaml:"force_update"`
	Debug           bool   `yaml:"debug"`
	JSONLogs        bool   `yaml:"json_logs"`
	MetricsFile     string `yaml:"metrics_file"`
	BalanceMatch    string `yaml:"balance_match"`
	EurostatBaseURL string `yaml:"eurostat_base_url"`
	EIABaseURL      string `yaml:"eia_base_url"`
}

func LoadConfig(configPath string) (*Config, error) {
	config := &Config{
		DataDir:         DefaultDataDir,
		BalanceMatch:    string(BalanceMatchContains),
		EurostatBaseURL: DefaultEurostatBaseURL,
		EIABaseURL:      DefaultEIABaseURL,
	}

	if configPath == "" {
		return config, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// LoadEnvFile loads KEY=value pairs from a dotenv file into the process
// environment. Variables already set are left alone and a missing file is
// not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func (c *Config) ApplyDefaults() {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.BalanceMatch == "" {
		c.BalanceMatch = string(BalanceMatchContains)
	}
	if c.EurostatBaseURL == "" {
		c.EurostatBaseURL = DefaultEurostatBaseURL
	}
	if c.EIABaseURL == "" {
		c.EIABaseURL = DefaultEIABaseURL
	}
}

// APIKeyConfigured reports whether an EIA key is available
func (c *Config) APIKeyConfigured() bool {
	return strings.TrimSpace(c.EIAAPIKey) != ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var problems []error

	if strings.TrimSpace(c.DataDir) == "" {
		problems = append(problems, &ValidationError{Field: "data_dir", Message: "must not be empty"})
	}

	switch BalanceMatch(c.BalanceMatch) {
	case BalanceMatchContains, BalanceMatchPrefix:
	default:
		problems = append(problems, &ValidationError{
			Field:   "balance_match",
			Value:   c.BalanceMatch,
			Message: fmt.Sprintf("must be %q or %q", BalanceMatchContains, BalanceMatchPrefix),
		})
	}

	if err := validateBaseURL("eurostat_base_url", c.EurostatBaseURL); err != nil {
		problems = append(problems, err)
	}
	if err := validateBaseURL("eia_base_url", c.EIABaseURL); err != nil {
		problems = append(problems, err)
	}

	if c.APIKeyConfigured() && strings.ContainsAny(c.EIAAPIKey, " \t\r\n") {
		problems = append(problems, &ValidationError{Field: "eia_api_key", Message: "must not contain whitespace"})
	}

	if len(problems) > 0 {
		msgs := make([]string, len(problems))
		for i, p := range problems {
			msgs[i] = p.Error()
		}
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
	}

	return nil
}

func validateBaseURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &ValidationError{Field: field, Value: raw, Message: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: field, Value: raw, Message: "must be an absolute http(s) URL"}
	}
	if u.Host == "" {
		return &ValidationError{Field: field, Value: raw, Message: "missing host"}
	}
	return nil
}
