// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Defaults applied by MergeWithDefaults when neither the file nor the flags set a value
const (
	DefaultPort           = 8080
	DefaultScoringVariant = "semantic"
	DefaultTemplate       = "modern"
)

var scoringVariants = map[string]bool{"semantic": true, "keyword": true}

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// LLM
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	Concurrency int    `json:"concurrency,omitempty"`  // Maximum rewrite calls in flight
	MaxAttempts int    `json:"max_attempts,omitempty"` // Proposals per bullet, including the strict retry

	// Scoring
	ScoringVariant string `json:"scoring_variant,omitempty"` // "semantic" or "keyword"
	Vocabulary     string `json:"vocabulary,omitempty"`      // Path to a YAML synonyms/stopwords override

	// Output
	Template string `json:"template,omitempty"` // HTML template name for export

	// Infrastructure
	RedisURL   string `json:"redis_url,omitempty"`   // Shared extraction cache; in-memory when empty
	Port       int    `json:"port,omitempty"`        // HTTP listen port for serve
	UseBrowser bool   `json:"use_browser,omitempty"` // Render JD pages in headless Chrome when static fetch is thin
	Verbose    bool   `json:"verbose,omitempty"`     // Print detailed reports
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required fields are not checked here; CLI flag validation handles them after merging.
func (c *Config) Validate() error {
	if c.Concurrency < 0 {
		return fmt.Errorf("config error: 'concurrency' must be non-negative")
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("config error: 'max_attempts' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	if c.ScoringVariant != "" && !scoringVariants[c.ScoringVariant] {
		return fmt.Errorf("config error: unknown scoring_variant %q", c.ScoringVariant)
	}

	if c.Vocabulary != "" {
		if _, err := os.Stat(c.Vocabulary); os.IsNotExist(err) {
			return fmt.Errorf("config error: vocabulary file not found: %s", c.Vocabulary)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Vocabulary == "" {
		result.Vocabulary = defaults.Vocabulary
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if result.MaxAttempts == 0 {
		result.MaxAttempts = defaults.MaxAttempts
	}

	if result.ScoringVariant == "" {
		result.ScoringVariant = orDefault(defaults.ScoringVariant, DefaultScoringVariant)
	}
	if result.Template == "" {
		result.Template = orDefault(defaults.Template, DefaultTemplate)
	}
	if result.Port == 0 {
		result.Port = defaults.Port
		if result.Port == 0 {
			result.Port = DefaultPort
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
