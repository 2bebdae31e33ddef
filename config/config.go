// Package config provides configuration loading and management for Schemalab.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/schemalab/insight"
)

// Config represents the complete Schemalab configuration
type Config struct {
	Schema  SchemaConfig  `yaml:"schema"`
	Dataset DatasetConfig `yaml:"dataset"`
	Insight InsightConfig `yaml:"insight"`
	NATS    NATSConfig    `yaml:"nats"`
}

// SchemaConfig configures the active schema source
type SchemaConfig struct {
	// Path is the schema file to load and watch (empty = built-in example)
	Path string `yaml:"path"`
}

// DatasetConfig configures the synthetic dataset fixture
type DatasetConfig struct {
	// Seed drives fixture generation; the same seed always reproduces
	// the same fixture
	Seed int64 `yaml:"seed"`
	// Customers, Products, Orders are collection sizes (0 = default)
	Customers int `yaml:"customers"`
	Products  int `yaml:"products"`
	Orders    int `yaml:"orders"`
	// Fixture is an externally produced snapshot file; when set it is
	// loaded instead of generating
	Fixture string `yaml:"fixture"`
}

// InsightConfig configures the LLM insight collaborator
type InsightConfig struct {
	// Endpoints is the ordered fallback chain of LLM endpoints
	Endpoints []insight.Endpoint `yaml:"endpoints"`
	// Temperature controls randomness (0.0-1.0, default: 0.2)
	Temperature float64 `yaml:"temperature"`
	// Timeout is the maximum time to wait for model responses
	Timeout time.Duration `yaml:"timeout"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	// URL is the NATS server URL (empty = use embedded server)
	URL string `yaml:"url"`
	// Embedded indicates whether to use embedded NATS
	Embedded bool `yaml:"embedded"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Schema: SchemaConfig{
			Path: "", // Built-in example schema
		},
		Dataset: DatasetConfig{
			Seed: 1,
		},
		Insight: InsightConfig{
			Endpoints: []insight.Endpoint{
				{Provider: "ollama", URL: "http://localhost:11434/v1", Model: "qwen2.5-coder:32b"},
			},
			Temperature: 0.2,
			Timeout:     3 * time.Minute,
		},
		NATS: NATSConfig{
			URL:      "",
			Embedded: true,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Insight.Temperature < 0 || c.Insight.Temperature > 1 {
		return fmt.Errorf("insight.temperature must be between 0 and 1")
	}
	for i, ep := range c.Insight.Endpoints {
		if ep.Provider == "" {
			return fmt.Errorf("insight.endpoints[%d]: provider is required", i)
		}
		if ep.Model == "" {
			return fmt.Errorf("insight.endpoints[%d]: model is required", i)
		}
	}
	if c.Dataset.Customers < 0 || c.Dataset.Products < 0 || c.Dataset.Orders < 0 {
		return fmt.Errorf("dataset sizes must be non-negative")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Schema
	if other.Schema.Path != "" {
		c.Schema.Path = other.Schema.Path
	}

	// Dataset
	if other.Dataset.Seed != 0 {
		c.Dataset.Seed = other.Dataset.Seed
	}
	if other.Dataset.Customers != 0 {
		c.Dataset.Customers = other.Dataset.Customers
	}
	if other.Dataset.Products != 0 {
		c.Dataset.Products = other.Dataset.Products
	}
	if other.Dataset.Orders != 0 {
		c.Dataset.Orders = other.Dataset.Orders
	}
	if other.Dataset.Fixture != "" {
		c.Dataset.Fixture = other.Dataset.Fixture
	}

	// Insight
	if len(other.Insight.Endpoints) > 0 {
		c.Insight.Endpoints = other.Insight.Endpoints
	}
	if other.Insight.Temperature != 0 {
		c.Insight.Temperature = other.Insight.Temperature
	}
	if other.Insight.Timeout != 0 {
		c.Insight.Timeout = other.Insight.Timeout
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
		c.NATS.Embedded = false
	}
}
