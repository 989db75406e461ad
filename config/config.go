// Package config loads the YAML configuration surface consumed by the
// pipeline. Unrecognized keys are a construction-time error, not silently
// ignored.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the main configuration
type Config struct {
	// AWS control-plane collaborators.
	AWSRegion         string `yaml:"aws_region"`
	SubscriptionTable string `yaml:"subscription_table"`
	InventoryBucket   string `yaml:"inventory_bucket"`
	InventoryPrefix   string `yaml:"inventory_prefix"`
	WorkQueueURL      string `yaml:"work_queue_url"`
	ErrorQueueURL     string `yaml:"error_queue_url"`
	FanOutTopicARN    string `yaml:"fanout_topic_arn"`

	// Secret identifiers.
	TenantSecretID  string `yaml:"tenant_secret_id"`
	PostureSecretID string `yaml:"posture_secret_id"`

	// Fan-out shape.
	GroupSize           int `yaml:"group_size"`
	PublishDelaySeconds int `yaml:"publish_delay_seconds"`

	// Fetch behavior.
	ManagementRoot string   `yaml:"management_root"`
	ExcludeKinds   []string `yaml:"exclude_kinds"`

	// Process surface.
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes configuration, rejecting unknown keys.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.InventoryPrefix == "" {
		c.InventoryPrefix = "Azure_Resources"
	}
	if c.GroupSize == 0 {
		c.GroupSize = 5
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = ":9090"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate ensures config has required fields
func (c *Config) Validate() error {
	if c.SubscriptionTable == "" {
		return fmt.Errorf("subscription_table is required")
	}
	if c.InventoryBucket == "" {
		return fmt.Errorf("inventory_bucket is required")
	}
	if c.TenantSecretID == "" {
		return fmt.Errorf("tenant_secret_id is required")
	}
	if c.GroupSize < 1 {
		return fmt.Errorf("group_size must be at least 1")
	}
	if c.PublishDelaySeconds < 0 {
		return fmt.Errorf("publish_delay_seconds must not be negative")
	}
	return nil
}

// PublishDelay returns the inter-publish delay as a duration.
func (c *Config) PublishDelay() time.Duration {
	return time.Duration(c.PublishDelaySeconds) * time.Second
}
