package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
aws_region: us-east-1
subscription_table: caravel-subscriptions
inventory_bucket: caravel-inventory
work_queue_url: https://sqs.us-east-1.amazonaws.com/1/caravel-work
error_queue_url: https://sqs.us-east-1.amazonaws.com/1/caravel-errors
fanout_topic_arn: arn:aws:sns:us-east-1:1:caravel-fanout
tenant_secret_id: caravel/tenants
`

func TestParseValid(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.Equal(t, "caravel-subscriptions", cfg.SubscriptionTable)
	assert.Equal(t, "caravel-inventory", cfg.InventoryBucket)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, "Azure_Resources", cfg.InventoryPrefix)
	assert.Equal(t, 5, cfg.GroupSize)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Duration(0), cfg.PublishDelay())
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(validYAML + "\nsubscrption_tabel: typo\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse([]byte(validYAML + `
group_size: 10
publish_delay_seconds: 30
inventory_prefix: Azure_Snapshots
exclude_kinds:
  - hdinsight
`))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.GroupSize)
	assert.Equal(t, 30*time.Second, cfg.PublishDelay())
	assert.Equal(t, "Azure_Snapshots", cfg.InventoryPrefix)
	assert.Equal(t, []string{"hdinsight"}, cfg.ExcludeKinds)
}

func TestValidateRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing table", func(c *Config) { c.SubscriptionTable = "" }, "subscription_table"},
		{"missing bucket", func(c *Config) { c.InventoryBucket = "" }, "inventory_bucket"},
		{"missing tenant secret", func(c *Config) { c.TenantSecretID = "" }, "tenant_secret_id"},
		{"zero group size", func(c *Config) { c.GroupSize = 0 }, "group_size"},
		{"negative delay", func(c *Config) { c.PublishDelaySeconds = -1 }, "publish_delay_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(validYAML))
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/caravel.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
