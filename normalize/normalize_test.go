package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/caravel/types"
)

var testSub = types.Subscription{
	ID:          "S1",
	DisplayName: "Production",
	State:       types.StateEnabled,
	TenantID:    "tenant-1",
	TenantName:  "contoso",
	Queryable:   true,
}

func TestRegion(t *testing.T) {
	tests := []struct {
		name     string
		location any
		want     string
	}{
		{"mixed case with spaces", "West US 2", "westus2"},
		{"already normalized", "eastus", "eastus"},
		{"absent", nil, "unknown"},
		{"empty", "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := types.RawResource{"id": "/r/1"}
			if tt.location != nil {
				raw["location"] = tt.location
			}
			assert.Equal(t, tt.want, Region(raw))
		})
	}
}

func TestRecord(t *testing.T) {
	raw := types.RawResource{
		"id":       "/subscriptions/S1/resourceGroups/rg/providers/Microsoft.Network/networkSecurityGroups/web",
		"name":     "web",
		"location": "West US 2",
	}
	now := time.Date(2026, 8, 28, 12, 30, 45, 123456000, time.UTC)

	rec, err := Record(raw, "NetworkSecurityGroup", testSub, nil, now)
	require.NoError(t, err)

	assert.Equal(t, "S1", rec.SubscriptionID)
	assert.Equal(t, "Production", rec.SubscriptionName)
	assert.Equal(t, "tenant-1", rec.TenantID)
	assert.Equal(t, "contoso", rec.TenantName)
	assert.Equal(t, "Azure::NetworkSecurityGroup", rec.ResourceType)
	assert.Equal(t, types.SourceLabel, rec.Source)
	assert.Equal(t, "2026-08-28 12:30:45.123456", rec.CaptureTime)
	assert.Equal(t, raw, rec.Configuration)
	assert.Equal(t, "westus2", rec.Region)
	assert.Equal(t, raw.ID(), rec.ResourceID)
	assert.Equal(t, "unknown", rec.CreationTime)
	assert.Empty(t, rec.Errors)
	assert.Empty(t, rec.Supplementary)
}

func TestRecordMissingID(t *testing.T) {
	_, err := Record(types.RawResource{"name": "web"}, "NetworkSecurityGroup", testSub, nil, time.Now())
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "no id field")
}

func TestRecordAttachments(t *testing.T) {
	raw := types.RawResource{"id": "/vms/V1", "location": "eastus"}
	nics := []types.RawResource{{"id": "/nics/n1"}}

	rec, err := Record(raw, "VirtualMachine", testSub, map[string][]types.RawResource{
		"NetworkInterfaces": nics,
		"PublicIpAddresses": {},
		"LoadBalancerRules": nil,
	}, time.Now())
	require.NoError(t, err)

	// Empty groups stay out of the supplementary configuration.
	require.Len(t, rec.Supplementary, 1)
	assert.Equal(t, nics, rec.Supplementary["NetworkInterfaces"])
}

func TestRecordDeterministicExceptCaptureTime(t *testing.T) {
	raw := types.RawResource{"id": "/r/1", "location": "eastus"}

	first, err := Record(raw, "VNet", testSub, nil, time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	second, err := Record(raw, "VNet", testSub, nil, time.Date(2026, 8, 28, 11, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.NotEqual(t, first.CaptureTime, second.CaptureTime)
	first.CaptureTime = ""
	second.CaptureTime = ""
	assert.Equal(t, first, second)
}
