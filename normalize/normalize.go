// Package normalize maps one raw provider resource plus correlation
// context into the canonical inventory record.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/yairfalse/caravel/types"
)

// timeLayout matches the capture timestamps already in the inventory
// store.
const timeLayout = "2006-01-02 15:04:05.000000"

// ConfigurationError marks a malformed input that indicates a broken
// catalog entry or upstream response shape, not a data-level problem. It
// is fatal to the run, never retried.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// Region normalizes the raw location field: lower-cased with spaces
// stripped, "unknown" when absent.
func Region(raw types.RawResource) string {
	loc := raw.Location()
	if loc == "" {
		return "unknown"
	}
	return strings.ToLower(strings.ReplaceAll(loc, " ", ""))
}

// Record builds the canonical inventory record for one raw resource.
// Normalization is pure and deterministic except for the capture time.
// Attachments, when non-empty, ride in the supplementary configuration
// verbatim.
func Record(
	raw types.RawResource,
	typeTag string,
	sub types.Subscription,
	attachments map[string][]types.RawResource,
	now time.Time,
) (types.InventoryRecord, error) {
	if raw.ID() == "" {
		return types.InventoryRecord{}, &ConfigurationError{
			Reason: fmt.Sprintf("resource of type %q has no id field", typeTag),
		}
	}

	supplementary := map[string][]types.RawResource{}
	for name, group := range attachments {
		if len(group) > 0 {
			supplementary[name] = group
		}
	}

	return types.InventoryRecord{
		SubscriptionID:   sub.ID,
		SubscriptionName: sub.DisplayName,
		TenantID:         sub.TenantID,
		TenantName:       sub.TenantName,
		ResourceType:     "Azure::" + typeTag,
		Source:           types.SourceLabel,
		CaptureTime:      now.Format(timeLayout),
		Configuration:    raw,
		Supplementary:    supplementary,
		Region:           Region(raw),
		ResourceID:       raw.ID(),
		CreationTime:     "unknown",
		Errors:           map[string]string{},
	}, nil
}
