// Package catalog is the static registry of discoverable resource kinds.
// Per-kind behavior (endpoint, api version, storage prefix, canonical type
// tag) is data in this table; the fetch/normalize pipeline is generic over
// it.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownKind is returned when a kind id is not in the registry.
var ErrUnknownKind = errors.New("unknown resource kind")

// DefaultManagementRoot is the public management API endpoint.
const DefaultManagementRoot = "https://management.azure.com"

// Placeholders expanded by EndpointWith for kinds that nest under a parent
// resource.
const (
	PlaceholderResourceGroup = "_resource_group_"
	PlaceholderServerName    = "_server_name_"
)

// Descriptor describes one resource kind.
type Descriptor struct {
	Kind          string // registry key, e.g. "nsg"
	Path          string // endpoint path relative to the subscription, incl. api-version
	TypeTag       string // canonical type tag, namespaced under Azure:: by the normalizer
	StoragePrefix string // key prefix under the inventory root
}

// Catalog resolves kind ids to descriptors and builds endpoint URLs.
type Catalog struct {
	root  string
	kinds map[string]Descriptor
}

// DefaultExcludes are kinds that never ride the generic fetch pass: sqldb
// needs a per-server two-phase fetch and vminstance gets its own
// correlation pass.
func DefaultExcludes() []string {
	return []string{"sqldb", "vminstance"}
}

// New builds a catalog against the given management root. An empty root
// selects the public endpoint.
func New(managementRoot string) *Catalog {
	if managementRoot == "" {
		managementRoot = DefaultManagementRoot
	}
	return &Catalog{root: strings.TrimSuffix(managementRoot, "/"), kinds: knownKinds()}
}

// Lookup returns the descriptor for a kind id.
func (c *Catalog) Lookup(kind string) (Descriptor, error) {
	d, ok := c.kinds[kind]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return d, nil
}

// Kinds returns all registered kind ids minus the excluded set, sorted.
func (c *Catalog) Kinds(excludes ...string) []string {
	skip := make(map[string]bool, len(excludes))
	for _, e := range excludes {
		skip[e] = true
	}
	out := make([]string, 0, len(c.kinds))
	for k := range c.kinds {
		if !skip[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Endpoint builds the list URL for a kind within one subscription. Path
// placeholders for nested kinds are left in place; use EndpointWith to
// expand them.
func (c *Catalog) Endpoint(kind, subscriptionID string) (string, error) {
	d, err := c.Lookup(kind)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/subscriptions/%s/%s", c.root, subscriptionID, d.Path), nil
}

// EndpointWith builds the list URL for a kind and expands path
// placeholders from params. A placeholder left unexpanded is a
// configuration error surfaced by the caller's request failing, so any
// remaining one is rejected here.
func (c *Catalog) EndpointWith(kind, subscriptionID string, params map[string]string) (string, error) {
	endpoint, err := c.Endpoint(kind, subscriptionID)
	if err != nil {
		return "", err
	}
	for placeholder, value := range params {
		endpoint = strings.ReplaceAll(endpoint, placeholder, value)
	}
	if strings.Contains(endpoint, "_resource_group_") || strings.Contains(endpoint, "_server_name_") {
		return "", fmt.Errorf("endpoint for %q has unexpanded placeholders: %s", kind, endpoint)
	}
	return endpoint, nil
}
