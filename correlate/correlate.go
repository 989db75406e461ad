// Package correlate joins resource collections fetched together within one
// work unit, grouping dependents by an owner id embedded in their
// properties. The join is same-run and best-effort: if the owning kind was
// not fetched in the same unit, no attachment occurs.
package correlate

import (
	"strings"

	"github.com/yairfalse/caravel/types"
)

// OwnerID extracts the owning resource's id from a dependent resource.
// The second return is false when the resource carries no owner reference;
// such resources are excluded from the index, not an error.
type OwnerID func(types.RawResource) (string, bool)

// Index maps an owning resource's id to its dependent resources, in fetch
// order. Scoped to one work unit and discarded after normalization.
type Index map[string][]types.RawResource

// Build groups resources by owner id.
func Build(resources []types.RawResource, owner OwnerID) Index {
	ix := make(Index)
	for _, r := range resources {
		id, ok := owner(r)
		if !ok || id == "" {
			continue
		}
		ix[id] = append(ix[id], r)
	}
	return ix
}

// Attachments returns the dependents of ownerID, or an empty sequence if
// none matched.
func (ix Index) Attachments(ownerID string) []types.RawResource {
	return ix[ownerID]
}

// NICOwner extracts the virtual-machine id a network interface is bound
// to (properties.virtualMachine.id).
func NICOwner(r types.RawResource) (string, bool) {
	return r.Property("properties.virtualMachine.id")
}

// PublicIPOwner extracts the network-interface id that owns a public IP
// address. The public IP references one NIC ip-configuration
// (properties.ipConfiguration.id, .../networkInterfaces/<nic>/ipConfigurations/<name>);
// the owning NIC id is that path minus the ipConfigurations suffix.
func PublicIPOwner(r types.RawResource) (string, bool) {
	ipcfg, ok := r.Property("properties.ipConfiguration.id")
	if !ok {
		return "", false
	}
	idx := strings.Index(ipcfg, "/ipConfigurations/")
	if idx < 0 {
		return "", false
	}
	return ipcfg[:idx], true
}
