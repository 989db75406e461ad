package inventory

import (
	"context"

	"github.com/yairfalse/caravel/catalog"
	"github.com/yairfalse/caravel/correlate"
	"github.com/yairfalse/caravel/types"
)

// Supplementary configuration group names.
const (
	attachmentNICs      = "NetworkInterfaces"
	attachmentPublicIPs = "PublicIpAddresses"
)

// captureVirtualMachines is the correlation pass: it fetches the
// subscription's network interfaces and public IPs alongside its virtual
// machines, indexes them by owner, and attaches each machine's interfaces
// (and their public IPs) as supplementary configuration. Correlation is
// best-effort: a failed dependent fetch degrades to machines without
// attachments rather than losing the machines.
func (p *Processor) captureVirtualMachines(
	ctx context.Context,
	rc *RunContext,
	sub types.Subscription,
	bearer string,
	counts map[string]int,
) error {
	desc, err := p.Catalog.Lookup("vminstance")
	if err != nil {
		return err
	}

	vms, err := p.fetchKind(ctx, rc, sub, "vminstance", bearer)
	if err != nil || len(vms) == 0 {
		return nil
	}
	p.Metrics.RecordResources(ctx, "vminstance", int64(len(vms)))

	nicsByVM := p.dependentIndex(ctx, rc, sub, "networkinterface", bearer, correlate.NICOwner)
	ipsByNIC := p.dependentIndex(ctx, rc, sub, "publicipaddresses", bearer, correlate.PublicIPOwner)

	for _, vm := range vms {
		attachments := map[string][]types.RawResource{}

		nics := nicsByVM.Attachments(vm.ID())
		if len(nics) > 0 {
			attachments[attachmentNICs] = nics
		}

		var ips []types.RawResource
		for _, nic := range nics {
			ips = append(ips, ipsByNIC.Attachments(nic.ID())...)
		}
		if len(ips) > 0 {
			attachments[attachmentPublicIPs] = ips
		}

		if err := p.writeRecord(ctx, rc, sub, desc, vm, attachments, "", counts); err != nil {
			return err
		}
	}
	return nil
}

// dependentIndex fetches one dependent kind and indexes it by owner id. A
// fetch failure has already been reported; it yields an empty index.
func (p *Processor) dependentIndex(
	ctx context.Context,
	rc *RunContext,
	sub types.Subscription,
	kind, bearer string,
	owner correlate.OwnerID,
) correlate.Index {
	resources, err := p.fetchKind(ctx, rc, sub, kind, bearer)
	if err != nil {
		return correlate.Index{}
	}
	return correlate.Build(resources, owner)
}

// captureSQLDatabases is the two-phase pass: list the subscription's sql
// servers, then list each server's databases through the nested endpoint.
// Database records carry the parent server name as their key context,
// since database names alone collide across servers.
func (p *Processor) captureSQLDatabases(
	ctx context.Context,
	rc *RunContext,
	sub types.Subscription,
	bearer string,
	counts map[string]int,
) error {
	desc, err := p.Catalog.Lookup("sqldb")
	if err != nil {
		return err
	}

	servers, err := p.fetchKind(ctx, rc, sub, "sqlserver", bearer)
	if err != nil {
		return nil
	}

	for _, server := range servers {
		endpoint, err := p.Catalog.EndpointWith("sqldb", sub.ID, map[string]string{
			catalog.PlaceholderResourceGroup: server.ResourceGroup(),
			catalog.PlaceholderServerName:    server.Name(),
		})
		if err != nil {
			p.Reporter.Report(ctx, eventConfiguration, rc.RequestID, err,
				"sqldb endpoint for server "+server.Name()+" could not be built")
			return err
		}

		dbs, err := p.Fetcher.Fetch(ctx, endpoint, bearer)
		if err != nil {
			p.Logger.LogKindFailure(ctx, sub.ID, "sqldb", err)
			p.Reporter.Report(ctx, apiEventClass(err), rc.RequestID, err,
				"databases of server "+server.Name()+" skipped for subscription "+sub.ID)
			continue
		}
		p.Metrics.RecordResources(ctx, "sqldb", int64(len(dbs)))

		for _, db := range dbs {
			if err := p.writeRecord(ctx, rc, sub, desc, db, nil, server.Name(), counts); err != nil {
				return err
			}
		}
	}
	return nil
}
