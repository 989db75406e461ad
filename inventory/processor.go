// Package inventory processes work units: it resolves each unit's
// subscriptions, obtains one token per tenant, pages every in-scope
// resource kind, correlates same-run collections, normalizes, and writes
// inventory records. Failures stay local to the resource, kind, or tenant
// they occur in; siblings keep going.
package inventory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/yairfalse/caravel/authn"
	"github.com/yairfalse/caravel/catalog"
	"github.com/yairfalse/caravel/fetch"
	"github.com/yairfalse/caravel/normalize"
	"github.com/yairfalse/caravel/telemetry"
	"github.com/yairfalse/caravel/types"
)

// Failure event classes, matching the error taxonomy.
const (
	eventAuthentication = "AuthenticationError"
	eventTransientAPI   = "TransientApiError"
	eventPermanentAPI   = "PermanentApiError"
	eventStorageWrite   = "StorageWriteError"
	eventConfiguration  = "ConfigurationError"
)

// TokenSource mints bearer tokens per tenant.
type TokenSource interface {
	Token(ctx context.Context, tenant types.Tenant) (authn.Token, error)
}

// PageFetcher retrieves all pages of one listing.
type PageFetcher interface {
	Fetch(ctx context.Context, endpoint, bearer string) ([]types.RawResource, error)
}

// RecordSink persists canonical records.
type RecordSink interface {
	ObjectKey(storagePrefix, contextName string, raw types.RawResource) string
	Put(ctx context.Context, key string, record types.InventoryRecord) error
}

// FailureReporter emits structured failure events.
type FailureReporter interface {
	Report(ctx context.Context, event, requestID string, cause error, message string) types.FailureEvent
}

// Processor runs work units. TokenFactory yields a fresh token cache per
// unit so credentials are never reused across invocations.
type Processor struct {
	Catalog      *catalog.Catalog
	TokenFactory func() TokenSource
	Fetcher      PageFetcher
	Sink         RecordSink
	Reporter     FailureReporter
	Logger       *telemetry.Logger
	Metrics      *telemetry.Metrics
	ExtraExclude []string
	Now          func() time.Time
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// excludes is the generic-pass exclusion set: the default two-phase kinds
// plus any configured extras.
func (p *Processor) excludes() []string {
	return append(catalog.DefaultExcludes(), p.ExtraExclude...)
}

// ProcessUnit processes one work unit. The returned error is non-nil only
// for run-fatal configuration problems; everything else is reported and
// absorbed so the remaining subscriptions and kinds still run.
func (p *Processor) ProcessUnit(ctx context.Context, rc *RunContext, unit types.WorkUnit) error {
	start := p.now()
	tokens := p.TokenFactory()

	byTenant := p.groupByTenant(ctx, rc, unit)
	p.Logger.LogUnitStart(ctx, len(unit.SubscriptionIDs), len(byTenant))

	counts := map[string]int{}

	tenantNames := make([]string, 0, len(byTenant))
	for name := range byTenant {
		tenantNames = append(tenantNames, name)
	}
	sort.Strings(tenantNames)

	for _, tenantName := range tenantNames {
		subs := byTenant[tenantName]

		tenant, ok := rc.Tenants[tenantName]
		if !ok {
			p.Reporter.Report(ctx, eventConfiguration, rc.RequestID, nil,
				"no credential for tenant "+tenantName)
			continue
		}

		tok, err := tokens.Token(ctx, tenant)
		if err != nil {
			p.Reporter.Report(ctx, eventAuthentication, rc.RequestID, err,
				"tenant "+tenantName+" skipped for this unit")
			continue
		}

		for _, sub := range subs {
			if !rc.Filter.Allowed(sub.ID) {
				p.Logger.WithContext(ctx).Debug().
					Str("subscription_id", sub.ID).
					Msg("subscription not onboarded, skipping")
				continue
			}
			if err := p.processSubscription(ctx, rc, sub, tok.AccessToken, counts); err != nil {
				return err
			}
		}
	}

	p.Logger.LogResourceCounts(ctx, counts)
	p.Metrics.RecordUnit(ctx, p.now().Sub(start).Seconds())
	return nil
}

// groupByTenant resolves the unit's subscription ids against the directory
// hash, grouped so one token serves all of a tenant's subscriptions.
// Unknown ids are logged and dropped; the directory refresh simply has not
// seen them yet.
func (p *Processor) groupByTenant(ctx context.Context, rc *RunContext, unit types.WorkUnit) map[string][]types.Subscription {
	byTenant := make(map[string][]types.Subscription)
	for _, id := range unit.SubscriptionIDs {
		sub, ok := rc.Subscriptions[id]
		if !ok {
			p.Logger.WithContext(ctx).Warn().
				Str("subscription_id", id).
				Msg("subscription not found in directory")
			continue
		}
		byTenant[sub.TenantName] = append(byTenant[sub.TenantName], sub)
	}
	return byTenant
}

// processSubscription runs the three capture passes for one subscription:
// the generic descriptor pass, the virtual-machine correlation pass, and
// the two-phase sql database pass.
func (p *Processor) processSubscription(
	ctx context.Context,
	rc *RunContext,
	sub types.Subscription,
	bearer string,
	counts map[string]int,
) error {
	for _, kind := range p.Catalog.Kinds(p.excludes()...) {
		if err := p.captureKind(ctx, rc, sub, kind, bearer, counts); err != nil {
			return err
		}
	}

	if err := p.captureVirtualMachines(ctx, rc, sub, bearer, counts); err != nil {
		return err
	}

	return p.captureSQLDatabases(ctx, rc, sub, bearer, counts)
}

// captureKind fetches, normalizes and writes every resource of one kind.
func (p *Processor) captureKind(
	ctx context.Context,
	rc *RunContext,
	sub types.Subscription,
	kind, bearer string,
	counts map[string]int,
) error {
	desc, err := p.Catalog.Lookup(kind)
	if err != nil {
		return err
	}

	resources, err := p.fetchKind(ctx, rc, sub, kind, bearer)
	if err != nil {
		return nil // reported in fetchKind, siblings continue
	}
	p.Metrics.RecordResources(ctx, kind, int64(len(resources)))

	for _, raw := range resources {
		if err := p.writeRecord(ctx, rc, sub, desc, raw, nil, "", counts); err != nil {
			return err
		}
	}
	return nil
}

// fetchKind pages one (subscription, kind) listing, reporting API failures
// at kind granularity. A nil slice with nil error means the kind was
// absent; a nil slice with non-nil error means the failure was reported.
func (p *Processor) fetchKind(
	ctx context.Context,
	rc *RunContext,
	sub types.Subscription,
	kind, bearer string,
) ([]types.RawResource, error) {
	endpoint, err := p.Catalog.Endpoint(kind, sub.ID)
	if err != nil {
		return nil, err
	}
	resources, err := p.Fetcher.Fetch(ctx, endpoint, bearer)
	if err != nil {
		p.Logger.LogKindFailure(ctx, sub.ID, kind, err)
		p.Reporter.Report(ctx, apiEventClass(err), rc.RequestID, err,
			"kind "+kind+" skipped for subscription "+sub.ID)
		return nil, err
	}
	return resources, nil
}

// writeRecord normalizes one resource and writes it. Storage failures are
// reported and absorbed; configuration errors abort the run.
func (p *Processor) writeRecord(
	ctx context.Context,
	rc *RunContext,
	sub types.Subscription,
	desc catalog.Descriptor,
	raw types.RawResource,
	attachments map[string][]types.RawResource,
	contextName string,
	counts map[string]int,
) error {
	record, err := normalize.Record(raw, desc.TypeTag, sub, attachments, p.now())
	if err != nil {
		p.Reporter.Report(ctx, eventConfiguration, rc.RequestID, err,
			"kind "+desc.Kind+" produced an unnormalizable resource")
		return err
	}

	key := p.Sink.ObjectKey(desc.StoragePrefix, contextName, raw)
	if err := p.Sink.Put(ctx, key, record); err != nil {
		p.Logger.LogStorageError(ctx, key, err)
		p.Reporter.Report(ctx, eventStorageWrite, rc.RequestID, err,
			"inventory object "+key+" not written")
		return nil
	}

	p.Metrics.RecordStorageWrite(ctx)
	counts[sub.ID]++
	return nil
}

// apiEventClass maps a fetch error to its failure event class.
func apiEventClass(err error) string {
	var permanent *fetch.PermanentError
	if errors.As(err, &permanent) {
		return eventPermanentAPI
	}
	return eventTransientAPI
}
