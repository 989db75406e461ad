package inventory

import (
	"context"

	"github.com/yairfalse/caravel/onboard"
	"github.com/yairfalse/caravel/types"
)

// SubscriptionSource loads the full subscription table.
type SubscriptionSource interface {
	All(ctx context.Context) (map[string]types.Subscription, error)
}

// CredentialSource loads the tenant credential secret.
type CredentialSource interface {
	TenantCredentials(ctx context.Context, id string) (map[string]types.Tenant, error)
}

// FilterSource builds the posture filter for one run. A nil FilterSource
// admits every subscription.
type FilterSource func(ctx context.Context) (onboard.Filter, error)

// RunContext carries the per-unit caches: the subscription hash, the
// tenant secrets, and the posture filter. It is constructed at the start
// of a work-unit invocation and discarded with it, so no component ever
// sees data staler than one unit.
type RunContext struct {
	Subscriptions map[string]types.Subscription
	Tenants       map[string]types.Tenant
	Filter        onboard.Filter
	RequestID     string
}

// NewRunContext builds the run context for one work-unit invocation.
func NewRunContext(
	ctx context.Context,
	subs SubscriptionSource,
	creds CredentialSource,
	tenantSecretID string,
	filters FilterSource,
	requestID string,
) (*RunContext, error) {
	table, err := subs.All(ctx)
	if err != nil {
		return nil, err
	}

	tenants, err := creds.TenantCredentials(ctx, tenantSecretID)
	if err != nil {
		return nil, err
	}

	var filter onboard.Filter = onboard.AllowAll{}
	if filters != nil {
		filter, err = filters(ctx)
		if err != nil {
			return nil, err
		}
	}

	return &RunContext{
		Subscriptions: table,
		Tenants:       tenants,
		Filter:        filter,
		RequestID:     requestID,
	}, nil
}
