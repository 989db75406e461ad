// Package armaccount implements the directory's AccountLister against the
// management API's subscription listing.
package armaccount

import (
	"context"
	"fmt"
	"strings"

	"github.com/yairfalse/caravel/authn"
	"github.com/yairfalse/caravel/fetch"
	"github.com/yairfalse/caravel/types"
)

const listPath = "/subscriptions?api-version=2020-01-01"

// TokenSource mints bearer tokens per tenant.
type TokenSource interface {
	Token(ctx context.Context, tenant types.Tenant) (authn.Token, error)
}

// PageFetcher pages through a management API listing.
type PageFetcher interface {
	Fetch(ctx context.Context, endpoint, bearer string) ([]types.RawResource, error)
}

// Lister lists the subscriptions visible to a tenant credential.
type Lister struct {
	tokens  TokenSource
	fetcher PageFetcher
	root    string
}

// New creates a Lister. An empty root selects the public management
// endpoint.
func New(tokens TokenSource, fetcher PageFetcher, managementRoot string) *Lister {
	if managementRoot == "" {
		managementRoot = "https://management.azure.com"
	}
	return &Lister{tokens: tokens, fetcher: fetcher, root: strings.TrimSuffix(managementRoot, "/")}
}

var _ PageFetcher = (*fetch.Fetcher)(nil)

// ListSubscriptions fetches every subscription page for the tenant.
func (l *Lister) ListSubscriptions(ctx context.Context, tenant types.Tenant) ([]types.Subscription, error) {
	tok, err := l.tokens.Token(ctx, tenant)
	if err != nil {
		return nil, err
	}

	raw, err := l.fetcher.Fetch(ctx, l.root+listPath, tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions for tenant %s: %w", tenant.Name, err)
	}

	subs := make([]types.Subscription, 0, len(raw))
	for _, r := range raw {
		id, _ := r["subscriptionId"].(string)
		name, _ := r["displayName"].(string)
		state, _ := r["state"].(string)
		if id == "" {
			continue
		}
		subs = append(subs, types.Subscription{ID: id, DisplayName: name, State: state})
	}
	return subs, nil
}
