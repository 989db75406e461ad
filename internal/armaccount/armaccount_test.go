package armaccount

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/caravel/authn"
	"github.com/yairfalse/caravel/types"
)

type fakeTokens struct {
	token string
	err   error
}

func (f *fakeTokens) Token(ctx context.Context, tenant types.Tenant) (authn.Token, error) {
	if f.err != nil {
		return authn.Token{}, f.err
	}
	return authn.Token{AccessToken: f.token}, nil
}

type fakeFetcher struct {
	endpoint string
	bearer   string
	pages    []types.RawResource
	err      error
}

func (f *fakeFetcher) Fetch(ctx context.Context, endpoint, bearer string) ([]types.RawResource, error) {
	f.endpoint = endpoint
	f.bearer = bearer
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

func TestListSubscriptions(t *testing.T) {
	fetcher := &fakeFetcher{pages: []types.RawResource{
		{"subscriptionId": "S1", "displayName": "Production", "state": "Enabled"},
		{"subscriptionId": "S2", "displayName": "Staging", "state": "Disabled"},
		{"displayName": "no id, skipped"},
	}}
	lister := New(&fakeTokens{token: "tok-1"}, fetcher, "")

	subs, err := lister.ListSubscriptions(context.Background(), types.Tenant{Name: "contoso"})
	require.NoError(t, err)

	assert.Equal(t, "https://management.azure.com/subscriptions?api-version=2020-01-01", fetcher.endpoint)
	assert.Equal(t, "tok-1", fetcher.bearer)

	require.Len(t, subs, 2)
	assert.Equal(t, types.Subscription{ID: "S1", DisplayName: "Production", State: "Enabled"}, subs[0])
	assert.Equal(t, types.Subscription{ID: "S2", DisplayName: "Staging", State: "Disabled"}, subs[1])
}

func TestListSubscriptionsCustomRoot(t *testing.T) {
	fetcher := &fakeFetcher{}
	lister := New(&fakeTokens{token: "tok"}, fetcher, "http://localhost:8080/")

	_, err := lister.ListSubscriptions(context.Background(), types.Tenant{Name: "contoso"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/subscriptions?api-version=2020-01-01", fetcher.endpoint)
}

func TestListSubscriptionsTokenFailure(t *testing.T) {
	cause := &authn.Error{Tenant: "contoso", Err: errors.New("invalid_client")}
	lister := New(&fakeTokens{err: cause}, &fakeFetcher{}, "")

	_, err := lister.ListSubscriptions(context.Background(), types.Tenant{Name: "contoso"})
	require.Error(t, err)

	var authErr *authn.Error
	assert.ErrorAs(t, err, &authErr)
}

func TestListSubscriptionsFetchFailure(t *testing.T) {
	lister := New(&fakeTokens{token: "tok"}, &fakeFetcher{err: errors.New("boom")}, "")

	_, err := lister.ListSubscriptions(context.Background(), types.Tenant{Name: "contoso"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tenant contoso")
}
