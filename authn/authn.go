// Package authn exchanges a tenant's service-principal credential for a
// short-lived bearer token via the client-credential grant.
package authn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yairfalse/caravel/types"
)

// DefaultAuthority is the public identity endpoint.
const DefaultAuthority = "https://login.microsoftonline.com"

// DefaultScope is the fixed management scope requested for every token.
// The double slash is how the management audience spells its default scope.
const DefaultScope = "https://management.core.windows.net//.default"

// expirySlack keeps a cached token from being handed out moments before it
// lapses mid-fetch.
const expirySlack = 2 * time.Minute

// Error is a tenant-scoped authentication failure. It is fatal for that
// tenant's subscriptions within a work unit; other tenants proceed.
type Error struct {
	Tenant string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("authentication failed for tenant %q: %v", e.Tenant, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Token is one bearer token with its expiry.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Valid reports whether the token is still usable.
func (t Token) Valid(now time.Time) bool {
	return t.AccessToken != "" && now.Add(expirySlack).Before(t.ExpiresAt)
}

// Authenticator performs the client-credential exchange. Tokens are cached
// per tenant for the lifetime of the Authenticator, which callers scope to
// one work-unit execution.
type Authenticator struct {
	client    *http.Client
	authority string
	scope     string
	now       func() time.Time
	cache     map[string]Token
}

// Option adjusts an Authenticator.
type Option func(*Authenticator)

// WithAuthority overrides the identity endpoint (tests).
func WithAuthority(authority string) Option {
	return func(a *Authenticator) { a.authority = strings.TrimSuffix(authority, "/") }
}

// WithClock overrides the clock (tests).
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

// New creates an Authenticator. A nil client uses http.DefaultClient.
func New(client *http.Client, opts ...Option) *Authenticator {
	if client == nil {
		client = http.DefaultClient
	}
	a := &Authenticator{
		client:    client,
		authority: DefaultAuthority,
		scope:     DefaultScope,
		now:       time.Now,
		cache:     make(map[string]Token),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Token returns a bearer token for the tenant, reusing a cached one while
// it remains valid.
func (a *Authenticator) Token(ctx context.Context, tenant types.Tenant) (Token, error) {
	if tok, ok := a.cache[tenant.Name]; ok && tok.Valid(a.now()) {
		return tok, nil
	}

	tok, err := a.exchange(ctx, tenant)
	if err != nil {
		return Token{}, &Error{Tenant: tenant.Name, Err: err}
	}
	a.cache[tenant.Name] = tok
	return tok, nil
}

func (a *Authenticator) exchange(ctx context.Context, tenant types.Tenant) (Token, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {tenant.ApplicationID},
		"client_secret": {tenant.Key},
		"scope":         {a.scope},
	}

	endpoint := fmt.Sprintf("%s/%s/oauth2/v2.0/token", a.authority, tenant.TenantID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("token request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Token{}, fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Token{}, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var grant struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &grant); err != nil {
		return Token{}, fmt.Errorf("failed to decode token response: %w", err)
	}
	if grant.AccessToken == "" {
		return Token{}, fmt.Errorf("token endpoint returned no access token")
	}

	return Token{
		AccessToken: grant.AccessToken,
		ExpiresAt:   a.now().Add(time.Duration(grant.ExpiresIn) * time.Second),
	}, nil
}
