// Package cloudguard is a thin client for the CloudGuard posture API,
// used only to learn which subscriptions are onboarded.
package cloudguard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/yairfalse/caravel/onboard"
)

// DefaultEndpoint is the public CloudGuard API.
const DefaultEndpoint = "https://api.dome9.com"

// Credentials is the API key pair stored in the posture secret.
type Credentials struct {
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

// Client talks to the CloudGuard REST API.
type Client struct {
	client   *http.Client
	endpoint string
	creds    Credentials
}

// New creates a Client. A nil httpClient uses http.DefaultClient; an empty
// endpoint selects the public API.
func New(httpClient *http.Client, endpoint string, creds Credentials) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{client: httpClient, endpoint: strings.TrimSuffix(endpoint, "/"), creds: creds}
}

// OnboardedFilter fetches the onboarded Azure accounts and returns a
// filter admitting exactly those subscription ids.
func (c *Client) OnboardedFilter(ctx context.Context) (onboard.Filter, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/v2/AzureCloudAccount", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build posture request: %w", err)
	}
	req.SetBasicAuth(c.creds.Key, c.creds.Secret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posture request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read posture response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("posture API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var accounts []struct {
		SubscriptionID string `json:"subscriptionId"`
	}
	if err := json.Unmarshal(body, &accounts); err != nil {
		return nil, fmt.Errorf("failed to decode posture response: %w", err)
	}

	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		if a.SubscriptionID != "" {
			ids = append(ids, a.SubscriptionID)
		}
	}
	return onboard.NewSetFilter(ids), nil
}
