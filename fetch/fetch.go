// Package fetch retrieves all pages of one (subscription, kind) listing
// from the management API, retrying transient failures with a fixed-delay
// policy.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/yairfalse/caravel/telemetry"
	"github.com/yairfalse/caravel/types"
)

// page is the wire shape of one management API list response. More results
// are signaled by a nextLink continuation URL.
type page struct {
	Value    []types.RawResource `json:"value"`
	NextLink string              `json:"nextLink"`
}

// Fetcher pages through management API listings.
type Fetcher struct {
	client  *http.Client
	policy  RetryPolicy
	logger  *telemetry.Logger
	metrics *telemetry.Metrics
}

// New creates a Fetcher. A nil client uses http.DefaultClient.
func New(client *http.Client, policy RetryPolicy, logger *telemetry.Logger, metrics *telemetry.Metrics) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = telemetry.NewLogger("fetch")
	}
	return &Fetcher{client: client, policy: policy, logger: logger, metrics: metrics}
}

// Fetch retrieves every page starting at endpoint and returns the union of
// all pages' resources. An empty first page is a normal outcome: the kind
// is simply absent for that subscription. The sequence is not restartable;
// a fresh call re-fetches from page one.
func (f *Fetcher) Fetch(ctx context.Context, endpoint, bearer string) ([]types.RawResource, error) {
	var resources []types.RawResource

	next := endpoint
	for next != "" {
		p, err := f.fetchPage(ctx, next, bearer)
		if err != nil {
			return nil, err
		}
		resources = append(resources, p.Value...)
		next = p.NextLink
	}

	return resources, nil
}

// fetchPage issues one page request under the retry policy. Pagination
// within a fetch is sequential: each page depends on the previous page's
// continuation link.
func (f *Fetcher) fetchPage(ctx context.Context, endpoint, bearer string) (*page, error) {
	var lastErr error

	attempts := f.policy.attempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		p, err := f.doPage(ctx, endpoint, bearer)
		if err == nil {
			return p, nil
		}

		var permanent *PermanentError
		if errors.As(err, &permanent) {
			return nil, err
		}

		lastErr = err
		if attempt < attempts {
			f.logger.LogFetchRetry(ctx, endpoint, attempt, attempts, err)
			f.metrics.RecordFetchRetry(ctx)
			f.policy.sleep()
		}
	}

	return nil, lastErr
}

func (f *Fetcher) doPage(ctx context.Context, endpoint, bearer string) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &PermanentError{Endpoint: endpoint, Body: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &TransientError{Endpoint: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: err}
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, &TransientError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("server error: %s", strings.TrimSpace(string(body))),
		}
	case resp.StatusCode >= 400:
		return nil, &PermanentError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var p page
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &TransientError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("malformed page: %w", err)}
	}
	return &p, nil
}
