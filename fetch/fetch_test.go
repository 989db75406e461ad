package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(slept *[]time.Duration) RetryPolicy {
	p := DefaultRetryPolicy()
	p.Sleep = func(d time.Duration) { *slept = append(*slept, d) }
	return p
}

func TestFetchFollowsPagination(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/page1":
			fmt.Fprintf(w, `{"value":[{"id":"a"},{"id":"b"}],"nextLink":"%s/page2"}`, srv.URL)
		case "/page2":
			fmt.Fprintf(w, `{"value":[{"id":"c"}],"nextLink":"%s/page3"}`, srv.URL)
		case "/page3":
			fmt.Fprint(w, `{"value":[{"id":"d"},{"id":"e"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	var slept []time.Duration
	f := New(srv.Client(), testPolicy(&slept), nil, nil)

	resources, err := f.Fetch(context.Background(), srv.URL+"/page1", "tok-1")
	require.NoError(t, err)
	require.Len(t, resources, 5)

	var ids []string
	for _, r := range resources {
		ids = append(ids, r.ID())
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids)
	assert.Empty(t, slept)
}

func TestFetchEmptyFirstPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"value":[]}`)
	}))
	defer srv.Close()

	var slept []time.Duration
	f := New(srv.Client(), testPolicy(&slept), nil, nil)

	resources, err := f.Fetch(context.Background(), srv.URL, "tok")
	require.NoError(t, err)
	assert.Empty(t, resources)
}

func TestFetchRetriesTransientThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			http.Error(w, "backend overloaded", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"value":[{"id":"a"}]}`)
	}))
	defer srv.Close()

	var slept []time.Duration
	f := New(srv.Client(), testPolicy(&slept), nil, nil)

	resources, err := f.Fetch(context.Background(), srv.URL, "tok")
	require.NoError(t, err)
	assert.Len(t, resources, 1)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{10 * time.Second, 10 * time.Second}, slept)
}

func TestFetchExhaustsRetriesOnTransient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "backend overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var slept []time.Duration
	f := New(srv.Client(), testPolicy(&slept), nil, nil)

	_, err := f.Fetch(context.Background(), srv.URL, "tok")
	require.Error(t, err)

	var transient *TransientError
	require.ErrorAs(t, err, &transient)
	assert.Equal(t, http.StatusServiceUnavailable, transient.StatusCode)

	// Three attempts total, a pause between each pair but not after the last.
	assert.Equal(t, int32(3), calls.Load())
	assert.Len(t, slept, 2)
}

func TestFetchDoesNotRetryPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "subscription not found", http.StatusNotFound)
	}))
	defer srv.Close()

	var slept []time.Duration
	f := New(srv.Client(), testPolicy(&slept), nil, nil)

	_, err := f.Fetch(context.Background(), srv.URL, "tok")
	require.Error(t, err)

	var permanent *PermanentError
	require.ErrorAs(t, err, &permanent)
	assert.Equal(t, http.StatusNotFound, permanent.StatusCode)
	assert.Contains(t, permanent.Body, "subscription not found")

	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, slept)
}

func TestFetchNetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	var slept []time.Duration
	f := New(http.DefaultClient, testPolicy(&slept), nil, nil)

	_, err := f.Fetch(context.Background(), srv.URL, "tok")
	require.Error(t, err)

	var transient *TransientError
	assert.ErrorAs(t, err, &transient)
	assert.Len(t, slept, 2)
}

func TestFetchMalformedPageIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"value": [truncated`)
	}))
	defer srv.Close()

	var slept []time.Duration
	f := New(srv.Client(), testPolicy(&slept), nil, nil)

	_, err := f.Fetch(context.Background(), srv.URL, "tok")
	require.Error(t, err)

	var transient *TransientError
	assert.ErrorAs(t, err, &transient)
	assert.True(t, errors.Is(err, transient))
}

func TestRetryPolicyAttemptsFloor(t *testing.T) {
	p := RetryPolicy{Attempts: 0}
	assert.Equal(t, 1, p.attempts())
}
