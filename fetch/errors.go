package fetch

import "fmt"

// TransientError is a retryable failure: network error, timeout, or a 5xx
// from the management API. It surfaces only after the retry policy is
// exhausted.
type TransientError struct {
	Endpoint   string
	StatusCode int // 0 for network-level failures
	Err        error
}

func (e *TransientError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transient API error %d for %s: %v", e.StatusCode, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("transient API error for %s: %v", e.Endpoint, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError is a non-retryable 4xx from the management API. It is
// surfaced immediately, without retry.
type PermanentError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent API error %d for %s: %s", e.StatusCode, e.Endpoint, e.Body)
}
