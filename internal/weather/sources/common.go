package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/sony/gobreaker"
)

// BackoffConfig controls exponential backoff between attempts.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration // 0 = uncapped
}

// DefaultBackoff is used by sources unless overridden.
var DefaultBackoff = BackoffConfig{
	MaxRetries:      3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

func (b BackoffConfig) validate() error {
	if b.MaxRetries < 0 || b.InitialInterval <= 0 {
		return errInvalidBackoff
	}
	return nil
}

// delay returns the wait before retry number attempt (0-based).
func (b BackoffConfig) delay(attempt int) time.Duration {
	d := b.InitialInterval << uint(min(attempt, 30))
	if b.MaxInterval > 0 && (d > b.MaxInterval || d <= 0) {
		d = b.MaxInterval
	}
	return d
}

var (
	errRateLimited    = errors.New("rate limited")
	errServerError    = errors.New("server error")
	errUnexpected     = errors.New("unexpected status code")
	errCircuitOpen    = errors.New("circuit breaker open")
	errNoHTTPClient   = errors.New("http client not configured")
	errInvalidBackoff = errors.New("invalid backoff configuration")
)

// statusError carries the HTTP status of a rejected response.
type statusError struct {
	kind error
	code int
}

func (e *statusError) Error() string { return fmt.Sprintf("%v: %d", e.kind, e.code) }
func (e *statusError) Unwrap() error { return e.kind }

// retryable reports whether another attempt may succeed.
func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

func classify(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests:
		return &statusError{kind: errRateLimited, code: code}
	case code >= 500:
		return &statusError{kind: errServerError, code: code}
	default:
		return &statusError{kind: errUnexpected, code: code}
	}
}

// statusCode extracts the HTTP status from an error returned by
// resilientClient.get, or 0 if no response was received.
func statusCode(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.code
	}
	return 0
}

// resilientClient issues GET requests with retries, exponential backoff and
// a circuit breaker. Client errors other than 429 fail immediately.
type resilientClient struct {
	http    *http.Client
	backoff BackoffConfig
	breaker *gobreaker.CircuitBreaker
}

func newResilientClient(name string, client *http.Client) *resilientClient {
	return &resilientClient{
		http:    client,
		backoff: DefaultBackoff,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    time.Minute,
			Timeout:     2 * time.Minute,
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.WithFields(log.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("circuit breaker state changed")
			},
		}),
	}
}

// get returns the response of the first successful attempt. The caller
// closes its body.
func (c *resilientClient) get(ctx context.Context, url string, header http.Header) (*http.Response, error) {
	if c.http == nil {
		return nil, errNoHTTPClient
	}
	if err := c.backoff.validate(); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.attempt(ctx, url, header)
		if err == nil {
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		var se *statusError
		if errors.As(err, &se) && !se.retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt >= c.backoff.MaxRetries {
			return nil, err
		}

		log.WithError(err).WithFields(log.Fields{"url": url, "attempt": attempt + 1}).Debug("retrying request")

		timer := time.NewTimer(c.backoff.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *resilientClient) attempt(ctx context.Context, url string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if err := classify(resp.StatusCode); err != nil {
			resp.Body.Close()
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*http.Response), nil
}
