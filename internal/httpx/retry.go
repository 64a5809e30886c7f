package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

// Policy bounds how often and how patiently a request is retried.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultPolicy retries three times, starting at 250ms and capping at 2s.
var DefaultPolicy = Policy{
	MaxRetries: 3,
	BaseDelay:  250 * time.Millisecond,
	MaxDelay:   2 * time.Second,
}

// Budget is the longest DoWithRetry can take when every attempt runs for
// attemptTimeout and every backoff hits MaxDelay.
func (p Policy) Budget(attemptTimeout time.Duration) time.Duration {
	return attemptTimeout*time.Duration(p.MaxRetries+1) + p.MaxDelay*time.Duration(p.MaxRetries)
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Body)
}

// DoWithRetry executes the request built by makeReq, retrying transport
// errors and retryable statuses with exponential backoff and jitter. Only use
// it for idempotent calls.
func DoWithRetry(ctx context.Context, client *http.Client, policy Policy, makeReq func() (*http.Request, error)) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}

	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		req, err := makeReq()
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("execute request: %w", err)
		} else {
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp, nil
			}
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			lastErr = &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
			if !isRetryableStatus(resp.StatusCode) {
				return nil, lastErr
			}
		}

		if attempt == policy.MaxRetries {
			break
		}
		if err := sleepWithBackoff(ctx, policy, attempt); err != nil {
			return nil, err
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("request failed")
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func sleepWithBackoff(ctx context.Context, policy Policy, attempt int) error {
	delay := policy.BaseDelay * time.Duration(1<<attempt)
	if delay > policy.MaxDelay {
		delay = policy.MaxDelay
	}
	delay += time.Duration(rand.Int63n(int64(delay/2) + 1))
	if delay > policy.MaxDelay {
		delay = policy.MaxDelay
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
