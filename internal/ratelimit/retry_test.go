package ratelimit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geowatch/event-radar/internal/ratelimit"
)

func fastPolicy() ratelimit.RetryPolicy {
	return ratelimit.RetryPolicy{
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := ratelimit.Retry(context.Background(), fastPolicy(), func() error {
		calls++
		if calls < 3 {
			return &ratelimit.HTTPError{StatusCode: 503}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_NonRetryableFailsImmediately(t *testing.T) {
	permanent := errors.New("bad request shape")
	calls := 0
	err := ratelimit.Retry(context.Background(), fastPolicy(), func() error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestRetry_ExhaustionSurfacesLastError(t *testing.T) {
	last := &ratelimit.HTTPError{StatusCode: 429, Body: "slow down"}
	calls := 0
	err := ratelimit.Retry(context.Background(), fastPolicy(), func() error {
		calls++
		return last
	})

	var httpErr *ratelimit.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 429, httpErr.StatusCode)
	assert.Equal(t, 4, calls) // initial attempt + 3 retries
}

func TestRetryable_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"throttled", &ratelimit.HTTPError{StatusCode: 429}, true},
		{"bad gateway", &ratelimit.HTTPError{StatusCode: 502}, true},
		{"unavailable", &ratelimit.HTTPError{StatusCode: 503}, true},
		{"unauthorized", &ratelimit.HTTPError{StatusCode: 401}, false},
		{"not found", &ratelimit.HTTPError{StatusCode: 404}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"generic", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ratelimit.Retryable(tt.err))
		})
	}
}
