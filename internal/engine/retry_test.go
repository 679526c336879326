package engine

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/stretchr/testify/assert"
)

func TestRetryWithBackoff_Success(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), &RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  1 * time.Millisecond,
		MaxDelay:   10 * time.Millisecond,
	}, func() error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("throttled")
		}
		return nil
	}, func(err error) bool {
		return true
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_NonRetryable(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), &RetryPolicy{
		MaxRetries: 5,
		BaseDelay:  1 * time.Millisecond,
		MaxDelay:   10 * time.Millisecond,
	}, func() error {
		attempts++
		return fmt.Errorf("permanent error")
	}, func(err error) bool {
		return false
	})

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_MaxRetries(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), &RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  1 * time.Millisecond,
		MaxDelay:   10 * time.Millisecond,
	}, func() error {
		attempts++
		return fmt.Errorf("always fails")
	}, func(err error) bool {
		return true
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max retries")
	assert.Equal(t, 3, attempts) // 1 initial + 2 retries
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, &RetryPolicy{
		MaxRetries: 5,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   1 * time.Second,
	}, func() error {
		return fmt.Errorf("would retry")
	}, func(err error) bool {
		return true
	})

	assert.Error(t, err)
}

func TestIsTransientError_StatusCodes(t *testing.T) {
	tests := []struct {
		status   int
		expected bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusGatewayTimeout, true},
		{http.StatusNotFound, false},
		{http.StatusConflict, false},
		{http.StatusForbidden, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.status), func(t *testing.T) {
			err := &azcore.ResponseError{StatusCode: tt.status}
			assert.Equal(t, tt.expected, IsTransientError(err))
		})
	}
}

func TestIsTransientError_Patterns(t *testing.T) {
	tests := []struct {
		err      error
		expected bool
	}{
		{nil, false},
		{fmt.Errorf("throttling"), true},
		{fmt.Errorf("Rate exceeded"), true},
		{fmt.Errorf("Too Many Requests"), true},
		{fmt.Errorf("Service Unavailable"), true},
		{fmt.Errorf("connection reset by peer"), true},
		{fmt.Errorf("i/o timeout"), true},
		{fmt.Errorf("resource not found"), false},
		{fmt.Errorf("access denied"), false},
	}

	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTransientError(tt.err))
		})
	}
}
