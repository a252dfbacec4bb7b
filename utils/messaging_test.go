package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNonRetryableError(t *testing.T) {
	nonRetryable := []error{
		errors.New(`HTTP 404 Not Found, {"message": "Unknown Message", "code": 10008}`),
		errors.New(`HTTP 404 Not Found, {"message": "Unknown Channel", "code": 10003}`),
		errors.New(`HTTP 403 Forbidden, {"message": "Missing Access"}`),
		errors.New(`HTTP 400 Bad Request`),
	}
	for _, err := range nonRetryable {
		assert.True(t, isNonRetryableError(err), "%v", err)
	}

	retryable := []error{
		errors.New("read tcp: connection reset by peer"),
		errors.New("HTTP 502 Bad Gateway"),
		// Snowflake ids routinely contain "400"; only the status text counts.
		errors.New("HTTP 429 Too Many Requests, channel 123400986123400986"),
	}
	for _, err := range retryable {
		assert.False(t, isNonRetryableError(err), "%v", err)
	}
	assert.False(t, isNonRetryableError(nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, "", Truncate("", 5))
}
