package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout and poll-interval values.
// These values can be customized via environment variables.
type Timeouts struct {
	PollInterval      time.Duration // Interval between task/address status polls
	Task              time.Duration // Timeout for a single platform task to reach a terminal state
	Address           time.Duration // Timeout for a VM to report an IP address
	HTTPRequest       time.Duration // Timeout for individual API requests
	RetryAttempts     int           // Attempts for retryable operations (connect, post-create lookup)
	RetryInitialDelay time.Duration // Initial delay between retry attempts
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - PRISM_POLL_INTERVAL (default: 5s)
//   - PRISM_TIMEOUT_TASK (default: 10m)
//   - PRISM_TIMEOUT_ADDRESS (default: 10m)
//   - PRISM_TIMEOUT_HTTP (default: 30s)
//   - PRISM_RETRY_MAX_ATTEMPTS (default: 5)
//   - PRISM_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		PollInterval:      parseDuration("PRISM_POLL_INTERVAL", 5*time.Second),
		Task:              parseDuration("PRISM_TIMEOUT_TASK", 10*time.Minute),
		Address:           parseDuration("PRISM_TIMEOUT_ADDRESS", 10*time.Minute),
		HTTPRequest:       parseDuration("PRISM_TIMEOUT_HTTP", 30*time.Second),
		RetryAttempts:     parseInt("PRISM_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("PRISM_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
