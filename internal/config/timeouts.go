package config

import (
	"os"
	"time"
)

// Timeouts holds the configurable timing policy for remote operations.
// These values can be customized via environment variables.
type Timeouts struct {
	PollInterval time.Duration // Pause between stack convergence polls
	StackCreate  time.Duration // Overall budget for stack creation
	StackDelete  time.Duration // Overall budget for stack teardown
}

// LoadTimeouts loads the timing policy from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - ALPHA_K8S_POLL_INTERVAL (default: 1.5s)
//   - ALPHA_K8S_TIMEOUT_STACK_CREATE (default: 30m)
//   - ALPHA_K8S_TIMEOUT_STACK_DELETE (default: 30m)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		PollInterval: parseDuration("ALPHA_K8S_POLL_INTERVAL", 1500*time.Millisecond),
		StackCreate:  parseDuration("ALPHA_K8S_TIMEOUT_STACK_CREATE", 30*time.Minute),
		StackDelete:  parseDuration("ALPHA_K8S_TIMEOUT_STACK_DELETE", 30*time.Minute),
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
