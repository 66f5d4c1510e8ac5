package sse

import "time"

// Config holds configuration for event streams
type Config struct {
	// KeepAliveInterval is how often an idle stream is pinged so proxies
	// don't drop it
	KeepAliveInterval time.Duration
}

// DefaultConfig returns the default stream configuration
func DefaultConfig() *Config {
	return &Config{
		KeepAliveInterval: 10 * time.Second,
	}
}

// NewConfig builds a config, falling back to the default for a non-positive interval
func NewConfig(interval time.Duration) *Config {
	if interval <= 0 {
		return DefaultConfig()
	}
	return &Config{KeepAliveInterval: interval}
}
