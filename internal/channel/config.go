package channel

import "time"

// Config holds websocket connection settings
type Config struct {
	// URL of the server's websocket endpoint (ws:// or wss://)
	URL string

	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	ReadTimeout      time.Duration // must exceed PingInterval
	PingInterval     time.Duration
	MaxMessageSize   int64

	// ErrorBuffer is the capacity of the Errors channel. Errors are dropped
	// when nobody drains it.
	ErrorBuffer int
}

// DefaultConfig returns default websocket configuration
func DefaultConfig() Config {
	return Config{
		URL:              "ws://localhost:5000/ws",
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		ReadTimeout:      60 * time.Second,
		PingInterval:     25 * time.Second,
		MaxMessageSize:   64 * 1024,
		ErrorBuffer:      16,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = d.HandshakeTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.PingInterval <= 0 {
		c.PingInterval = d.PingInterval
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.ErrorBuffer <= 0 {
		c.ErrorBuffer = d.ErrorBuffer
	}
	return c
}
