package stream

import (
	"fmt"
	"time"
)

// Config holds stream server configuration.
type Config struct {
	Addr string

	// SendBuffer is the number of frames queued per viewer before new frames
	// are dropped for it.
	SendBuffer     int
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
}

func DefaultConfig() Config {
	return Config{
		Addr:           "127.0.0.1:8090",
		SendBuffer:     16,
		WriteTimeout:   5 * time.Second,
		PingInterval:   30 * time.Second,
		MaxMessageSize: 4 * 1024,
	}
}

func (c Config) Validate() error {
	if c.SendBuffer <= 0 {
		return fmt.Errorf("%w: send buffer must be positive", ErrInvalidConfig)
	}
	if c.MaxMessageSize <= 0 {
		return fmt.Errorf("%w: max message size must be positive", ErrInvalidConfig)
	}
	return nil
}
