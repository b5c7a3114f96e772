package uploadresume

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration
	// MaxFileBytes rejects larger files before upload. Zero means no limit.
	MaxFileBytes int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:      60 * time.Second,
		MaxFileBytes: 10 << 20,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxFileBytes < 0 {
		return fmt.Errorf("max_file_bytes cannot be negative")
	}
	return nil
}
