package bulkupsertprofessionals

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration
	// MaxDrafts caps how many rows one job may carry. Zero means no cap.
	MaxDrafts int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:   30 * time.Second,
		MaxDrafts: 500,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxDrafts < 0 {
		return fmt.Errorf("max_drafts cannot be negative")
	}
	return nil
}
