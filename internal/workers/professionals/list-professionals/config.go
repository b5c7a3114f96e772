package listprofessionals

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration
	// IncludeResume is used when the job does not set includeResume.
	IncludeResume bool
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:       10 * time.Second,
		IncludeResume: true,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
