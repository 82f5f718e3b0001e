package insights

import "time"

type Config struct {
	Capacity       int
	TTL            time.Duration
	PageSize       int
	ComputeTimeout time.Duration
	// ServeSnapshots lets a cache miss fall back to the durable snapshot written by the batch job.
	ServeSnapshots bool
}

func DefaultConfig() Config {
	return Config{
		Capacity:       5,
		TTL:            3600 * time.Second,
		PageSize:       3,
		ComputeTimeout: 30 * time.Second,
	}
}

func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.PageSize <= 0 {
		return &ConfigError{Field: "PageSize", Message: "must be greater than 0"}
	}
	if c.ComputeTimeout < 0 {
		return &ConfigError{Field: "ComputeTimeout", Message: "must be non-negative"}
	}
	return nil
}

type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "insights config error in field " + e.Field + ": " + e.Message
}
