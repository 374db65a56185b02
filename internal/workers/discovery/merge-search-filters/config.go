// internal/workers/discovery/merge-search-filters/config.go
package mergesearchfilters

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
