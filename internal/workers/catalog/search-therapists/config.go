// internal/workers/catalog/search-therapists/config.go
package searchtherapists

import "time"

type Config struct {
	Timeout      time.Duration
	DefaultIndex string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		DefaultIndex: "therapists",
	}
}
