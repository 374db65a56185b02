// internal/workers/discovery/find-matches/config.go
package findmatches

import "time"

type Config struct {
	CacheTTL   time.Duration
	Timeout    time.Duration
	MaxResults int
}

func LoadConfig() *Config {
	return &Config{
		CacheTTL:   time.Hour,
		Timeout:    30 * time.Second,
		MaxResults: 20,
	}
}
