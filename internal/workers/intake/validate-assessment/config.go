// internal/workers/intake/validate-assessment/config.go
package validateassessment

import "time"

type Config struct {
	CacheTTL time.Duration
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		CacheTTL: time.Hour,
		Timeout:  30 * time.Second,
	}
}
