// internal/workers/query/parse-query/config.go
package parsequery

import "time"

type Config struct {
	FuzzyThreshold float64
	Timeout        time.Duration
}

func LoadConfig() *Config {
	return &Config{
		FuzzyThreshold: 72,
		Timeout:        30 * time.Second,
	}
}
