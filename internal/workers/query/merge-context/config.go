// internal/workers/query/merge-context/config.go
package mergecontext

import "time"

type Config struct {
	WindowSize            int
	MinExplicitConfidence float64
	Timeout               time.Duration
}

func LoadConfig() *Config {
	return &Config{
		WindowSize:            10,
		MinExplicitConfidence: 0.6,
		Timeout:               10 * time.Second,
	}
}
