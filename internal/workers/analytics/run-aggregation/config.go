// internal/workers/analytics/run-aggregation/config.go
package runaggregation

import "time"

type Config struct {
	DefaultLimit           int
	AnomalyThreshold       float64
	AnomalyIntentThreshold float64
	Timeout                time.Duration
}

func LoadConfig() *Config {
	return &Config{
		DefaultLimit:           5,
		AnomalyThreshold:       2.0,
		AnomalyIntentThreshold: 1.5,
		Timeout:                30 * time.Second,
	}
}
