// internal/workers/insight/build-insight/config.go
package buildinsight

import "time"

type Config struct {
	FraudRiskThreshold   float64
	FailureRiskThreshold float64
	Timeout              time.Duration
}

func LoadConfig() *Config {
	return &Config{
		FraudRiskThreshold:   5.0,
		FailureRiskThreshold: 10.0,
		Timeout:              10 * time.Second,
	}
}
