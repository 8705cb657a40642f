// internal/workers/insight/send-anomaly-alert/config.go
package sendanomalyalert

import "time"

type Config struct {
	AWSRegion string

	EmailEnabled bool
	FromEmail    string
	ToEmails     []string

	SNSEnabled bool
	TopicARN   string

	WebhookEnabled bool
	WebhookURL     string
	WebhookTimeout time.Duration

	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		AWSRegion:      "ap-south-1",
		WebhookTimeout: 10 * time.Second,
		Timeout:        30 * time.Second,
	}
}
