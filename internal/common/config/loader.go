// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	// Load .env from multiple possible locations
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like DB_PASSWORD
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	// 1. Load base config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// 2. Merge environment-specific config
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	// 3. Expand env placeholders
	expandEnvVars(viper.GetViper())

	// 4. Unmarshal final config
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	// 5. Direct override if still empty
	overrideEmptyConfig(&cfg)

	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env in several locations so the binary works from the
// repo root, a worker directory, or the test tree.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	// Also try to find project root by looking for go.mod
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				fmt.Printf("✅ Loaded .env from: %s\n", path)
				return
			}
		}
	}

	fmt.Printf("⚠️  .env file not found in any location, using system environment variables\n")
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars substitutes ${VAR} placeholders in string config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills credentials from plain environment variables when
// the YAML left them blank.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
	if cfg.Notifications.AWS.Region == "" {
		if val := os.Getenv("AWS_REGION"); val != "" {
			cfg.Notifications.AWS.Region = val
		}
	}
	if cfg.Notifications.AWS.SNS.TopicARN == "" {
		if val := os.Getenv("ALERT_SNS_TOPIC_ARN"); val != "" {
			cfg.Notifications.AWS.SNS.TopicARN = val
		}
	}
	if cfg.Notifications.Webhook.URL == "" {
		if val := os.Getenv("ALERT_WEBHOOK_URL"); val != "" {
			cfg.Notifications.Webhook.URL = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile() // Load env file first

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Expand environment variables before unmarshal
	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	// Camunda defaults
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	// Database defaults
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	// Elasticsearch URL fallback
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	// Dataset defaults
	if cfg.Dataset.Source == "" {
		cfg.Dataset.Source = "sample"
	}
	if cfg.Dataset.Table == "" {
		cfg.Dataset.Table = "upi_transactions"
	}
	if cfg.Dataset.Index == "" {
		cfg.Dataset.Index = "upi-transactions"
	}
	if cfg.Dataset.SampleSize == 0 {
		cfg.Dataset.SampleSize = 250000
	}
	if cfg.Dataset.SampleSeed == 0 {
		cfg.Dataset.SampleSeed = 42
	}

	// NLU defaults
	if cfg.NLU.FuzzyThreshold == 0 {
		cfg.NLU.FuzzyThreshold = 72
	}
	if cfg.NLU.ContextWindow == 0 {
		cfg.NLU.ContextWindow = 10
	}
	if cfg.NLU.SessionTTL == 0 {
		cfg.NLU.SessionTTL = 1800
	}
	if cfg.NLU.MinExplicitConfidence == 0 {
		cfg.NLU.MinExplicitConfidence = 0.6
	}

	// Analytics defaults
	if cfg.Analytics.DefaultLimit == 0 {
		cfg.Analytics.DefaultLimit = 5
	}
	if cfg.Analytics.DefaultBreakdown == "" {
		cfg.Analytics.DefaultBreakdown = "state"
	}
	if cfg.Analytics.AnomalyThreshold == 0 {
		cfg.Analytics.AnomalyThreshold = 2.0
	}
	if cfg.Analytics.AnomalyIntentThreshold == 0 {
		cfg.Analytics.AnomalyIntentThreshold = 1.5
	}

	// Insight defaults
	if cfg.Insight.FraudRiskThreshold == 0 {
		cfg.Insight.FraudRiskThreshold = 5.0
	}
	if cfg.Insight.FailureRiskThreshold == 0 {
		cfg.Insight.FailureRiskThreshold = 10.0
	}

	// Notification defaults
	if cfg.Notifications.Webhook.Timeout == 0 {
		cfg.Notifications.Webhook.Timeout = 10000
	}

	// Observability defaults
	if cfg.Observability.JaegerEndpoint == "" {
		cfg.Observability.JaegerEndpoint = "http://localhost:14268/api/traces"
	}

	// Registry defaults
	if cfg.Registry.Path == "" {
		cfg.Registry.Path = "configs/activity-registry.json"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Worker defaults
	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	switch cfg.Dataset.Source {
	case "csv":
		if cfg.Dataset.CSVPath == "" {
			return fmt.Errorf("dataset.csv_path is required when dataset.source is csv")
		}
	case "postgres":
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required when dataset.source is postgres")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required when dataset.source is postgres")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required when dataset.source is postgres")
		}
	case "elasticsearch":
		if len(cfg.Database.Elasticsearch.Addresses) == 0 && cfg.Database.Elasticsearch.URL == "" {
			return fmt.Errorf("database.elasticsearch.addresses or url is required when dataset.source is elasticsearch")
		}
	case "sample":
		if cfg.Dataset.SampleSize < 0 {
			return fmt.Errorf("dataset.sample_size must be positive")
		}
	default:
		return fmt.Errorf("dataset.source must be one of csv, postgres, elasticsearch, sample (got %q)", cfg.Dataset.Source)
	}

	if cfg.NLU.FuzzyThreshold < 0 || cfg.NLU.FuzzyThreshold > 100 {
		return fmt.Errorf("nlu.fuzzy_threshold must be in [0, 100]")
	}
	if cfg.NLU.ContextWindow < 1 {
		return fmt.Errorf("nlu.context_window must be at least 1")
	}

	if cfg.Notifications.Webhook.Enabled && cfg.Notifications.Webhook.URL == "" {
		return fmt.Errorf("notifications.webhook.url is required when the webhook channel is enabled")
	}
	if cfg.Notifications.AWS.SNS.Enabled && cfg.Notifications.AWS.SNS.TopicARN == "" {
		return fmt.Errorf("notifications.aws.sns.topic_arn is required when the SNS channel is enabled")
	}
	if cfg.Notifications.AWS.SES.Enabled && cfg.Notifications.AWS.SES.FromEmail == "" {
		return fmt.Errorf("notifications.aws.ses.from_email is required when the SES channel is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	// Return default worker config if not found
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
