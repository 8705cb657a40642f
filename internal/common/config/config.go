// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Dataset       DatasetConfig           `mapstructure:"dataset"`
	NLU           NLUConfig               `mapstructure:"nlu"`
	Analytics     AnalyticsConfig         `mapstructure:"analytics"`
	Insight       InsightConfig           `mapstructure:"insight"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Registry      RegistryConfig          `mapstructure:"registry"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Domain Configuration Sections ---

// DatasetConfig selects where the transaction table is loaded from at
// startup. Source is one of "csv", "postgres", "elasticsearch" or "sample".
type DatasetConfig struct {
	Source     string `mapstructure:"source"`
	CSVPath    string `mapstructure:"csv_path"`
	Table      string `mapstructure:"table"` // postgres table name
	Index      string `mapstructure:"index"` // elasticsearch index name
	SampleSize int    `mapstructure:"sample_size"`
	SampleSeed int64  `mapstructure:"sample_seed"`
}

// NLUConfig holds settings for the parse-query and merge-context workers.
type NLUConfig struct {
	FuzzyThreshold        float64 `mapstructure:"fuzzy_threshold"`
	ContextWindow         int     `mapstructure:"context_window"`
	SessionTTL            int     `mapstructure:"session_ttl"` // seconds
	MinExplicitConfidence float64 `mapstructure:"min_explicit_confidence"`
}

// AnalyticsConfig holds settings for the run-aggregation worker.
type AnalyticsConfig struct {
	DefaultLimit           int     `mapstructure:"default_limit"`
	DefaultBreakdown       string  `mapstructure:"default_breakdown"`
	AnomalyThreshold       float64 `mapstructure:"anomaly_threshold"`
	AnomalyIntentThreshold float64 `mapstructure:"anomaly_intent_threshold"`
}

// InsightConfig holds settings for the build-insight worker.
type InsightConfig struct {
	FraudRiskThreshold   float64 `mapstructure:"fraud_risk_threshold"`   // percent
	FailureRiskThreshold float64 `mapstructure:"failure_risk_threshold"` // percent
}

// NotificationConfig holds settings for the send-anomaly-alert worker.
type NotificationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool     `mapstructure:"enabled"`
			FromEmail string   `mapstructure:"from_email"`
			ToEmails  []string `mapstructure:"to_emails"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled  bool   `mapstructure:"enabled"`
			TopicARN string `mapstructure:"topic_arn"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
	Webhook struct {
		Enabled bool   `mapstructure:"enabled"`
		URL     string `mapstructure:"url"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"webhook"`
}

// ObservabilityConfig holds tracing settings. Metrics are always on.
type ObservabilityConfig struct {
	TracingEnabled bool   `mapstructure:"tracing_enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// RegistryConfig locates the activity registry consumed by the tooling.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
