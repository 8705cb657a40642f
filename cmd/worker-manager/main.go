// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Ananya-0081/insightx-upi/internal/analytics"
	"github.com/Ananya-0081/insightx-upi/internal/common/camunda"
	"github.com/Ananya-0081/insightx-upi/internal/common/config"
	"github.com/Ananya-0081/insightx-upi/internal/common/database"
	"github.com/Ananya-0081/insightx-upi/internal/common/logger"
	"github.com/Ananya-0081/insightx-upi/internal/common/observability"
	"github.com/Ananya-0081/insightx-upi/internal/conversation"
	"github.com/Ananya-0081/insightx-upi/internal/dataset"
	"github.com/Ananya-0081/insightx-upi/internal/models"
	"github.com/Ananya-0081/insightx-upi/internal/nlu"

	// Query Understanding Workers (2)
	mc "github.com/Ananya-0081/insightx-upi/internal/workers/query/merge-context"
	pq "github.com/Ananya-0081/insightx-upi/internal/workers/query/parse-query"

	// Aggregation Worker (1)
	ra "github.com/Ananya-0081/insightx-upi/internal/workers/analytics/run-aggregation"

	// Insight Workers (2)
	bi "github.com/Ananya-0081/insightx-upi/internal/workers/insight/build-insight"
	saa "github.com/Ananya-0081/insightx-upi/internal/workers/insight/send-anomaly-alert"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}
	if cfg.Logging.Level != "" {
		zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("worker-manager", observability.Options{
		TracingEnabled: cfg.Observability.TracingEnabled,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
	})
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Load the transaction table ---
	var table *dataset.Table
	switch cfg.Dataset.Source {
	case "csv":
		table, err = dataset.LoadCSV(cfg.Dataset.CSVPath)
		if err != nil {
			zapLog.Fatal("csv dataset load failed", zap.Error(err), zap.String("path", cfg.Dataset.CSVPath))
		}

	case "postgres":
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			// Test the connection with context
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		table, err = dataset.LoadPostgres(ctx, pg.GetDB(), cfg.Dataset.Table)
		if err != nil {
			zapLog.Fatal("postgres dataset load failed", zap.Error(err), zap.String("table", cfg.Dataset.Table))
		}

	case "elasticsearch":
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			// Test the connection
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}

		table, err = dataset.LoadElasticsearch(ctx, esClient.Client, cfg.Dataset.Index)
		if err != nil {
			zapLog.Fatal("elasticsearch dataset load failed", zap.Error(err), zap.String("index", cfg.Dataset.Index))
		}

	default:
		table = dataset.GenerateSample(cfg.Dataset.SampleSize, cfg.Dataset.SampleSeed)
	}
	zapLog.Info("Dataset loaded",
		zap.String("source", cfg.Dataset.Source),
		zap.Int("rows", table.Len()),
	)

	// --- Init the session context store ---
	var store conversation.Store
	if cfg.Database.Redis.Address != "" {
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			// Test the connection with context
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		zapLog.Info("Redis connected successfully")

		store = conversation.NewRedisStore(
			redisClient.GetClient(),
			cfg.NLU.ContextWindow,
			time.Duration(cfg.NLU.SessionTTL)*time.Second,
		)
	} else {
		store = conversation.NewMemoryStore(cfg.NLU.ContextWindow)
		zapLog.Warn("No Redis address configured, session context is process-local")
	}

	// --- Build the query pipeline over the loaded table ---
	parser := nlu.NewParser(table.Schema(), nlu.Options{
		FuzzyThreshold: cfg.NLU.FuzzyThreshold,
	})
	executor := analytics.NewExecutor(table, analytics.Options{
		DefaultLimit:           cfg.Analytics.DefaultLimit,
		DefaultBreakdown:       models.Dimension(cfg.Analytics.DefaultBreakdown),
		AnomalyThreshold:       cfg.Analytics.AnomalyThreshold,
		AnomalyIntentThreshold: cfg.Analytics.AnomalyIntentThreshold,
	})

	// --- START: Register ALL 5 Workers ---

	// Create adapters for workers that declare their own Logger interface
	pqLogAdapter := &parseQueryLoggerAdapter{log}
	mcLogAdapter := &mergeContextLoggerAdapter{log}

	// --- 1. Query Understanding Workers (2) ---
	if config.IsWorkerEnabled(cfg, pq.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, pq.TaskType)
		handler := pq.NewHandler(
			&pq.Config{
				FuzzyThreshold: cfg.NLU.FuzzyThreshold,
				Timeout:        config.GetDuration(wcfg.Timeout),
			},
			parser, pqLogAdapter,
		)
		startWorker(zeebeClient, pq.TaskType, wcfg, camunda.Instrument(pq.TaskType, obs, handler.Handle), zapLog)
	}

	if config.IsWorkerEnabled(cfg, mc.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, mc.TaskType)
		handler := mc.NewHandler(
			&mc.Config{
				WindowSize:            cfg.NLU.ContextWindow,
				MinExplicitConfidence: cfg.NLU.MinExplicitConfidence,
				Timeout:               config.GetDuration(wcfg.Timeout),
			},
			store, mcLogAdapter,
		)
		startWorker(zeebeClient, mc.TaskType, wcfg, camunda.Instrument(mc.TaskType, obs, handler.Handle), zapLog)
	}

	// --- 2. Aggregation Worker (1) ---
	if config.IsWorkerEnabled(cfg, ra.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, ra.TaskType)
		handler := ra.NewHandler(
			&ra.Config{
				DefaultLimit:           cfg.Analytics.DefaultLimit,
				AnomalyThreshold:       cfg.Analytics.AnomalyThreshold,
				AnomalyIntentThreshold: cfg.Analytics.AnomalyIntentThreshold,
				Timeout:                config.GetDuration(wcfg.Timeout),
			},
			executor, log,
		)
		startWorker(zeebeClient, ra.TaskType, wcfg, camunda.Instrument(ra.TaskType, obs, handler.Handle), zapLog)
	}

	// --- 3. Insight Workers (2) ---
	if config.IsWorkerEnabled(cfg, bi.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, bi.TaskType)
		handler := bi.NewHandler(
			&bi.Config{
				FraudRiskThreshold:   cfg.Insight.FraudRiskThreshold,
				FailureRiskThreshold: cfg.Insight.FailureRiskThreshold,
				Timeout:              config.GetDuration(wcfg.Timeout),
			},
			log,
		)
		startWorker(zeebeClient, bi.TaskType, wcfg, camunda.Instrument(bi.TaskType, obs, handler.Handle), zapLog)
	}

	if config.IsWorkerEnabled(cfg, saa.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, saa.TaskType)
		handler, err := saa.NewHandler(
			&saa.Config{
				AWSRegion:      cfg.Notifications.AWS.Region,
				EmailEnabled:   cfg.Notifications.AWS.SES.Enabled,
				FromEmail:      cfg.Notifications.AWS.SES.FromEmail,
				ToEmails:       cfg.Notifications.AWS.SES.ToEmails,
				SNSEnabled:     cfg.Notifications.AWS.SNS.Enabled,
				TopicARN:       cfg.Notifications.AWS.SNS.TopicARN,
				WebhookEnabled: cfg.Notifications.Webhook.Enabled,
				WebhookURL:     cfg.Notifications.Webhook.URL,
				WebhookTimeout: config.GetDuration(cfg.Notifications.Webhook.Timeout),
				Timeout:        config.GetDuration(wcfg.Timeout),
			},
			log,
		)
		if err != nil {
			zapLog.Fatal("failed to create send-anomaly-alert handler", zap.Error(err))
		}
		startWorker(zeebeClient, saa.TaskType, wcfg, camunda.Instrument(saa.TaskType, obs, handler.Handle), zapLog)
	}
	zapLog.Info("All 5 workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_ = shutdownCtx

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// Logger adapters for query workers that have their own Logger interfaces
type parseQueryLoggerAdapter struct {
	logger.Logger
}

func (a *parseQueryLoggerAdapter) With(fields map[string]interface{}) pq.Logger {
	return &parseQueryLoggerAdapter{a.Logger.With(fields)}
}

type mergeContextLoggerAdapter struct {
	logger.Logger
}

func (a *mergeContextLoggerAdapter) With(fields map[string]interface{}) mc.Logger {
	return &mergeContextLoggerAdapter{a.Logger.With(fields)}
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
