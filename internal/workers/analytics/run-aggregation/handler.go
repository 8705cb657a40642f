// internal/workers/analytics/run-aggregation/handler.go
package runaggregation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"github.com/Ananya-0081/insightx-upi/internal/analytics"
	"github.com/Ananya-0081/insightx-upi/internal/common/logger"
	"github.com/Ananya-0081/insightx-upi/internal/common/metrics"
)

const (
	TaskType = "run-aggregation"
)

var (
	ErrInvalidInput       = errors.New("INVALID_INPUT")
	ErrUnsupportedIntent  = errors.New("UNSUPPORTED_INTENT")
	ErrUnknownDimension   = errors.New("UNKNOWN_DIMENSION")
	ErrAggregationFailed  = errors.New("AGGREGATION_FAILED")
	ErrAggregationTimeout = errors.New("AGGREGATION_TIMEOUT")
)

type Handler struct {
	config   *Config
	executor *analytics.Executor
	logger   logger.Logger
}

func NewHandler(config *Config, executor *analytics.Executor, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		executor: executor,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("%w: parse input: %v", ErrInvalidInput, err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		// One retry on timeout, matching the boundary event on the
		// aggregation task. Everything else is deterministic.
		retries := int32(0)
		if errors.Is(err, ErrAggregationTimeout) {
			retries = 1
		}
		h.failJob(client, job, err, retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Query.Intent == "" {
		return nil, fmt.Errorf("%w: resolvedQuery is missing", ErrInvalidInput)
	}

	start := time.Now()
	result, err := h.executor.Run(ctx, &input.Query)
	metrics.AggregationDuration.WithLabelValues(string(input.Query.Intent)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, h.classify(err)
	}

	if n := result.AnomalyCount(); n > 0 {
		metrics.AnomaliesFlagged.Add(float64(n))
	}

	h.logger.Info("aggregation complete", map[string]interface{}{
		"sessionId":   input.SessionID,
		"intent":      string(input.Query.Intent),
		"metric":      string(result.Metric),
		"resultType":  string(result.Type),
		"matchedRows": result.MatchedRows,
		"groups":      len(result.Rows),
		"anomalies":   result.AnomalyCount(),
		"empty":       result.Empty,
		"durationMs":  time.Since(start).Milliseconds(),
	})

	return &Output{Result: result}, nil
}

func (h *Handler) classify(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", ErrAggregationTimeout, err)
	case errors.Is(err, analytics.ErrUnsupportedIntent), errors.Is(err, analytics.ErrUnsupportedMetric):
		return fmt.Errorf("%w: %v", ErrUnsupportedIntent, err)
	case errors.Is(err, analytics.ErrUnknownDimension):
		return fmt.Errorf("%w: %v", ErrUnknownDimension, err)
	default:
		return fmt.Errorf("%w: %v", ErrAggregationFailed, err)
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, retries int32) {
	errorCode := "UNKNOWN_ERROR"
	switch {
	case errors.Is(err, ErrInvalidInput):
		errorCode = "INVALID_INPUT"
	case errors.Is(err, ErrUnsupportedIntent):
		errorCode = "UNSUPPORTED_INTENT"
	case errors.Is(err, ErrUnknownDimension):
		errorCode = "UNKNOWN_DIMENSION"
	case errors.Is(err, ErrAggregationTimeout):
		errorCode = "AGGREGATION_TIMEOUT"
	case errors.Is(err, ErrAggregationFailed):
		errorCode = "AGGREGATION_FAILED"
	}

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": errorCode,
	})

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(errorCode + ": " + err.Error()).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
