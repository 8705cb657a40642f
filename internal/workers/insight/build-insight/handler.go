// internal/workers/insight/build-insight/handler.go
package buildinsight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"

	"github.com/Ananya-0081/insightx-upi/internal/common/logger"
	"github.com/Ananya-0081/insightx-upi/internal/common/metrics"
	"github.com/Ananya-0081/insightx-upi/internal/insights"
)

const TaskType = "build-insight"

var (
	ErrInvalidInput            = errors.New("INVALID_INPUT")
	ErrInsightBuildFailed      = errors.New("INSIGHT_BUILD_FAILED")
	ErrInsightValidationFailed = errors.New("INSIGHT_VALIDATION_FAILED")
)

type Handler struct {
	config  *Config
	builder *insights.Builder
	logger  logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		builder: insights.NewBuilder(insights.Options{
			FraudRiskThreshold:   config.FraudRiskThreshold,
			FailureRiskThreshold: config.FailureRiskThreshold,
		}),
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		// Building is deterministic over its inputs; retries would not help.
		h.failJob(client, job, err, 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Query.Intent == "" {
		return nil, fmt.Errorf("%w: resolvedQuery is missing", ErrInvalidInput)
	}
	if input.Result == nil {
		return nil, fmt.Errorf("%w: aggregationResult is missing", ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsightBuildFailed, err)
	}

	insight := h.builder.Build(&input.Query, input.Result)
	if insight == nil {
		return nil, fmt.Errorf("%w: builder returned no payload", ErrInsightBuildFailed)
	}

	if err := h.validatePayload(insight); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsightValidationFailed, err)
	}

	h.logger.Info("insight built", map[string]interface{}{
		"sessionId": input.SessionID,
		"insightId": insight.ID,
		"chartType": string(insight.ChartType),
		"riskFlags": len(insight.RiskFlags),
		"followUps": len(insight.FollowUps),
		"empty":     insight.Empty,
	})

	return &Output{Insight: insight}, nil
}

func (h *Handler) validatePayload(payload interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(insightSchema)
	documentLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("payload validation failed: %v", errs)
	}

	return nil
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
	case errors.Is(err, ErrInsightValidationFailed):
		errorCode = "INSIGHT_VALIDATION_FAILED"
	case errors.Is(err, ErrInsightBuildFailed):
		errorCode = "INSIGHT_BUILD_FAILED"
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
