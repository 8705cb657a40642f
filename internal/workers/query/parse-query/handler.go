// internal/workers/query/parse-query/handler.go
package parsequery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"github.com/Ananya-0081/insightx-upi/internal/common/metrics"
	"github.com/Ananya-0081/insightx-upi/internal/nlu"
)

const (
	TaskType = "parse-query"
)

var (
	ErrInvalidQueryText = errors.New("INVALID_QUERY_TEXT")
	ErrQueryParseFailed = errors.New("QUERY_PARSE_FAILED")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config *Config
	parser *nlu.Parser
	logger Logger
}

func NewHandler(config *Config, parser *nlu.Parser, log Logger) *Handler {
	return &Handler{
		config: config,
		parser: parser,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("%w: parse input: %v", ErrInvalidQueryText, err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		// Classification is deterministic, so a retry would fail the same way.
		h.failJob(client, job, err, 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.QueryText) == "" {
		return nil, fmt.Errorf("%w: queryText is empty", ErrInvalidQueryText)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryParseFailed, err)
	}

	outcome := h.parser.Parse(input.QueryText)

	metrics.QueriesParsed.WithLabelValues(string(outcome.Query.Intent)).Inc()
	metrics.ParseConfidence.Observe(outcome.Query.Confidence.Overall)

	if len(outcome.Unresolved) > 0 {
		h.logger.Warn("unresolved entities in query", map[string]interface{}{
			"sessionId":  input.SessionID,
			"unresolved": len(outcome.Unresolved),
		})
	}

	h.logger.Info("query parsed", map[string]interface{}{
		"sessionId":  input.SessionID,
		"intent":     string(outcome.Query.Intent),
		"metric":     string(outcome.Query.Metric),
		"groupBy":    string(outcome.Query.GroupBy),
		"filters":    outcome.Query.FilterCount(),
		"confidence": outcome.Query.Confidence.Overall,
		"label":      string(outcome.Query.Label),
	})

	return &Output{
		Query:      outcome.Query,
		Unresolved: outcome.Unresolved,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, retries int32) {
	errorCode := "UNKNOWN_ERROR"
	if errors.Is(err, ErrInvalidQueryText) {
		errorCode = "INVALID_QUERY_TEXT"
	} else if errors.Is(err, ErrQueryParseFailed) {
		errorCode = "QUERY_PARSE_FAILED"
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
