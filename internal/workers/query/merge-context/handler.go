// internal/workers/query/merge-context/handler.go
package mergecontext

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"github.com/Ananya-0081/insightx-upi/internal/common/metrics"
	"github.com/Ananya-0081/insightx-upi/internal/conversation"
	"github.com/Ananya-0081/insightx-upi/internal/models"
)

const (
	TaskType = "merge-context"
)

var (
	ErrInvalidInput            = errors.New("INVALID_INPUT")
	ErrContextStoreUnavailable = errors.New("CONTEXT_STORE_UNAVAILABLE")
	ErrContextStoreTimeout     = errors.New("CONTEXT_STORE_TIMEOUT")
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
	store  conversation.Store
	merger *conversation.Merger
	logger Logger
}

func NewHandler(config *Config, store conversation.Store, log Logger) *Handler {
	return &Handler{
		config: config,
		store:  store,
		merger: conversation.NewMerger(config.MinExplicitConfidence),
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
		h.failJob(client, job, fmt.Errorf("%w: parse input: %v", ErrInvalidInput, err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		retries := int32(0)
		if errors.Is(err, ErrContextStoreUnavailable) {
			retries = 3
		} else if errors.Is(err, ErrContextStoreTimeout) {
			retries = 2
		}
		h.failJob(client, job, err, retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.SessionID == "" {
		return nil, fmt.Errorf("%w: sessionId is empty", ErrInvalidInput)
	}
	if input.Query.Intent == "" {
		return nil, fmt.Errorf("%w: structuredQuery is missing", ErrInvalidInput)
	}
	if input.Query.Filters == nil {
		input.Query.Filters = make(map[models.Dimension]string)
	}

	history, err := h.store.Window(ctx, input.SessionID)
	if err != nil {
		return nil, h.storeError("read context window", err)
	}

	resolved := h.merger.Merge(history, input.Query)

	// The window keeps resolved turns so a follow-up inherits the full
	// effective query, not just the fragment the user typed.
	if err := h.store.Append(ctx, input.SessionID, resolved); err != nil {
		return nil, h.storeError("append context turn", err)
	}

	contextSize := len(history) + 1
	if contextSize > h.config.WindowSize {
		contextSize = h.config.WindowSize
	}

	metrics.ContextMerges.WithLabelValues(strconv.FormatBool(inherited(input.Query, resolved))).Inc()

	h.logger.Info("context merged", map[string]interface{}{
		"sessionId":   input.SessionID,
		"contextSize": contextSize,
		"intent":      string(resolved.Intent),
		"metric":      string(resolved.Metric),
		"filters":     resolved.FilterCount(),
		"label":       string(resolved.Label),
	})

	return &Output{
		ResolvedQuery: resolved,
		ContextSize:   contextSize,
	}, nil
}

func (h *Handler) storeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %v", ErrContextStoreTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrContextStoreUnavailable, op, err)
}

// inherited reports whether merging actually changed the current turn,
// which is the signal the context_merges_total metric labels on.
func inherited(current, resolved models.StructuredQuery) bool {
	cur, err := json.Marshal(current)
	if err != nil {
		return false
	}
	res, err := json.Marshal(resolved)
	if err != nil {
		return false
	}
	return !bytes.Equal(cur, res)
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
	switch {
	case errors.Is(err, ErrInvalidInput):
		errorCode = "INVALID_INPUT"
	case errors.Is(err, ErrContextStoreTimeout):
		errorCode = "CONTEXT_STORE_TIMEOUT"
	case errors.Is(err, ErrContextStoreUnavailable):
		errorCode = "CONTEXT_STORE_UNAVAILABLE"
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
