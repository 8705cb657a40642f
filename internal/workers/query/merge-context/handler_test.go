// internal/workers/query/merge-context/handler_test.go
package mergecontext

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananya-0081/insightx-upi/internal/conversation"
	"github.com/Ananya-0081/insightx-upi/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) With(fields map[string]interface{}) Logger {
	return tl
}

func setupRedisStore(t *testing.T) (*miniredis.Miniredis, conversation.Store) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, conversation.NewRedisStore(client, 10, 30*time.Minute)
}

func newTestHandler(t *testing.T, store conversation.Store) *Handler {
	t.Helper()
	return NewHandler(LoadConfig(), store, &testLogger{t: t})
}

// parsedTurn mimics what the parser emits for a single-intent turn: floor
// confidences for intent and group-by, the given confidence for the metric.
func parsedTurn(metric models.Metric, metricConf float64, filters map[models.Dimension]string) models.StructuredQuery {
	if filters == nil {
		filters = make(map[models.Dimension]string)
	}
	q := models.StructuredQuery{
		Intent:  models.IntentSingle,
		Metric:  metric,
		Filters: filters,
		Confidence: models.Confidence{
			Intent:  0.5,
			Metric:  metricConf,
			GroupBy: 0.5,
		},
	}
	overall := (q.Confidence.Intent + q.Confidence.Metric + q.Confidence.GroupBy) / 3
	q.Confidence.Overall = math.Round(overall*100) / 100
	q.Label = models.LabelFor(q.Confidence.Overall)
	return q
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_FirstTurn(t *testing.T) {
	_, store := setupRedisStore(t)
	handler := newTestHandler(t, store)

	output, err := handler.Execute(context.Background(), &Input{
		SessionID: "session-001",
		Query: parsedTurn(models.MetricFraudRate, 0.85, map[models.Dimension]string{
			models.DimState: "Maharashtra",
		}),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, output.ContextSize)
	assert.Equal(t, models.MetricFraudRate, output.ResolvedQuery.Metric)
	assert.Equal(t, "Maharashtra", output.ResolvedQuery.Filters[models.DimState])
}

func TestHandler_Execute_FollowUpInheritsContext(t *testing.T) {
	_, store := setupRedisStore(t)
	handler := newTestHandler(t, store)
	ctx := context.Background()

	_, err := handler.Execute(ctx, &Input{
		SessionID: "session-002",
		Query: parsedTurn(models.MetricFraudRate, 0.85, map[models.Dimension]string{
			models.DimState: "Maharashtra",
		}),
	})
	require.NoError(t, err)

	// "what about Karnataka" parses to the count fallback at floor
	// confidence; the metric must come from the previous turn.
	output, err := handler.Execute(ctx, &Input{
		SessionID: "session-002",
		Query: parsedTurn(models.MetricCount, 0.4, map[models.Dimension]string{
			models.DimState: "Karnataka",
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, output.ContextSize)
	assert.Equal(t, models.MetricFraudRate, output.ResolvedQuery.Metric)
	assert.Equal(t, "Karnataka", output.ResolvedQuery.Filters[models.DimState])
}

func TestHandler_Execute_ExplicitMetricWins(t *testing.T) {
	_, store := setupRedisStore(t)
	handler := newTestHandler(t, store)
	ctx := context.Background()

	_, err := handler.Execute(ctx, &Input{
		SessionID: "session-003",
		Query:     parsedTurn(models.MetricFraudRate, 0.85, nil),
	})
	require.NoError(t, err)

	output, err := handler.Execute(ctx, &Input{
		SessionID: "session-003",
		Query:     parsedTurn(models.MetricFailureRate, 0.85, nil),
	})
	require.NoError(t, err)

	assert.Equal(t, models.MetricFailureRate, output.ResolvedQuery.Metric)
}

func TestHandler_Execute_FiltersAreAdditive(t *testing.T) {
	_, store := setupRedisStore(t)
	handler := newTestHandler(t, store)
	ctx := context.Background()

	_, err := handler.Execute(ctx, &Input{
		SessionID: "session-004",
		Query: parsedTurn(models.MetricFraudRate, 0.85, map[models.Dimension]string{
			models.DimState: "Delhi",
		}),
	})
	require.NoError(t, err)

	output, err := handler.Execute(ctx, &Input{
		SessionID: "session-004",
		Query: parsedTurn(models.MetricCount, 0.4, map[models.Dimension]string{
			models.DimDevice: "iOS",
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, "Delhi", output.ResolvedQuery.Filters[models.DimState])
	assert.Equal(t, "iOS", output.ResolvedQuery.Filters[models.DimDevice])
	assert.Equal(t, 2, output.ResolvedQuery.FilterCount())
}

func TestHandler_Execute_ContextSizeIsBounded(t *testing.T) {
	_, store := setupRedisStore(t)
	handler := newTestHandler(t, store)
	ctx := context.Background()

	var output *Output
	var err error
	for i := 0; i < 12; i++ {
		output, err = handler.Execute(ctx, &Input{
			SessionID: "session-005",
			Query:     parsedTurn(models.MetricCount, 0.75, nil),
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 10, output.ContextSize)
}

func TestHandler_Execute_SessionsAreIsolated(t *testing.T) {
	_, store := setupRedisStore(t)
	handler := newTestHandler(t, store)
	ctx := context.Background()

	_, err := handler.Execute(ctx, &Input{
		SessionID: "session-a",
		Query:     parsedTurn(models.MetricFraudRate, 0.85, nil),
	})
	require.NoError(t, err)

	output, err := handler.Execute(ctx, &Input{
		SessionID: "session-b",
		Query:     parsedTurn(models.MetricCount, 0.4, nil),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, output.ContextSize)
	assert.Equal(t, models.MetricCount, output.ResolvedQuery.Metric)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_InvalidInput(t *testing.T) {
	handler := newTestHandler(t, conversation.NewMemoryStore(10))

	tests := []struct {
		name  string
		input *Input
	}{
		{
			name:  "empty session id",
			input: &Input{SessionID: "", Query: parsedTurn(models.MetricCount, 0.4, nil)},
		},
		{
			name:  "missing query",
			input: &Input{SessionID: "session-010"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), tt.input)

			assert.Nil(t, output)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestHandler_Execute_StoreUnavailable(t *testing.T) {
	mr, store := setupRedisStore(t)
	handler := newTestHandler(t, store)

	mr.Close()

	output, err := handler.Execute(context.Background(), &Input{
		SessionID: "session-011",
		Query:     parsedTurn(models.MetricCount, 0.4, nil),
	})

	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrContextStoreUnavailable)
}

func TestHandler_Execute_StoreTimeout(t *testing.T) {
	_, store := setupRedisStore(t)
	handler := newTestHandler(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	output, err := handler.Execute(ctx, &Input{
		SessionID: "session-012",
		Query:     parsedTurn(models.MetricCount, 0.4, nil),
	})

	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrContextStoreTimeout)
}

func TestLoadConfig_Defaults(t *testing.T) {
	config := LoadConfig()

	assert.Equal(t, 10, config.WindowSize)
	assert.Equal(t, 0.6, config.MinExplicitConfidence)
	assert.Equal(t, 10*time.Second, config.Timeout)
}
