// internal/conversation/merger_test.go
package conversation

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananya-0081/insightx-upi/internal/models"
)

func rankingTurn() models.StructuredQuery {
	return models.StructuredQuery{
		Intent:        models.IntentRanking,
		Metric:        models.MetricFraudRate,
		GroupBy:       models.DimState,
		Filters:       map[models.Dimension]string{},
		SortDirection: models.SortDescending,
		Limit:         5,
		Confidence:    models.Confidence{Intent: 0.7, Metric: 0.85, GroupBy: 0.7, Overall: 0.75},
		Label:         models.LabelHigh,
	}
}

func floorTurn() models.StructuredQuery {
	return models.StructuredQuery{
		Intent:     models.IntentSingle,
		Metric:     models.MetricCount,
		Filters:    map[models.Dimension]string{},
		Confidence: models.Confidence{Intent: 0.5, Metric: 0.4, GroupBy: 0.5, Overall: 0.47},
		Label:      models.LabelLow,
	}
}

func comparisonTurn() models.StructuredQuery {
	return models.StructuredQuery{
		Intent:  models.IntentComparison,
		Metric:  models.MetricFraudRate,
		GroupBy: models.DimBank,
		Filters: map[models.Dimension]string{},
		Compare: []models.CompareEntity{
			{Dimension: models.DimBank, Value: "HDFC"},
			{Dimension: models.DimBank, Value: "SBI"},
		},
		Confidence: models.Confidence{Intent: 0.95, Metric: 0.85, GroupBy: 0.95, Overall: 0.92},
		Label:      models.LabelVeryHigh,
	}
}

func TestMerge_FollowUpInheritsContext(t *testing.T) {
	m := NewMerger(0)

	current := floorTurn()
	current.TimeWindow = models.WindowNight

	merged := m.Merge([]models.StructuredQuery{rankingTurn()}, current)

	assert.Equal(t, models.IntentRanking, merged.Intent)
	assert.Equal(t, models.MetricFraudRate, merged.Metric)
	assert.Equal(t, models.DimState, merged.GroupBy)
	assert.Equal(t, 5, merged.Limit)
	assert.Equal(t, models.SortDescending, merged.SortDirection)
	assert.Equal(t, models.WindowNight, merged.TimeWindow)
	assert.Equal(t, 0.75, merged.Confidence.Overall)
	assert.Equal(t, models.LabelHigh, merged.Label)
}

func TestMerge_ExplicitFieldsOverride(t *testing.T) {
	m := NewMerger(0)

	current := floorTurn()
	current.Metric = models.MetricAvgAmount
	current.Confidence.Metric = 0.75
	current.GroupBy = models.DimBank
	current.Confidence.GroupBy = 0.7

	merged := m.Merge([]models.StructuredQuery{rankingTurn()}, current)

	assert.Equal(t, models.IntentRanking, merged.Intent)
	assert.Equal(t, models.MetricAvgAmount, merged.Metric)
	assert.Equal(t, models.DimBank, merged.GroupBy)
	assert.Equal(t, 5, merged.Limit)
}

func TestMerge_FiltersAdditiveNewestWins(t *testing.T) {
	m := NewMerger(0)

	turn1 := floorTurn()
	turn1.Filters[models.DimState] = "Delhi"
	turn2 := floorTurn()
	turn2.Filters[models.DimBank] = "HDFC"
	current := floorTurn()
	current.Filters[models.DimState] = "Karnataka"

	merged := m.Merge([]models.StructuredQuery{turn1, turn2}, current)

	assert.Equal(t, map[models.Dimension]string{
		models.DimState: "Karnataka",
		models.DimBank:  "HDFC",
	}, merged.Filters)

	// Inputs stay untouched.
	assert.Equal(t, "Delhi", turn1.Filters[models.DimState])
	assert.Len(t, current.Filters, 1)
}

func TestMerge_StalePairDropped(t *testing.T) {
	m := NewMerger(0)

	current := floorTurn()
	current.Intent = models.IntentRanking
	current.Confidence.Intent = 0.7
	current.GroupBy = models.DimState
	current.Confidence.GroupBy = 0.7

	merged := m.Merge([]models.StructuredQuery{comparisonTurn()}, current)

	assert.Equal(t, models.IntentRanking, merged.Intent)
	assert.False(t, merged.HasCompare())
}

func TestMerge_PairInheritedWhileComparison(t *testing.T) {
	m := NewMerger(0)

	current := floorTurn()
	current.Metric = models.MetricFailureRate
	current.Confidence.Metric = 0.85

	merged := m.Merge([]models.StructuredQuery{comparisonTurn()}, current)

	assert.Equal(t, models.IntentComparison, merged.Intent)
	require.True(t, merged.HasCompare())
	assert.Equal(t, "HDFC", merged.Compare[0].Value)
	assert.Equal(t, models.MetricFailureRate, merged.Metric)
}

func TestMerge_EmptyHistory(t *testing.T) {
	m := NewMerger(0)

	current := rankingTurn()
	current.Filters[models.DimState] = "Gujarat"

	merged := m.Merge(nil, current)

	assert.Equal(t, current.Intent, merged.Intent)
	assert.Equal(t, current.Metric, merged.Metric)
	assert.Equal(t, current.Filters, merged.Filters)
	assert.Equal(t, 0.75, merged.Confidence.Overall)
}

func TestMerge_OverWindowFromMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(DefaultWindowSize)
	m := NewMerger(0)

	first := floorTurn()
	first.Filters[models.DimState] = "Delhi"
	require.NoError(t, store.Append(ctx, "s1", first))

	for i := 0; i < 11; i++ {
		turn := floorTurn()
		turn.Filters[models.DimBank] = "HDFC"
		require.NoError(t, store.Append(ctx, "s1", turn))
	}

	window, err := store.Window(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, window, DefaultWindowSize)

	merged := m.Merge(window, floorTurn())

	// The first turn fell out of the bounded window, so its filter no
	// longer applies.
	_, hasState := merged.Filters[models.DimState]
	assert.False(t, hasState)
	assert.Equal(t, "HDFC", merged.Filters[models.DimBank])
}

func TestMemoryStore_WindowAndClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(3)

	for i := 1; i <= 5; i++ {
		turn := floorTurn()
		turn.Limit = i
		turn.Filters[models.DimState] = fmt.Sprintf("value-%d", i)
		require.NoError(t, store.Append(ctx, "s1", turn))
	}

	window, err := store.Window(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, window, 3)
	assert.Equal(t, 3, window[0].Limit)
	assert.Equal(t, 5, window[2].Limit)

	// Mutating the returned window never affects stored state.
	window[0].Filters[models.DimState] = "mutated"
	again, err := store.Window(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "value-3", again[0].Filters[models.DimState])

	require.NoError(t, store.Clear(ctx, "s1"))
	empty, err := store.Window(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
