// internal/dataset/table_test.go
package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananya-0081/insightx-upi/internal/models"
)

func TestNewTable_DerivesTemporalColumns(t *testing.T) {
	rows := []Transaction{
		{
			ID:        "TXN1",
			Timestamp: time.Date(2024, time.March, 18, 9, 30, 0, 0, time.UTC), // a Monday
			AmountINR: 100,
			State:     "Delhi",
			Bank:      "HDFC",
			Status:    StatusSuccess,
		},
	}

	table := NewTable(rows)
	require.Equal(t, 1, table.Len())

	row := table.Row(0)
	assert.Equal(t, 9, row.Hour)
	assert.Equal(t, "Monday", row.DayOfWeek)
	assert.Equal(t, "March", row.Month)
	assert.Equal(t, "Monday", row.DimensionValue(models.DimDayOfWeek))
	assert.Equal(t, "9", row.DimensionValue(models.DimHour))
	assert.Equal(t, "March", row.DimensionValue(models.DimMonth))
}

func TestSchema_KnownValues(t *testing.T) {
	table := GenerateSample(2000, 42)
	schema := table.Schema()

	assert.ElementsMatch(t, States, schema.Values(models.DimState))
	assert.ElementsMatch(t, Banks, schema.Values(models.DimBank))
	assert.ElementsMatch(t, Statuses, schema.Values(models.DimTransactionStatus))

	assert.True(t, schema.Has(models.DimBank, "HDFC"))
	assert.False(t, schema.Has(models.DimBank, "Chase"))
	assert.False(t, schema.Has(models.DimState, "hdfc"))
}

func TestSchema_DimensionsOrdered(t *testing.T) {
	table := GenerateSample(2000, 42)
	dims := table.Schema().Dimensions()

	require.NotEmpty(t, dims)
	assert.Equal(t, models.DimState, dims[0])
	assert.Contains(t, dims, models.DimDayOfWeek)
	assert.Contains(t, dims, models.DimTransactionStatus)
}

func TestGenerateSample_Deterministic(t *testing.T) {
	a := GenerateSample(500, 7)
	b := GenerateSample(500, 7)

	require.Equal(t, a.Len(), b.Len())
	for i := 0; i < a.Len(); i++ {
		assert.Equal(t, *a.Row(i), *b.Row(i))
	}
}

func TestGenerateSample_CoversVocabulary(t *testing.T) {
	table := GenerateSample(5000, 1)
	schema := table.Schema()

	assert.Len(t, schema.Values(models.DimState), len(States))
	assert.Len(t, schema.Values(models.DimBank), len(Banks))
	assert.Len(t, schema.Values(models.DimCategory), len(Categories))
	assert.Len(t, schema.Values(models.DimDevice), len(Devices))
	assert.Len(t, schema.Values(models.DimNetwork), len(Networks))
	assert.Len(t, schema.Values(models.DimTransactionType), len(TransactionTypes))
	assert.Len(t, schema.Values(models.DimAgeGroup), len(AgeGroups))
}

func TestTransaction_IsFailed(t *testing.T) {
	ok := Transaction{Status: StatusSuccess}
	failed := Transaction{Status: StatusFailed}

	assert.False(t, ok.IsFailed())
	assert.True(t, failed.IsFailed())
}
