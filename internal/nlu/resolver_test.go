// internal/nlu/resolver_test.go
package nlu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananya-0081/insightx-upi/internal/dataset"
	"github.com/Ananya-0081/insightx-upi/internal/models"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	return NewResolver(dataset.GenerateSample(5000, 42).Schema(), 0)
}

func TestResolver_ExactMatches(t *testing.T) {
	r := newTestResolver(t)

	matches := r.ExactMatches(normalizeText("Compare Delhi vs Karnataka fraud on Android"))
	require.Len(t, matches, 3)
	assert.Equal(t, models.DimState, matches[0].Dimension)
	assert.Equal(t, "Delhi", matches[0].Value)
	assert.Equal(t, "Karnataka", matches[1].Value)
	assert.Equal(t, models.DimDevice, matches[2].Dimension)
	assert.Equal(t, "Android", matches[2].Value)
}

func TestResolver_ExactMatches_MultiWordValues(t *testing.T) {
	r := newTestResolver(t)

	matches := r.ExactMatches(normalizeText("failures in West Bengal for bill payment"))
	require.Len(t, matches, 2)
	assert.Equal(t, "West Bengal", matches[0].Value)
	assert.Equal(t, models.DimTransactionType, matches[1].Dimension)
	assert.Equal(t, "Bill Payment", matches[1].Value)
}

func TestResolver_ExactMatches_WordBoundaries(t *testing.T) {
	r := newTestResolver(t)

	// "recharges" must not match the value "Recharge".
	matches := r.ExactMatches(normalizeText("recharges in Delhi"))
	require.Len(t, matches, 1)
	assert.Equal(t, "Delhi", matches[0].Value)
}

func TestResolver_ResolveToken_Misspellings(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		token string
		dim   models.Dimension
		value string
	}{
		{token: "karnatka", dim: models.DimState, value: "Karnataka"},
		{token: "maharastra", dim: models.DimState, value: "Maharashtra"},
		{token: "gujrat", dim: models.DimState, value: "Gujarat"},
		{token: "icici", dim: models.DimBank, value: "ICICI"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			m, ok := r.ResolveToken(tt.token)
			require.True(t, ok)
			assert.Equal(t, tt.dim, m.Dimension)
			assert.Equal(t, tt.value, m.Value)
		})
	}
}

func TestResolver_ResolveToken_RejectsBelowThreshold(t *testing.T) {
	r := newTestResolver(t)

	for _, token := range []string{"mumbai", "pradesh", "paytm"} {
		_, ok := r.ResolveToken(token)
		assert.False(t, ok, "token %q should not resolve", token)
	}
}

func TestResolver_ResolveToken_ThresholdBoundary(t *testing.T) {
	rows := []dataset.Transaction{
		{
			ID: "TXN1", Timestamp: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			AmountINR: 100, State: "abcdefghizzzzzz", Bank: "HDFC",
			Status: dataset.StatusSuccess,
		},
		{
			ID: "TXN2", Timestamp: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
			AmountINR: 100, State: "abcdefghijklmnopqrstuv", Bank: "HDFC",
			Status: dataset.StatusSuccess,
		},
	}
	r := NewResolver(dataset.NewTable(rows).Schema(), 0)

	// Scores exactly 72 against the first value: accepted.
	m, ok := r.ResolveToken("abcdefghiu")
	require.True(t, ok)
	assert.Equal(t, "abcdefghizzzzzz", m.Value)

	// Best score 71.79: rejected.
	_, ok = r.ResolveToken("abcdefghijklmnxyz")
	assert.False(t, ok)
}

func TestResolver_Suggest(t *testing.T) {
	r := newTestResolver(t)

	suggestions := r.Suggest("mumbai", 3)
	require.Len(t, suggestions, 3)
	for i, s := range suggestions {
		assert.Less(t, s.Score, DefaultFuzzyThreshold)
		if i > 0 {
			assert.LessOrEqual(t, s.Score, suggestions[i-1].Score)
		}
	}

	near := r.Suggest("karnatka", 3)
	require.NotEmpty(t, near)
	assert.Equal(t, "Karnataka", near[0].Value)
}

func TestResolver_Lookup(t *testing.T) {
	r := newTestResolver(t)

	v, ok := r.Lookup(models.DimAgeGroup, "18-25")
	require.True(t, ok)
	assert.Equal(t, "18-25", v)

	v, ok = r.Lookup(models.DimBank, "YES BANK")
	require.True(t, ok)
	assert.Equal(t, "Yes Bank", v)

	_, ok = r.Lookup(models.DimState, "atlantis")
	assert.False(t, ok)
}
