// internal/models/result.go
package models

// ResultType discriminates the three aggregation result shapes.
type ResultType string

const (
	ResultScalar         ResultType = "scalar"
	ResultSeries         ResultType = "series"
	ResultComparisonPair ResultType = "comparison_pair"
)

// GroupRow is one (group_key, value) pair of a series result. ZScore is
// populated only when anomaly detection ran over the series.
type GroupRow struct {
	GroupKey  string  `json:"group_key"`
	Value     float64 `json:"value"`
	IsAnomaly bool    `json:"is_anomaly,omitempty"`
	ZScore    float64 `json:"z_score,omitempty"`
}

// PairComparison carries the deltas between the two sides of an explicit
// comparison. PercentDiff is relative to the second side and left zero when
// that side's value is zero.
type PairComparison struct {
	AbsoluteDiff float64 `json:"absolute_diff"`
	PercentDiff  float64 `json:"percent_diff"`
}

// AggregationResult is the outcome of executing one resolved query. Values
// keep full numeric precision; rounding is a presentation concern. Rate
// metrics are percentages in [0,100], counts are non-negative, volumes are
// sums in the source currency unit.
type AggregationResult struct {
	Type           ResultType           `json:"type"`
	Value          *float64             `json:"value,omitempty"`
	Rows           []GroupRow           `json:"rows,omitempty"`
	Breakdown      []GroupRow           `json:"breakdown,omitempty"`
	Comparison     *PairComparison      `json:"comparison,omitempty"`
	Metric         Metric               `json:"metric"`
	GroupBy        Dimension            `json:"group_by,omitempty"`
	AppliedFilters map[Dimension]string `json:"applied_filters"`
	TimeWindow     TimeWindow           `json:"time_window,omitempty"`
	MatchedRows    int                  `json:"matched_rows"`
	Empty          bool                 `json:"empty"`
}

// AnomalyCount returns the number of rows flagged anomalous.
func (r *AggregationResult) AnomalyCount() int {
	n := 0
	for _, row := range r.Rows {
		if row.IsAnomaly {
			n++
		}
	}
	return n
}

// ScalarValue returns the scalar value, or 0 when the result is not scalar
// or matched no rows.
func (r *AggregationResult) ScalarValue() float64 {
	if r.Value == nil {
		return 0
	}
	return *r.Value
}
