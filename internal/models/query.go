// internal/models/query.go
package models

// Intent is the query shape, determining the execution strategy.
type Intent string

const (
	IntentSingle     Intent = "single"
	IntentComparison Intent = "comparison"
	IntentRanking    Intent = "ranking"
	IntentTrend      Intent = "trend"
	IntentAnomaly    Intent = "anomaly"
)

// Metric is the aggregated quantity requested.
type Metric string

const (
	MetricFraudRate   Metric = "fraud_rate"
	MetricFailureRate Metric = "failure_rate"
	MetricAvgAmount   Metric = "avg_amount"
	MetricCount       Metric = "count"
	MetricTotalVolume Metric = "total_volume"
)

// Dimension is a categorical column usable for grouping or filtering.
// The empty string means "no dimension"; it is never a legal column name.
type Dimension string

const (
	DimState             Dimension = "state"
	DimBank              Dimension = "bank"
	DimCategory          Dimension = "category"
	DimDevice            Dimension = "device"
	DimNetwork           Dimension = "network"
	DimTransactionType   Dimension = "transaction_type"
	DimAgeGroup          Dimension = "age_group"
	DimHour              Dimension = "hour"
	DimDayOfWeek         Dimension = "day_of_week"
	DimMonth             Dimension = "month"
	DimTransactionStatus Dimension = "transaction_status"
)

// AllDimensions lists every groupable/filterable column in a fixed order.
var AllDimensions = []Dimension{
	DimState, DimBank, DimCategory, DimDevice, DimNetwork,
	DimTransactionType, DimAgeGroup, DimHour, DimDayOfWeek, DimMonth,
	DimTransactionStatus,
}

// IsTemporal reports whether the dimension carries calendar/time semantics,
// which makes it eligible for trend ordering.
func (d Dimension) IsTemporal() bool {
	return d == DimHour || d == DimDayOfWeek || d == DimMonth
}

// SortDirection orders ranking output. Empty means "not requested".
type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// TimeWindow is a symbolic tag resolved to an hour/day predicate at
// execution time. Empty means "no window".
type TimeWindow string

const (
	WindowMorning   TimeWindow = "morning"
	WindowAfternoon TimeWindow = "afternoon"
	WindowEvening   TimeWindow = "evening"
	WindowNight     TimeWindow = "night"
	WindowMidnight  TimeWindow = "midnight"
	WindowWeekend   TimeWindow = "weekend"
	WindowWeekday   TimeWindow = "weekday"
)

// CompareEntity is one side of an explicit "A vs B" comparison.
type CompareEntity struct {
	Dimension Dimension `json:"dimension"`
	Value     string    `json:"value"`
}

// Confidence carries the per-axis classification confidences in [0,1]
// plus their combined score.
type Confidence struct {
	Intent  float64 `json:"intent"`
	Metric  float64 `json:"metric"`
	GroupBy float64 `json:"group_by"`
	Overall float64 `json:"overall"`
}

// ConfidenceLabel is the ordinal bucket derived from the overall score.
type ConfidenceLabel string

const (
	LabelVeryHigh ConfidenceLabel = "Very High"
	LabelHigh     ConfidenceLabel = "High"
	LabelMedium   ConfidenceLabel = "Medium"
	LabelLow      ConfidenceLabel = "Low"
)

// LabelFor buckets an overall confidence score.
func LabelFor(overall float64) ConfidenceLabel {
	switch {
	case overall >= 0.85:
		return LabelVeryHigh
	case overall >= 0.70:
		return LabelHigh
	case overall >= 0.55:
		return LabelMedium
	default:
		return LabelLow
	}
}

// StructuredQuery is the parsed representation of one user turn. Optional
// fields use explicit unset sentinels (empty string, zero, nil) that are
// never legal values, so the context merger can tell "not provided" from
// "provided but empty".
type StructuredQuery struct {
	Intent        Intent               `json:"intent"`
	Metric        Metric               `json:"metric"`
	GroupBy       Dimension            `json:"group_by,omitempty"`
	Filters       map[Dimension]string `json:"filters"`
	TimeWindow    TimeWindow           `json:"time_window,omitempty"`
	SortDirection SortDirection        `json:"sort_direction,omitempty"`
	Limit         int                  `json:"limit,omitempty"`
	Compare       []CompareEntity      `json:"compare_entities,omitempty"`
	Confidence    Confidence           `json:"confidence"`
	Label         ConfidenceLabel      `json:"label"`
}

// HasGroupBy reports whether a grouping dimension was resolved.
func (q *StructuredQuery) HasGroupBy() bool { return q.GroupBy != "" }

// HasTimeWindow reports whether a symbolic time window was resolved.
func (q *StructuredQuery) HasTimeWindow() bool { return q.TimeWindow != "" }

// HasLimit reports whether an explicit result limit was parsed.
func (q *StructuredQuery) HasLimit() bool { return q.Limit > 0 }

// HasCompare reports whether an explicit comparison pair was detected.
func (q *StructuredQuery) HasCompare() bool { return len(q.Compare) == 2 }

// FilterCount returns the number of resolved filters.
func (q *StructuredQuery) FilterCount() int { return len(q.Filters) }

// Clone returns a deep copy. Stored context entries are immutable, so
// merges always operate on copies.
func (q *StructuredQuery) Clone() StructuredQuery {
	out := *q
	if q.Filters != nil {
		out.Filters = make(map[Dimension]string, len(q.Filters))
		for k, v := range q.Filters {
			out.Filters[k] = v
		}
	}
	if q.Compare != nil {
		out.Compare = append([]CompareEntity(nil), q.Compare...)
	}
	return out
}

// Suggestion is one fuzzy candidate offered for an unresolved token.
type Suggestion struct {
	Dimension Dimension `json:"dimension"`
	Value     string    `json:"value"`
	Score     float64   `json:"score"`
}

// UnresolvedEntity reports a token that looked like an entity reference but
// matched no known value exactly or fuzzily. The rest of the query still
// executes; callers may surface the suggestions for clarification.
type UnresolvedEntity struct {
	Token       string       `json:"token"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
}

// ValidIntent reports whether s names a known intent.
func ValidIntent(s string) bool {
	switch Intent(s) {
	case IntentSingle, IntentComparison, IntentRanking, IntentTrend, IntentAnomaly:
		return true
	}
	return false
}

// ValidMetric reports whether s names a known metric.
func ValidMetric(s string) bool {
	switch Metric(s) {
	case MetricFraudRate, MetricFailureRate, MetricAvgAmount, MetricCount, MetricTotalVolume:
		return true
	}
	return false
}

// ValidDimension reports whether s names a known dimension.
func ValidDimension(s string) bool {
	for _, d := range AllDimensions {
		if Dimension(s) == d {
			return true
		}
	}
	return false
}
