// internal/insights/builder.go
package insights

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Ananya-0081/insightx-upi/internal/analytics"
	"github.com/Ananya-0081/insightx-upi/internal/models"
)

// Risk thresholds applied when the corresponding Options field is zero.
// Rates are percentages.
const (
	DefaultFraudRiskThreshold   = 5.0
	DefaultFailureRiskThreshold = 10.0
)

// Options tunes the builder.
type Options struct {
	FraudRiskThreshold   float64
	FailureRiskThreshold float64
}

// Builder turns a resolved query plus its aggregation result into the
// presentation payload: a one-line summary, a chart hint, headline figures,
// risk flags and follow-up suggestions. Building is deterministic except
// for the generated insight ID.
type Builder struct {
	opts Options
}

// NewBuilder builds an insight builder.
func NewBuilder(opts Options) *Builder {
	if opts.FraudRiskThreshold <= 0 {
		opts.FraudRiskThreshold = DefaultFraudRiskThreshold
	}
	if opts.FailureRiskThreshold <= 0 {
		opts.FailureRiskThreshold = DefaultFailureRiskThreshold
	}
	return &Builder{opts: opts}
}

var metricNames = map[models.Metric]string{
	models.MetricFraudRate:   "fraud rate",
	models.MetricFailureRate: "failure rate",
	models.MetricAvgAmount:   "average amount",
	models.MetricCount:       "transaction count",
	models.MetricTotalVolume: "total volume",
}

var dimensionNames = map[models.Dimension]string{
	models.DimState:             "state",
	models.DimBank:              "bank",
	models.DimCategory:          "category",
	models.DimDevice:            "device",
	models.DimNetwork:           "network",
	models.DimTransactionType:   "transaction type",
	models.DimAgeGroup:          "age group",
	models.DimHour:              "hour",
	models.DimDayOfWeek:         "day",
	models.DimMonth:             "month",
	models.DimTransactionStatus: "status",
}

var windowPhrases = map[models.TimeWindow]string{
	models.WindowMorning:   "in the morning",
	models.WindowAfternoon: "in the afternoon",
	models.WindowEvening:   "in the evening",
	models.WindowNight:     "at night",
	models.WindowMidnight:  "around midnight",
	models.WindowWeekend:   "on weekends",
	models.WindowWeekday:   "on weekdays",
}

// Build assembles the insight for one executed query.
func (b *Builder) Build(q *models.StructuredQuery, res *models.AggregationResult) *models.Insight {
	insight := &models.Insight{
		ID:              uuid.New().String(),
		ConfidenceLabel: q.Label,
		Empty:           res.Empty,
	}

	if res.Empty {
		insight.ChartType = models.ChartStat
		insight.Summary = "No transactions match this query" + scopeSuffix(res) + "."
		insight.FollowUps = emptyFollowUps(res)
		return insight
	}

	insight.ChartType = chartFor(q, res)
	insight.Summary = b.summarize(q, res)
	insight.Highlights = highlights(res)
	insight.RiskFlags = b.riskFlags(res)
	insight.FollowUps = followUps(q, res)
	return insight
}

func chartFor(q *models.StructuredQuery, res *models.AggregationResult) models.ChartType {
	switch res.Type {
	case models.ResultScalar:
		return models.ChartStat
	case models.ResultComparisonPair:
		return models.ChartBar
	}
	if res.GroupBy.IsTemporal() {
		return models.ChartLine
	}
	if q.Intent == models.IntentComparison && len(res.Rows) <= 4 {
		return models.ChartPie
	}
	return models.ChartBar
}

func (b *Builder) summarize(q *models.StructuredQuery, res *models.AggregationResult) string {
	name := metricNames[res.Metric]
	kind := analytics.KindOf(res.Metric)

	switch res.Type {
	case models.ResultScalar:
		return fmt.Sprintf("The %s is %s%s.", name, formatValue(kind, res.ScalarValue()), scopeSuffix(res))

	case models.ResultComparisonPair:
		first, second := res.Rows[0], res.Rows[1]
		direction := "higher than"
		if first.Value < second.Value {
			direction = "lower than"
		} else if first.Value == second.Value {
			direction = "level with"
		}
		s := fmt.Sprintf("%s's %s (%s) is %s %s's (%s)",
			first.GroupKey, name, formatValue(kind, first.Value),
			direction, second.GroupKey, formatValue(kind, second.Value))
		if res.Comparison != nil && res.Comparison.PercentDiff != 0 {
			s += fmt.Sprintf(", a %.1f%% difference", res.Comparison.PercentDiff)
		}
		return s + scopeSuffix(res) + "."
	}

	dimName := dimensionNames[res.GroupBy]
	switch {
	case res.AnomalyCount() > 0:
		top := res.Rows[0]
		return fmt.Sprintf("%d of %d %s groups are anomalous on %s; %s deviates most (z = %.2f)%s.",
			res.AnomalyCount(), len(res.Rows), dimName, name, top.GroupKey, top.ZScore, scopeSuffix(res))
	case q.Intent == models.IntentAnomaly:
		return fmt.Sprintf("No anomalies across %d %s groups on %s%s.",
			len(res.Rows), dimName, name, scopeSuffix(res))
	case res.GroupBy.IsTemporal():
		hi, lo := extremes(res.Rows)
		return fmt.Sprintf("By %s, %s peaks at %s (%s) and dips at %s (%s)%s.",
			dimName, name, hi.GroupKey, formatValue(kind, hi.Value),
			lo.GroupKey, formatValue(kind, lo.Value), scopeSuffix(res))
	case q.Intent == models.IntentRanking:
		lead := res.Rows[0]
		what := "Top"
		if q.SortDirection == models.SortAscending {
			what = "Bottom"
		}
		return fmt.Sprintf("%s %s by %s: %s at %s%s.",
			what, dimName, name, lead.GroupKey, formatValue(kind, lead.Value), scopeSuffix(res))
	default:
		hi, lo := extremes(res.Rows)
		return fmt.Sprintf("%s by %s ranges from %s (%s) to %s (%s)%s.",
			capitalize(name), dimName, formatValue(kind, lo.Value), lo.GroupKey,
			formatValue(kind, hi.Value), hi.GroupKey, scopeSuffix(res))
	}
}

// scopeSuffix renders the filters and time window a result was computed
// under, in a fixed dimension order.
func scopeSuffix(res *models.AggregationResult) string {
	var parts []string
	for _, d := range models.AllDimensions {
		if v, ok := res.AppliedFilters[d]; ok {
			parts = append(parts, fmt.Sprintf("%s = %s", dimensionNames[d], v))
		}
	}
	s := ""
	if len(parts) > 0 {
		s = " where " + strings.Join(parts, ", ")
	}
	if phrase, ok := windowPhrases[res.TimeWindow]; ok {
		s += " " + phrase
	}
	return s
}

func highlights(res *models.AggregationResult) []models.Highlight {
	switch res.Type {
	case models.ResultScalar:
		out := []models.Highlight{{Kind: "value", Value: res.ScalarValue()}}
		if len(res.Breakdown) > 0 {
			out = append(out, models.Highlight{
				Kind:     "top_group",
				GroupKey: res.Breakdown[0].GroupKey,
				Value:    res.Breakdown[0].Value,
			})
		}
		return out

	case models.ResultComparisonPair:
		out := []models.Highlight{
			{Kind: "first", GroupKey: res.Rows[0].GroupKey, Value: res.Rows[0].Value},
			{Kind: "second", GroupKey: res.Rows[1].GroupKey, Value: res.Rows[1].Value},
		}
		if res.Comparison != nil {
			out = append(out, models.Highlight{Kind: "difference", Value: res.Comparison.AbsoluteDiff})
		}
		return out
	}

	hi, lo := extremes(res.Rows)
	out := []models.Highlight{
		{Kind: "max", GroupKey: hi.GroupKey, Value: hi.Value},
		{Kind: "min", GroupKey: lo.GroupKey, Value: lo.Value},
	}
	for _, r := range res.Rows {
		if r.IsAnomaly {
			out = append(out, models.Highlight{Kind: "anomaly", GroupKey: r.GroupKey, Value: r.Value})
			break
		}
	}
	return out
}

func (b *Builder) riskFlags(res *models.AggregationResult) []models.RiskFlag {
	var flags []models.RiskFlag
	peak := peakValue(res)
	if res.Metric == models.MetricFraudRate && peak > b.opts.FraudRiskThreshold {
		flags = append(flags, models.RiskHighFraud)
	}
	if res.Metric == models.MetricFailureRate && peak > b.opts.FailureRiskThreshold {
		flags = append(flags, models.RiskHighFailure)
	}
	if res.AnomalyCount() > 0 {
		flags = append(flags, models.RiskAnomalies)
	}
	return flags
}

func peakValue(res *models.AggregationResult) float64 {
	peak := res.ScalarValue()
	for _, r := range res.Rows {
		if r.Value > peak {
			peak = r.Value
		}
	}
	for _, r := range res.Breakdown {
		if r.Value > peak {
			peak = r.Value
		}
	}
	return peak
}

func followUps(q *models.StructuredQuery, res *models.AggregationResult) []string {
	var out []string
	switch {
	case res.Type == models.ResultScalar:
		out = append(out,
			"Break this down by bank",
			"Show the hourly trend",
		)
	case res.Type == models.ResultComparisonPair:
		out = append(out,
			fmt.Sprintf("See the full breakdown by %s", dimensionNames[res.GroupBy]),
			"Show the monthly trend for both",
		)
	case q.Intent == models.IntentAnomaly:
		if res.AnomalyCount() > 0 {
			out = append(out, fmt.Sprintf("Drill into %s", res.Rows[0].GroupKey))
		}
		out = append(out, "Compare against the weekday pattern")
	case res.GroupBy.IsTemporal():
		out = append(out,
			fmt.Sprintf("Flag anomalies by %s", dimensionNames[res.GroupBy]),
			"Filter to weekends only",
		)
	default:
		out = append(out,
			fmt.Sprintf("Show anomalies by %s", dimensionNames[res.GroupBy]),
			"Narrow to a single state",
		)
	}
	if res.TimeWindow == "" {
		out = append(out, "Focus on night-time activity")
	}
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

func emptyFollowUps(res *models.AggregationResult) []string {
	var out []string
	for _, d := range models.AllDimensions {
		if _, ok := res.AppliedFilters[d]; ok {
			out = append(out, fmt.Sprintf("Remove the %s filter", dimensionNames[d]))
		}
	}
	if res.TimeWindow != "" {
		out = append(out, "Widen the time window")
	}
	if len(out) == 0 {
		out = append(out, "Load a larger dataset")
	}
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

// extremes returns the rows with the highest and lowest values.
func extremes(rows []models.GroupRow) (models.GroupRow, models.GroupRow) {
	hi, lo := rows[0], rows[0]
	for _, r := range rows[1:] {
		if r.Value > hi.Value {
			hi = r
		}
		if r.Value < lo.Value {
			lo = r
		}
	}
	return hi, lo
}

func formatValue(kind analytics.MetricKind, v float64) string {
	switch kind {
	case analytics.KindPercent:
		return fmt.Sprintf("%.2f%%", v)
	case analytics.KindCurrency:
		return "₹" + strconv.FormatFloat(v, 'f', 2, 64)
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
