// internal/analytics/executor.go
package analytics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/Ananya-0081/insightx-upi/internal/dataset"
	"github.com/Ananya-0081/insightx-upi/internal/models"
)

// Defaults applied when the corresponding Options field is zero.
const (
	DefaultLimit                  = 5
	DefaultAnomalyThreshold       = 2.0
	DefaultAnomalyIntentThreshold = 1.5
)

// Errors the executor wraps so callers can map them to failure codes.
var (
	ErrUnsupportedMetric = errors.New("unsupported metric")
	ErrUnsupportedIntent = errors.New("unsupported intent")
	ErrUnknownDimension  = errors.New("unknown dimension")
)

// DefaultBreakdown is the dimension grouped over when a query needs a
// grouping but names none.
var DefaultBreakdown = models.DimState

// Options tunes the executor.
type Options struct {
	// DefaultLimit caps ranking results when the query has no explicit "top N".
	DefaultLimit int
	// DefaultBreakdown is the fallback grouping dimension.
	DefaultBreakdown models.Dimension
	// AnomalyThreshold flags |z| >= threshold on grouped results.
	AnomalyThreshold float64
	// AnomalyIntentThreshold is the lower bar used for explicit anomaly queries.
	AnomalyIntentThreshold float64
}

func (o Options) withDefaults() Options {
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = DefaultLimit
	}
	if o.DefaultBreakdown == "" {
		o.DefaultBreakdown = DefaultBreakdown
	}
	if o.AnomalyThreshold <= 0 {
		o.AnomalyThreshold = DefaultAnomalyThreshold
	}
	if o.AnomalyIntentThreshold <= 0 {
		o.AnomalyIntentThreshold = DefaultAnomalyIntentThreshold
	}
	return o
}

// Executor runs resolved queries against the shared read-only table. It is
// safe for concurrent use: execution only reads the table and allocates
// per-call state.
type Executor struct {
	table *dataset.Table
	opts  Options
}

// NewExecutor builds an executor over a loaded table.
func NewExecutor(table *dataset.Table, opts Options) *Executor {
	return &Executor{table: table, opts: opts.withDefaults()}
}

// Table returns the underlying dataset.
func (e *Executor) Table() *dataset.Table { return e.table }

// Run executes one query. A query matching no rows is not an error: it
// yields a result with Empty set. Errors are reserved for queries the
// executor cannot evaluate at all.
func (e *Executor) Run(ctx context.Context, q *models.StructuredQuery) (*models.AggregationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	def, ok := metricDefs[q.Metric]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedMetric, q.Metric)
	}

	if q.Intent == models.IntentComparison && q.HasCompare() {
		return e.runPair(q, def)
	}

	rows := selectRows(e.table, q.Filters, q.TimeWindow)
	res := e.newResult(q)
	res.MatchedRows = len(rows)
	if len(rows) == 0 {
		res.Empty = true
		res.Type = shapeFor(q)
		return res, nil
	}

	switch q.Intent {
	case models.IntentSingle:
		return e.runSingle(q, def, rows, res)
	case models.IntentComparison:
		return e.runGroupedComparison(q, def, rows, res)
	case models.IntentRanking:
		return e.runRanking(q, def, rows, res)
	case models.IntentTrend:
		return e.runTrend(q, def, rows, res)
	case models.IntentAnomaly:
		return e.runAnomaly(q, def, rows, res)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedIntent, q.Intent)
	}
}

func (e *Executor) newResult(q *models.StructuredQuery) *models.AggregationResult {
	return &models.AggregationResult{
		Metric:         q.Metric,
		GroupBy:        q.GroupBy,
		AppliedFilters: cloneFilters(q.Filters),
		TimeWindow:     q.TimeWindow,
	}
}

func shapeFor(q *models.StructuredQuery) models.ResultType {
	if q.Intent == models.IntentSingle && !q.HasGroupBy() {
		return models.ResultScalar
	}
	return models.ResultSeries
}

func (e *Executor) runSingle(q *models.StructuredQuery, def metricDef, rows []*dataset.Transaction, res *models.AggregationResult) (*models.AggregationResult, error) {
	if q.HasGroupBy() {
		groups, err := e.grouped(rows, q.GroupBy, def)
		if err != nil {
			return nil, err
		}
		annotateAnomalies(groups, e.opts.AnomalyThreshold)
		if q.GroupBy.IsTemporal() {
			orderCalendar(groups, q.GroupBy)
		} else {
			sortByValue(groups, models.SortDescending)
		}
		res.Type = models.ResultSeries
		res.Rows = groups
		return res, nil
	}

	v := def.compute(rows)
	res.Type = models.ResultScalar
	res.Value = &v

	// A scalar answer still carries a breakdown over the default dimension
	// so the insight layer has something to chart, unless that dimension is
	// already pinned by a filter.
	bd := e.opts.DefaultBreakdown
	if _, pinned := q.Filters[bd]; !pinned {
		groups := groupRows(rows, bd, def)
		if len(groups) > 0 {
			annotateAnomalies(groups, e.opts.AnomalyThreshold)
			sortByValue(groups, models.SortDescending)
			res.Breakdown = groups
		}
	}
	return res, nil
}

func (e *Executor) runGroupedComparison(q *models.StructuredQuery, def metricDef, rows []*dataset.Transaction, res *models.AggregationResult) (*models.AggregationResult, error) {
	dim := q.GroupBy
	if dim == "" {
		dim = e.opts.DefaultBreakdown
	}
	groups, err := e.grouped(rows, dim, def)
	if err != nil {
		return nil, err
	}
	annotateAnomalies(groups, e.opts.AnomalyThreshold)
	res.Type = models.ResultSeries
	res.GroupBy = dim
	res.Rows = groups
	return res, nil
}

func (e *Executor) runRanking(q *models.StructuredQuery, def metricDef, rows []*dataset.Transaction, res *models.AggregationResult) (*models.AggregationResult, error) {
	dim := q.GroupBy
	if dim == "" {
		dim = e.opts.DefaultBreakdown
	}
	groups, err := e.grouped(rows, dim, def)
	if err != nil {
		return nil, err
	}
	annotateAnomalies(groups, e.opts.AnomalyThreshold)

	dir := q.SortDirection
	if dir == "" {
		dir = models.SortDescending
	}
	sortByValue(groups, dir)

	limit := q.Limit
	if limit <= 0 {
		limit = e.opts.DefaultLimit
	}
	if len(groups) > limit {
		groups = groups[:limit]
	}

	res.Type = models.ResultSeries
	res.GroupBy = dim
	res.Rows = groups
	return res, nil
}

func (e *Executor) runTrend(q *models.StructuredQuery, def metricDef, rows []*dataset.Transaction, res *models.AggregationResult) (*models.AggregationResult, error) {
	dim := q.GroupBy
	if !dim.IsTemporal() {
		dim = models.DimHour
	}
	groups, err := e.grouped(rows, dim, def)
	if err != nil {
		return nil, err
	}
	annotateAnomalies(groups, e.opts.AnomalyThreshold)
	orderCalendar(groups, dim)

	res.Type = models.ResultSeries
	res.GroupBy = dim
	res.Rows = groups
	return res, nil
}

func (e *Executor) runAnomaly(q *models.StructuredQuery, def metricDef, rows []*dataset.Transaction, res *models.AggregationResult) (*models.AggregationResult, error) {
	dim := q.GroupBy
	if dim == "" {
		dim = e.opts.DefaultBreakdown
	}
	groups, err := e.grouped(rows, dim, def)
	if err != nil {
		return nil, err
	}
	annotateAnomalies(groups, e.opts.AnomalyIntentThreshold)
	sort.SliceStable(groups, func(i, j int) bool {
		return math.Abs(groups[i].ZScore) > math.Abs(groups[j].ZScore)
	})

	res.Type = models.ResultSeries
	res.GroupBy = dim
	res.Rows = groups
	return res, nil
}

func (e *Executor) runPair(q *models.StructuredQuery, def metricDef) (*models.AggregationResult, error) {
	pairDim := q.Compare[0].Dimension
	base := cloneFilters(q.Filters)
	delete(base, pairDim)

	res := &models.AggregationResult{
		Type:           models.ResultComparisonPair,
		Metric:         q.Metric,
		GroupBy:        pairDim,
		AppliedFilters: base,
		TimeWindow:     q.TimeWindow,
	}

	var values [2]float64
	total := 0
	for i, side := range q.Compare[:2] {
		filters := cloneFilters(base)
		filters[side.Dimension] = side.Value
		matched := selectRows(e.table, filters, q.TimeWindow)
		total += len(matched)
		values[i] = def.compute(matched)
		res.Rows = append(res.Rows, models.GroupRow{GroupKey: side.Value, Value: values[i]})
	}

	res.MatchedRows = total
	res.Empty = total == 0

	diff := values[0] - values[1]
	pct := 0.0
	if values[1] != 0 {
		pct = diff / values[1] * 100
	}
	res.Comparison = &models.PairComparison{AbsoluteDiff: diff, PercentDiff: pct}
	return res, nil
}

// grouped aggregates per group and fails when the dimension carries no
// values in the matched rows, which means the dataset does not have the
// column at all.
func (e *Executor) grouped(rows []*dataset.Transaction, dim models.Dimension, def metricDef) ([]models.GroupRow, error) {
	groups := groupRows(rows, dim, def)
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: %q has no values in the matched rows", ErrUnknownDimension, dim)
	}
	return groups, nil
}

// groupRows buckets rows by the dimension value in first-appearance order
// and aggregates the metric per bucket.
func groupRows(rows []*dataset.Transaction, dim models.Dimension, def metricDef) []models.GroupRow {
	var order []string
	buckets := make(map[string][]*dataset.Transaction)
	for _, t := range rows {
		key := t.DimensionValue(dim)
		if key == "" {
			continue
		}
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], t)
	}
	out := make([]models.GroupRow, 0, len(order))
	for _, key := range order {
		out = append(out, models.GroupRow{GroupKey: key, Value: def.compute(buckets[key])})
	}
	return out
}

func sortByValue(rows []models.GroupRow, dir models.SortDirection) {
	asc := dir == models.SortAscending
	sort.SliceStable(rows, func(i, j int) bool {
		if asc {
			return rows[i].Value < rows[j].Value
		}
		return rows[i].Value > rows[j].Value
	})
}

// orderCalendar sorts a temporal series into calendar order: hours
// numerically, days Monday through Sunday, months January through December.
func orderCalendar(rows []models.GroupRow, dim models.Dimension) {
	switch dim {
	case models.DimHour:
		sort.SliceStable(rows, func(i, j int) bool {
			a, _ := strconv.Atoi(rows[i].GroupKey)
			b, _ := strconv.Atoi(rows[j].GroupKey)
			return a < b
		})
	case models.DimDayOfWeek:
		sort.SliceStable(rows, func(i, j int) bool {
			return dayIndex[rows[i].GroupKey] < dayIndex[rows[j].GroupKey]
		})
	case models.DimMonth:
		sort.SliceStable(rows, func(i, j int) bool {
			return monthIndex[rows[i].GroupKey] < monthIndex[rows[j].GroupKey]
		})
	}
}

var (
	dayIndex   = indexByName(dataset.DayNames)
	monthIndex = indexByName(dataset.MonthNames)
)

func indexByName(names []string) map[string]int {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}
	return idx
}

func cloneFilters(filters map[models.Dimension]string) map[models.Dimension]string {
	out := make(map[models.Dimension]string, len(filters))
	for k, v := range filters {
		out[k] = v
	}
	return out
}
