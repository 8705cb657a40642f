// internal/conversation/merger.go
package conversation

import (
	"math"

	"github.com/Ananya-0081/insightx-upi/internal/models"
)

// MinExplicitConfidence separates keyword-backed classifications from the
// parser's floor defaults: intent and metric only override inherited values
// when their confidence reaches this bar.
const MinExplicitConfidence = 0.6

// Merger folds a session's context window into each new turn. Merging is
// field-level: fields the new turn sets explicitly win, unset fields
// inherit from the accumulated context, and filters are additive with the
// newest turn winning per-dimension conflicts.
type Merger struct {
	minExplicit float64
}

// NewMerger builds a merger; minExplicit <= 0 selects
// MinExplicitConfidence.
func NewMerger(minExplicit float64) *Merger {
	if minExplicit <= 0 {
		minExplicit = MinExplicitConfidence
	}
	return &Merger{minExplicit: minExplicit}
}

// Merge folds history (oldest first) and then the current turn into one
// effective query. Neither input is mutated.
func (m *Merger) Merge(history []models.StructuredQuery, current models.StructuredQuery) models.StructuredQuery {
	var acc models.StructuredQuery
	for i := range history {
		acc = m.fold(acc, &history[i])
	}
	acc = m.fold(acc, &current)

	// An explicit pair only makes sense while the merged intent is still a
	// comparison; a stale pair must not leak into other query shapes.
	if acc.Intent != models.IntentComparison {
		acc.Compare = nil
	}

	if acc.Filters == nil {
		acc.Filters = make(map[models.Dimension]string)
	}
	if !acc.HasGroupBy() {
		acc.Confidence.GroupBy = 0.5
	}
	overall := (acc.Confidence.Intent + acc.Confidence.Metric + acc.Confidence.GroupBy) / 3
	acc.Confidence.Overall = math.Round(overall*100) / 100
	acc.Label = models.LabelFor(acc.Confidence.Overall)
	return acc
}

func (m *Merger) fold(acc models.StructuredQuery, next *models.StructuredQuery) models.StructuredQuery {
	if acc.Intent == "" || next.Confidence.Intent >= m.minExplicit {
		acc.Intent = next.Intent
		acc.Confidence.Intent = next.Confidence.Intent
	}
	if acc.Metric == "" || next.Confidence.Metric >= m.minExplicit {
		acc.Metric = next.Metric
		acc.Confidence.Metric = next.Confidence.Metric
	}
	if next.HasGroupBy() {
		acc.GroupBy = next.GroupBy
		acc.Confidence.GroupBy = next.Confidence.GroupBy
	}
	if next.HasTimeWindow() {
		acc.TimeWindow = next.TimeWindow
	}
	if next.SortDirection != "" {
		acc.SortDirection = next.SortDirection
	}
	if next.HasLimit() {
		acc.Limit = next.Limit
	}
	if next.HasCompare() {
		acc.Compare = append([]models.CompareEntity(nil), next.Compare...)
	}
	if len(next.Filters) > 0 {
		if acc.Filters == nil {
			acc.Filters = make(map[models.Dimension]string, len(next.Filters))
		} else {
			merged := make(map[models.Dimension]string, len(acc.Filters)+len(next.Filters))
			for k, v := range acc.Filters {
				merged[k] = v
			}
			acc.Filters = merged
		}
		for k, v := range next.Filters {
			acc.Filters[k] = v
		}
	}
	return acc
}
