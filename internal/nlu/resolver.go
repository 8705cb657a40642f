// internal/nlu/resolver.go
package nlu

import (
	"sort"

	"github.com/Ananya-0081/insightx-upi/internal/dataset"
	"github.com/Ananya-0081/insightx-upi/internal/models"
)

// DefaultFuzzyThreshold is the minimum token-sort score for a fuzzy match
// to be accepted as a resolved entity.
const DefaultFuzzyThreshold = 72.0

// entityDimensions are the dimensions whose values can appear as free-text
// references in a question. Hour is excluded because its values are bare
// numbers ("top 5" must never become an hour filter); transaction status is
// excluded because success and failure are expressed through metrics.
var entityDimensions = []models.Dimension{
	models.DimState,
	models.DimBank,
	models.DimCategory,
	models.DimDevice,
	models.DimNetwork,
	models.DimTransactionType,
	models.DimAgeGroup,
	models.DimDayOfWeek,
	models.DimMonth,
}

// Match is a resolved reference to a known dimension value.
type Match struct {
	Dimension models.Dimension
	Value     string
	Score     float64
	Start     int
	End       int
}

type valueEntry struct {
	dimension  models.Dimension
	canonical  string
	normalized string
}

// Resolver maps free-text references onto canonical dimension values
// observed in the dataset schema.
type Resolver struct {
	threshold float64
	entries   []valueEntry
	byDim     map[models.Dimension][]valueEntry
}

// NewResolver builds a resolver over the schema's entity dimensions.
// A threshold <= 0 selects DefaultFuzzyThreshold.
func NewResolver(schema *dataset.Schema, threshold float64) *Resolver {
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	r := &Resolver{
		threshold: threshold,
		byDim:     make(map[models.Dimension][]valueEntry),
	}
	for _, dim := range entityDimensions {
		for _, v := range schema.Values(dim) {
			entry := valueEntry{dimension: dim, canonical: v, normalized: normalizeText(v)}
			if entry.normalized == "" {
				continue
			}
			r.entries = append(r.entries, entry)
			r.byDim[dim] = append(r.byDim[dim], entry)
		}
	}
	// Longer values claim their span first so a value embedded in a longer
	// one can never shadow it.
	sort.SliceStable(r.entries, func(i, j int) bool {
		return len(r.entries[i].normalized) > len(r.entries[j].normalized)
	})
	return r
}

// Threshold returns the active fuzzy acceptance score.
func (r *Resolver) Threshold() float64 { return r.threshold }

// ExactMatches scans normalized text for boundary-delimited occurrences of
// known values. Each span of text is claimed by at most one value.
func (r *Resolver) ExactMatches(text string) []Match {
	var matches []Match
	var claimed [][2]int
	for _, e := range r.entries {
		start := 0
		for {
			i, ok := phraseIndex(text, e.normalized, start)
			if !ok {
				break
			}
			end := i + len(e.normalized)
			if !overlaps(claimed, i, end) {
				matches = append(matches, Match{
					Dimension: e.dimension,
					Value:     e.canonical,
					Score:     100,
					Start:     i,
					End:       end,
				})
				claimed = append(claimed, [2]int{i, end})
			}
			start = end
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Start < matches[j].Start })
	return matches
}

func overlaps(spans [][2]int, start, end int) bool {
	for _, s := range spans {
		if start < s[1] && end > s[0] {
			return true
		}
	}
	return false
}

// ResolveToken fuzzy-matches a token or short phrase against every known
// value and returns the best match when it clears the threshold.
func (r *Resolver) ResolveToken(token string) (Match, bool) {
	best, ok := r.bestMatch(token)
	if !ok || best.Score < r.threshold {
		return Match{}, false
	}
	return best, true
}

// Lookup resolves a raw string to the canonical value of one dimension by
// normalized equality.
func (r *Resolver) Lookup(dim models.Dimension, raw string) (string, bool) {
	norm := normalizeText(raw)
	for _, e := range r.byDim[dim] {
		if e.normalized == norm {
			return e.canonical, true
		}
	}
	return "", false
}

// Suggest returns the n nearest known values for an unresolved token,
// highest score first.
func (r *Resolver) Suggest(token string, n int) []models.Suggestion {
	norm := normalizeText(token)
	if norm == "" || n <= 0 {
		return nil
	}
	scored := make([]models.Suggestion, 0, len(r.entries))
	for _, dim := range entityDimensions {
		for _, e := range r.byDim[dim] {
			scored = append(scored, models.Suggestion{
				Dimension: dim,
				Value:     e.canonical,
				Score:     tokenSortRatio(norm, e.normalized),
			})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

func (r *Resolver) bestMatch(token string) (Match, bool) {
	norm := normalizeText(token)
	if norm == "" {
		return Match{}, false
	}
	var best Match
	found := false
	for _, dim := range entityDimensions {
		for _, e := range r.byDim[dim] {
			score := tokenSortRatio(norm, e.normalized)
			if !found || score > best.Score {
				best = Match{Dimension: dim, Value: e.canonical, Score: score}
				found = true
			}
		}
	}
	return best, found
}
