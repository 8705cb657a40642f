// internal/nlu/parser.go
package nlu

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/Ananya-0081/insightx-upi/internal/dataset"
	"github.com/Ananya-0081/insightx-upi/internal/models"
)

// Options tunes the parser.
type Options struct {
	// FuzzyThreshold is the minimum token-sort score for entity resolution;
	// <= 0 selects DefaultFuzzyThreshold.
	FuzzyThreshold float64
}

// Parser turns a natural-language question about UPI transactions into a
// StructuredQuery. Parsing is deterministic: the same text over the same
// schema always yields the same query.
type Parser struct {
	resolver *Resolver
}

// Outcome carries the parsed query plus any tokens that looked like entity
// references but resolved to nothing.
type Outcome struct {
	Query      models.StructuredQuery
	Unresolved []models.UnresolvedEntity
}

// NewParser builds a parser over the dataset schema.
func NewParser(schema *dataset.Schema, opts Options) *Parser {
	return &Parser{resolver: NewResolver(schema, opts.FuzzyThreshold)}
}

// Resolver exposes the parser's entity resolver.
func (p *Parser) Resolver() *Resolver { return p.resolver }

// Parse analyzes the question text. It never fails: text with no
// recognizable signal yields the default query at floor confidence.
func (p *Parser) Parse(text string) Outcome {
	tokens, norm := tokenize(text)

	intent, intentConf, comparisonCue := classifyIntent(norm)
	metric, metricConf := classifyMetric(norm)
	groupBy, groupConf := classifyDimension(norm)

	query := models.StructuredQuery{
		Intent:  intent,
		Metric:  metric,
		GroupBy: groupBy,
		Filters: make(map[models.Dimension]string),
	}
	query.TimeWindow = extractTimeWindow(norm)
	query.Limit, query.SortDirection = extractTopN(norm)

	matches, unresolved := p.resolveEntities(tokens, norm)

	// Two values of one dimension joined by a comparison cue promote the
	// query to an explicit pair comparison.
	if comparisonCue {
		if pair, rest, ok := splitComparisonPair(matches); ok {
			query.Intent = models.IntentComparison
			intentConf = promotedPairConfidence
			query.GroupBy = pair[0].Dimension
			groupConf = promotedPairConfidence
			query.Compare = []models.CompareEntity{
				{Dimension: pair[0].Dimension, Value: pair[0].Value},
				{Dimension: pair[1].Dimension, Value: pair[1].Value},
			}
			matches = rest
		}
	}

	for _, m := range matches {
		if _, taken := query.Filters[m.Dimension]; !taken {
			query.Filters[m.Dimension] = m.Value
		}
	}

	query.Confidence = scoreConfidence(intentConf, metricConf, groupConf)
	query.Label = models.LabelFor(query.Confidence.Overall)
	return Outcome{Query: query, Unresolved: unresolved}
}

func classifyIntent(text string) (models.Intent, float64, bool) {
	best := models.IntentSingle
	bestHits := 0
	cue := false
	for _, rule := range intentRules {
		hits := countHits(text, rule.keywords)
		if rule.intent == models.IntentComparison && hits > 0 {
			cue = true
		}
		if hits > bestHits {
			best = rule.intent
			bestHits = hits
		}
	}
	if bestHits == 0 {
		return models.IntentSingle, defaultIntentConfidence, cue
	}
	return best, hitConfidence(intentBaseConfidence, bestHits), cue
}

func classifyMetric(text string) (models.Metric, float64) {
	best := models.MetricCount
	bestHits := 0
	for _, rule := range metricRules {
		hits := countHits(text, rule.keywords)
		if hits > bestHits {
			best = rule.metric
			bestHits = hits
		}
	}
	if bestHits == 0 {
		return models.MetricCount, defaultMetricConfidence
	}
	return best, hitConfidence(metricBaseConfidence, bestHits)
}

func classifyDimension(text string) (models.Dimension, float64) {
	var best models.Dimension
	bestHits := 0
	for _, rule := range dimensionRules {
		hits := countHits(text, rule.keywords)
		if hits > bestHits {
			best = rule.dimension
			bestHits = hits
		}
	}
	if bestHits == 0 {
		return "", unsetGroupByConfidence
	}
	return best, hitConfidence(dimensionBaseConfidence, bestHits)
}

func extractTimeWindow(text string) models.TimeWindow {
	for _, rule := range timeWindowRules {
		for _, kw := range rule.keywords {
			if containsPhrase(text, kw) {
				return rule.window
			}
		}
	}
	return ""
}

func extractTopN(text string) (int, models.SortDirection) {
	limit := 0
	var direction models.SortDirection
	if m := topNPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil && n > 0 {
			limit = n
		}
	}
	for _, cue := range ascendingCues {
		if containsPhrase(text, cue) {
			direction = models.SortAscending
			break
		}
	}
	if direction == "" {
		for _, cue := range []string{"top", "best", "highest", "most"} {
			if containsPhrase(text, cue) {
				direction = models.SortDescending
				break
			}
		}
	}
	return limit, direction
}

// resolveEntities finds dimension-value references: exact matches over the
// whole text first, then fuzzy resolution of leftover tokens and adjacent
// token pairs. Capitalized tokens that resolve to nothing are reported as
// unresolved entities.
func (p *Parser) resolveEntities(tokens []token, norm string) ([]Match, []models.UnresolvedEntity) {
	matches := p.resolver.ExactMatches(norm)
	claimed := make([][2]int, 0, len(matches))
	for _, m := range matches {
		claimed = append(claimed, [2]int{m.Start, m.End})
	}

	// Age spans written as "18 to 25" normalize to the bracket form used by
	// the age_group dimension.
	for _, span := range agePattern.FindAllStringSubmatchIndex(norm, -1) {
		start, end := span[0], span[1]
		if overlaps(claimed, start, end) {
			continue
		}
		bracket := norm[span[2]:span[3]] + "-" + norm[span[4]:span[5]]
		if canonical, ok := p.resolver.Lookup(models.DimAgeGroup, bracket); ok {
			matches = append(matches, Match{
				Dimension: models.DimAgeGroup,
				Value:     canonical,
				Score:     100,
				Start:     start,
				End:       end,
			})
			claimed = append(claimed, [2]int{start, end})
		}
	}

	var unresolved []models.UnresolvedEntity
	seenUnresolved := make(map[string]struct{})

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if overlaps(claimed, tok.start, tok.end) || !tok.eligible() {
			continue
		}
		// Adjacent-pair first: catches two-word values with a typo in
		// either word.
		if i+1 < len(tokens) {
			next := tokens[i+1]
			if next.eligible() && !overlaps(claimed, next.start, next.end) {
				phrase := tok.norm + " " + next.norm
				if m, ok := p.resolver.ResolveToken(phrase); ok {
					m.Start, m.End = tok.start, next.end
					matches = append(matches, m)
					claimed = append(claimed, [2]int{tok.start, next.end})
					i++
					continue
				}
			}
		}
		if len(tok.norm) < minFuzzyTokenLen {
			continue
		}
		if m, ok := p.resolver.ResolveToken(tok.norm); ok {
			m.Start, m.End = tok.start, tok.end
			matches = append(matches, m)
			claimed = append(claimed, [2]int{tok.start, tok.end})
			continue
		}
		if tok.capitalized() {
			if _, dup := seenUnresolved[tok.norm]; dup {
				continue
			}
			seenUnresolved[tok.norm] = struct{}{}
			unresolved = append(unresolved, models.UnresolvedEntity{
				Token:       tok.original,
				Suggestions: p.resolver.Suggest(tok.norm, maxSuggestions),
			})
		}
	}

	sortMatchesByPosition(matches)
	return matches, unresolved
}

const (
	minFuzzyTokenLen = 4
	maxSuggestions   = 3
)

// splitComparisonPair looks for the first dimension carrying two distinct
// resolved values and splits them out of the match list, preserving the
// order they appeared in the text.
func splitComparisonPair(matches []Match) ([2]Match, []Match, bool) {
	byDim := make(map[models.Dimension][]int)
	for idx, m := range matches {
		byDim[m.Dimension] = append(byDim[m.Dimension], idx)
	}
	for _, m := range matches {
		idxs := byDim[m.Dimension]
		if len(idxs) < 2 {
			continue
		}
		first := matches[idxs[0]]
		var second Match
		found := false
		for _, idx := range idxs[1:] {
			if matches[idx].Value != first.Value {
				second = matches[idx]
				found = true
				break
			}
		}
		if !found {
			continue
		}
		rest := make([]Match, 0, len(matches)-2)
		for _, other := range matches {
			if other == first || other == second {
				continue
			}
			rest = append(rest, other)
		}
		return [2]Match{first, second}, rest, true
	}
	return [2]Match{}, matches, false
}

func scoreConfidence(intentConf, metricConf, groupConf float64) models.Confidence {
	overall := (intentConf + metricConf + groupConf) / 3
	return models.Confidence{
		Intent:  round2(intentConf),
		Metric:  round2(metricConf),
		GroupBy: round2(groupConf),
		Overall: round2(overall),
	}
}

func hitConfidence(base float64, hits int) float64 {
	c := base + hitIncrement*float64(hits)
	if c > confidenceCap {
		c = confidenceCap
	}
	return c
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type token struct {
	original string
	norm     string
	start    int
	end      int
}

func (t token) eligible() bool {
	return !isStopword(t.norm) && !isRuleKeyword(t.norm) && !isNumeric(t.norm)
}

func (t token) capitalized() bool {
	for _, r := range t.original {
		return unicode.IsUpper(r)
	}
	return false
}

// tokenize splits the original text on non-word runes, keeping hyphen and
// plus inside tokens. Offsets index into the returned normalized text,
// which equals normalizeText(text).
func tokenize(text string) ([]token, string) {
	var tokens []token
	var current strings.Builder
	flush := func() {
		if current.Len() == 0 {
			return
		}
		orig := current.String()
		tokens = append(tokens, token{original: orig, norm: strings.ToLower(orig)})
		current.Reset()
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '+' {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	var norm strings.Builder
	offset := 0
	for i := range tokens {
		if i > 0 {
			norm.WriteByte(' ')
			offset++
		}
		tokens[i].start = offset
		offset += len(tokens[i].norm)
		tokens[i].end = offset
		norm.WriteString(tokens[i].norm)
	}
	return tokens, norm.String()
}

func sortMatchesByPosition(matches []Match) {
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].Start < matches[j-1].Start; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}
}
