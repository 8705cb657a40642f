// internal/nlu/rules.go
package nlu

import (
	"regexp"

	"github.com/Ananya-0081/insightx-upi/internal/models"
)

// Classification is keyword-driven over these static tables. Rule order is
// the documented tie-break: when keyword sets from multiple classes match
// the same text with equal hit counts, the class listed first wins. For
// intent that order is comparison, ranking, anomaly, trend; `single` is the
// keywordless fallback.

type intentRule struct {
	intent   models.Intent
	keywords []string
}

var intentRules = []intentRule{
	{models.IntentComparison, []string{
		"compare", "comparison", "vs", "versus", "against", "difference", "between",
	}},
	{models.IntentRanking, []string{
		"top", "bottom", "best", "worst", "highest", "lowest", "rank", "ranking",
		"most", "least",
	}},
	{models.IntentAnomaly, []string{
		"anomaly", "anomalies", "unusual", "outlier", "outliers", "suspicious",
		"abnormal", "spike", "spikes", "odd",
	}},
	{models.IntentTrend, []string{
		"trend", "trends", "over time", "hourly", "daily", "monthly", "pattern",
		"by hour", "by day", "by month", "time of day", "throughout",
	}},
}

type metricRule struct {
	metric   models.Metric
	keywords []string
}

var metricRules = []metricRule{
	{models.MetricFraudRate, []string{
		"fraud", "frauds", "fraudulent", "scam", "scams", "fraud rate",
	}},
	{models.MetricFailureRate, []string{
		"failure", "failures", "failed", "fail", "failing", "declined",
		"unsuccessful", "failure rate",
	}},
	{models.MetricAvgAmount, []string{
		"average", "avg", "mean", "typical", "average amount", "avg amount",
		"ticket size",
	}},
	{models.MetricTotalVolume, []string{
		"volume", "total volume", "total amount", "sum", "spend", "spending",
		"turnover", "value",
	}},
	{models.MetricCount, []string{
		"count", "number", "how many", "transactions", "transaction count",
	}},
}

type dimensionRule struct {
	dimension models.Dimension
	keywords  []string
}

var dimensionRules = []dimensionRule{
	{models.DimState, []string{"state", "states", "region", "regions", "statewise"}},
	{models.DimBank, []string{"bank", "banks"}},
	{models.DimCategory, []string{"category", "categories", "merchant", "merchants"}},
	{models.DimDevice, []string{"device", "devices", "platform", "platforms"}},
	{models.DimNetwork, []string{"network", "networks", "connection"}},
	{models.DimTransactionType, []string{"type", "types", "payment type"}},
	{models.DimAgeGroup, []string{"age", "ages", "age group", "age groups", "demographic"}},
	{models.DimHour, []string{"hour", "hours", "hourly", "time of day"}},
	{models.DimDayOfWeek, []string{"day", "days", "daily", "day of week", "weekday"}},
	{models.DimMonth, []string{"month", "months", "monthly"}},
	{models.DimTransactionStatus, []string{"status"}},
}

// timeWindowRules maps time-of-day and day-class phrases to symbolic
// window tags; the executor owns the hour/day predicates behind them.
var timeWindowRules = []struct {
	window   models.TimeWindow
	keywords []string
}{
	{models.WindowWeekend, []string{"weekend", "weekends"}},
	{models.WindowWeekday, []string{"weekday", "weekdays"}},
	{models.WindowMidnight, []string{"midnight", "late night"}},
	{models.WindowMorning, []string{"morning", "mornings"}},
	{models.WindowAfternoon, []string{"afternoon", "afternoons"}},
	{models.WindowEvening, []string{"evening", "evenings"}},
	{models.WindowNight, []string{"night", "nights"}},
}

// topNPattern captures an explicit result limit; "bottom"/"worst" flip the
// sort direction.
var topNPattern = regexp.MustCompile(`\b(top|bottom|best|worst)\s+(\d+)\b`)

// agePattern recognizes structured age-group tokens like "18-25".
var agePattern = regexp.MustCompile(`\b(\d{2})\s*(?:-|to)\s*(\d{2})\b`)

var ascendingCues = []string{"bottom", "worst", "lowest", "least"}

// stopwords are never treated as entity references during resolution.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"what": {}, "whats": {}, "which": {}, "who": {}, "when": {}, "where": {},
	"how": {}, "why": {}, "show": {}, "give": {}, "list": {}, "tell": {},
	"me": {}, "my": {}, "our": {}, "their": {}, "it": {}, "its": {},
	"in": {}, "on": {}, "at": {}, "of": {}, "for": {}, "by": {}, "to": {},
	"from": {}, "with": {}, "without": {}, "about": {}, "across": {},
	"and": {}, "or": {}, "not": {}, "only": {}, "all": {}, "per": {},
	"do": {}, "does": {}, "did": {}, "have": {}, "has": {}, "had": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "there": {},
	"upi": {}, "transaction": {}, "transactions": {}, "payment": {},
	"payments": {}, "rate": {}, "rates": {}, "data": {}, "during": {},
	"wise": {}, "each": {}, "every": {}, "any": {}, "out": {}, "group": {},
	"groups": {}, "grouped": {}, "break": {}, "breakdown": {}, "split": {},
	"amount": {}, "amounts": {}, "users": {}, "user": {},
}

// confidence model: base + 0.1 per distinct matched keyword, capped at 0.95.
const (
	intentBaseConfidence    = 0.6
	metricBaseConfidence    = 0.65
	dimensionBaseConfidence = 0.6
	hitIncrement            = 0.1
	confidenceCap           = 0.95

	defaultIntentConfidence  = 0.5
	defaultMetricConfidence  = 0.4
	unsetGroupByConfidence   = 0.5
	promotedPairConfidence   = 0.95
)

// keywordLexicon is every word that appears in a rule table; entity
// resolution skips these tokens.
var keywordLexicon = buildKeywordLexicon()

func buildKeywordLexicon() map[string]struct{} {
	lex := make(map[string]struct{})
	addWords := func(phrases []string) {
		for _, p := range phrases {
			for _, w := range fields(p) {
				lex[w] = struct{}{}
			}
		}
	}
	for _, r := range intentRules {
		addWords(r.keywords)
	}
	for _, r := range metricRules {
		addWords(r.keywords)
	}
	for _, r := range dimensionRules {
		addWords(r.keywords)
	}
	for _, r := range timeWindowRules {
		addWords(r.keywords)
	}
	addWords(ascendingCues)
	return lex
}
