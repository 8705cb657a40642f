// internal/analytics/filter.go
package analytics

import (
	"github.com/Ananya-0081/insightx-upi/internal/dataset"
	"github.com/Ananya-0081/insightx-upi/internal/models"
)

// windowHours maps the time-of-day windows to inclusive hour ranges.
var windowHours = map[models.TimeWindow][2]int{
	models.WindowMorning:   {6, 11},
	models.WindowAfternoon: {12, 16},
	models.WindowEvening:   {17, 20},
	models.WindowNight:     {21, 23},
	models.WindowMidnight:  {0, 5},
}

func matchesWindow(t *dataset.Transaction, w models.TimeWindow) bool {
	switch w {
	case "":
		return true
	case models.WindowWeekend:
		return t.DayOfWeek == "Saturday" || t.DayOfWeek == "Sunday"
	case models.WindowWeekday:
		return t.DayOfWeek != "Saturday" && t.DayOfWeek != "Sunday"
	default:
		r, ok := windowHours[w]
		if !ok {
			return true
		}
		return t.Hour >= r[0] && t.Hour <= r[1]
	}
}

func matchesFilters(t *dataset.Transaction, filters map[models.Dimension]string) bool {
	for dim, want := range filters {
		if t.DimensionValue(dim) != want {
			return false
		}
	}
	return true
}

// selectRows applies the conjunctive filter set plus the time window over
// the whole table.
func selectRows(table *dataset.Table, filters map[models.Dimension]string, window models.TimeWindow) []*dataset.Transaction {
	out := make([]*dataset.Transaction, 0, table.Len()/4)
	for i := 0; i < table.Len(); i++ {
		t := table.Row(i)
		if matchesFilters(t, filters) && matchesWindow(t, window) {
			out = append(out, t)
		}
	}
	return out
}
