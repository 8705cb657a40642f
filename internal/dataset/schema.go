// internal/dataset/schema.go
package dataset

import (
	"sort"

	"github.com/Ananya-0081/insightx-upi/internal/models"
)

// Schema is the registry of known canonical values per dimension. It is
// built once from the loaded table and read-only afterwards; the entity
// resolver matches raw tokens against it.
type Schema struct {
	values map[models.Dimension][]string
	sets   map[models.Dimension]map[string]struct{}
}

func newSchema() *Schema {
	return &Schema{
		values: make(map[models.Dimension][]string),
		sets:   make(map[models.Dimension]map[string]struct{}),
	}
}

func (s *Schema) add(d models.Dimension, v string) {
	if v == "" {
		return
	}
	set, ok := s.sets[d]
	if !ok {
		set = make(map[string]struct{})
		s.sets[d] = set
	}
	if _, dup := set[v]; dup {
		return
	}
	set[v] = struct{}{}
	s.values[d] = append(s.values[d], v)
}

func (s *Schema) finish() {
	for d := range s.values {
		sort.Strings(s.values[d])
	}
}

// buildSchema collects the distinct values each dimension takes in rows.
func buildSchema(rows []Transaction) *Schema {
	s := newSchema()
	for i := range rows {
		t := &rows[i]
		for _, d := range models.AllDimensions {
			s.add(d, t.DimensionValue(d))
		}
	}
	s.finish()
	return s
}

// Values returns the sorted canonical values of a dimension. The returned
// slice must not be mutated.
func (s *Schema) Values(d models.Dimension) []string {
	return s.values[d]
}

// Has reports whether v is a known canonical value of d.
func (s *Schema) Has(d models.Dimension, v string) bool {
	_, ok := s.sets[d][v]
	return ok
}

// Dimensions returns the dimensions that have at least one known value,
// in the fixed model order.
func (s *Schema) Dimensions() []models.Dimension {
	out := make([]models.Dimension, 0, len(s.values))
	for _, d := range models.AllDimensions {
		if len(s.values[d]) > 0 {
			out = append(out, d)
		}
	}
	return out
}
