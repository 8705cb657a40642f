// internal/dataset/table.go
package dataset

// Table is the read-only in-memory relation the pipeline executes against.
// It is loaded once at startup and shared across sessions without locking;
// nothing in this module mutates it after construction.
type Table struct {
	rows   []Transaction
	schema *Schema
}

// NewTable finalizes a loaded row set: derives temporal columns where the
// loader has not, and builds the schema registry.
func NewTable(rows []Transaction) *Table {
	for i := range rows {
		if rows[i].DayOfWeek == "" && !rows[i].Timestamp.IsZero() {
			rows[i].deriveTemporal()
		}
	}
	return &Table{rows: rows, schema: buildSchema(rows)}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns a read-only view of row i.
func (t *Table) Row(i int) *Transaction { return &t.rows[i] }

// Schema returns the registry of known values per dimension.
func (t *Table) Schema() *Schema { return t.schema }
