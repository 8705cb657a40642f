// internal/dataset/postgres.go
package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/lib/pq"
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// LoadPostgres reads the full transaction dataset from a PostgreSQL table
// into memory. The table name comes from configuration, not user input,
// but is still validated before interpolation.
func LoadPostgres(ctx context.Context, db *sql.DB, table string) (*Table, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid dataset table name %q", table)
	}

	query := fmt.Sprintf(`SELECT transaction_id, timestamp, amount_inr, state, bank,
		category, device, network, transaction_type, age_group,
		transaction_status, fraud_flag FROM %s`, table)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query dataset table: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var txn Transaction
		var fraud sql.NullBool
		if err := rows.Scan(
			&txn.ID, &txn.Timestamp, &txn.AmountINR, &txn.State, &txn.Bank,
			&txn.Category, &txn.Device, &txn.Network, &txn.Type, &txn.AgeGroup,
			&txn.Status, &fraud,
		); err != nil {
			return nil, fmt.Errorf("scan dataset row: %w", err)
		}
		txn.IsFraud = fraud.Valid && fraud.Bool
		txn.deriveTemporal()
		out = append(out, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dataset rows: %w", err)
	}

	return NewTable(out), nil
}
