// internal/dataset/csv.go
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Column aliases seen across published exports of the dataset.
var columnAliases = map[string]string{
	"transaction id":     "transaction_id",
	"sender_state":       "state",
	"sender state":       "state",
	"sender_bank":        "bank",
	"sender bank":        "bank",
	"merchant_category":  "category",
	"merchant category":  "category",
	"device_type":        "device",
	"device type":        "device",
	"network_type":       "network",
	"network type":       "network",
	"sender_age_group":   "age_group",
	"sender age group":   "age_group",
	"transaction status": "transaction_status",
	"status":             "transaction_status",
	"amount (inr)":       "amount_inr",
	"amount":             "amount_inr",
	"fraud flag":         "fraud_flag",
	"is_fraud":           "fraud_flag",
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006 15:04",
}

// LoadCSV reads a transaction dataset from a CSV file and returns the
// finalized table. Unknown columns are ignored; missing required columns
// are an error.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeColumn(h)
		if canonical, ok := columnAliases[name]; ok {
			name = canonical
		}
		idx[name] = i
	}
	for _, required := range []string{"timestamp", "amount_inr", "state", "bank"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("dataset csv missing required column %q", required)
		}
	}

	var rows []Transaction
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line+1, err)
		}
		line++

		txn, err := recordToTransaction(record, idx)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		rows = append(rows, txn)
	}

	return NewTable(rows), nil
}

func normalizeColumn(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func field(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func recordToTransaction(record []string, idx map[string]int) (Transaction, error) {
	ts, err := parseTimestamp(field(record, idx, "timestamp"))
	if err != nil {
		return Transaction{}, err
	}

	amount, err := strconv.ParseFloat(field(record, idx, "amount_inr"), 64)
	if err != nil {
		return Transaction{}, fmt.Errorf("parse amount: %w", err)
	}

	txn := Transaction{
		ID:        field(record, idx, "transaction_id"),
		Timestamp: ts,
		AmountINR: amount,
		State:     field(record, idx, "state"),
		Bank:      field(record, idx, "bank"),
		Category:  field(record, idx, "category"),
		Device:    field(record, idx, "device"),
		Network:   field(record, idx, "network"),
		Type:      field(record, idx, "transaction_type"),
		AgeGroup:  field(record, idx, "age_group"),
		Status:    strings.ToUpper(field(record, idx, "transaction_status")),
		IsFraud:   parseFlag(field(record, idx, "fraud_flag")),
	}
	if txn.Status == "" {
		txn.Status = StatusSuccess
	}
	txn.deriveTemporal()
	return txn, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q", s)
}

func parseFlag(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}
