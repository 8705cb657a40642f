// internal/dataset/sample.go
package dataset

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateSample builds a deterministic synthetic dataset covering the full
// vocabulary. The same (n, seed) always yields the same table, which the
// tests and the dev dataset source rely on.
func GenerateSample(n int, seed int64) *Table {
	rng := rand.New(rand.NewSource(seed))
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	rows := make([]Transaction, 0, n)
	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(rng.Intn(365*24*60)) * time.Minute)
		status := StatusSuccess
		if rng.Float64() < 0.08 {
			status = StatusFailed
		}

		txn := Transaction{
			ID:        fmt.Sprintf("TXN%07d", i+1),
			Timestamp: ts,
			AmountINR: 50 + rng.Float64()*9950,
			State:     States[rng.Intn(len(States))],
			Bank:      Banks[rng.Intn(len(Banks))],
			Category:  Categories[rng.Intn(len(Categories))],
			Device:    Devices[rng.Intn(len(Devices))],
			Network:   Networks[rng.Intn(len(Networks))],
			Type:      TransactionTypes[rng.Intn(len(TransactionTypes))],
			AgeGroup:  AgeGroups[rng.Intn(len(AgeGroups))],
			Status:    status,
			IsFraud:   rng.Float64() < 0.03,
		}
		txn.deriveTemporal()
		rows = append(rows, txn)
	}

	return NewTable(rows)
}
