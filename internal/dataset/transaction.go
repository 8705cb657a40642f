// internal/dataset/transaction.go
package dataset

import (
	"time"

	"github.com/Ananya-0081/insightx-upi/internal/models"
)

// Transaction is one typed row of the UPI dataset. Hour, DayOfWeek and
// Month are derived from Timestamp once at load so aggregation never
// touches time parsing.
type Transaction struct {
	ID        string
	Timestamp time.Time
	AmountINR float64
	State     string
	Bank      string
	Category  string
	Device    string
	Network   string
	Type      string
	AgeGroup  string
	Status    string
	IsFraud   bool

	Hour      int
	DayOfWeek string
	Month     string
}

// IsFailed reports whether the transaction did not complete.
func (t *Transaction) IsFailed() bool { return t.Status == StatusFailed }

// deriveTemporal fills the derived calendar columns from Timestamp.
func (t *Transaction) deriveTemporal() {
	t.Hour = t.Timestamp.Hour()
	t.DayOfWeek = t.Timestamp.Weekday().String()
	t.Month = t.Timestamp.Month().String()
}

// DimensionValue returns the row's value for a dimension as a group key.
// Unknown dimensions return the empty string.
func (t *Transaction) DimensionValue(d models.Dimension) string {
	switch d {
	case models.DimState:
		return t.State
	case models.DimBank:
		return t.Bank
	case models.DimCategory:
		return t.Category
	case models.DimDevice:
		return t.Device
	case models.DimNetwork:
		return t.Network
	case models.DimTransactionType:
		return t.Type
	case models.DimAgeGroup:
		return t.AgeGroup
	case models.DimHour:
		return HourName(t.Hour)
	case models.DimDayOfWeek:
		return t.DayOfWeek
	case models.DimMonth:
		return t.Month
	case models.DimTransactionStatus:
		return t.Status
	}
	return ""
}
