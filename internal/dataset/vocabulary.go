// internal/dataset/vocabulary.go
package dataset

// Canonical value sets for the shipped UPI transaction schema. Loaders
// normalize raw values against these; the schema registry built from a
// loaded table is the union of what the data actually contains.

var States = []string{
	"Andhra Pradesh", "Bihar", "Delhi", "Gujarat", "Karnataka",
	"Maharashtra", "Rajasthan", "Tamil Nadu", "Uttar Pradesh", "West Bengal",
}

var Banks = []string{
	"Axis", "HDFC", "ICICI", "IndusInd", "Kotak", "PNB", "SBI", "Yes Bank",
}

var Categories = []string{
	"Education", "Entertainment", "Food", "Fuel", "Grocery",
	"Healthcare", "Rent", "Shopping", "Travel", "Utilities",
}

var AgeGroups = []string{"18-25", "26-35", "36-45", "46-55", "56+"}

var Devices = []string{"Android", "iOS", "Web"}

var Networks = []string{"3G", "4G", "5G", "WiFi"}

var TransactionTypes = []string{"P2P", "P2M", "Bill Payment", "Recharge"}

const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

var Statuses = []string{StatusSuccess, StatusFailed}

// DayNames in calendar order; trend results over day_of_week follow this
// sequence, not value order.
var DayNames = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// MonthNames in calendar order.
var MonthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// hourNames avoids a strconv per row when grouping by hour.
var hourNames = [24]string{
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11",
	"12", "13", "14", "15", "16", "17", "18", "19", "20", "21", "22", "23",
}

// HourName formats an hour-of-day as its group key.
func HourName(h int) string {
	if h < 0 || h > 23 {
		return ""
	}
	return hourNames[h]
}
