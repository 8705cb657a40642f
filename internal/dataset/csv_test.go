// internal/dataset/csv_test.go
package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV_Success(t *testing.T) {
	csv := `transaction_id,timestamp,amount_inr,state,bank,merchant_category,device_type,network_type,transaction_type,age_group,fraud_flag,transaction_status
TXN1,2024-03-18 09:30:00,250.50,Delhi,HDFC,Grocery,Android,4G,P2M,26-35,0,SUCCESS
TXN2,2024-03-23 22:15:00,1200.00,Maharashtra,SBI,Shopping,iOS,WiFi,P2P,18-25,1,FAILED
`
	table, err := LoadCSV(writeTempCSV(t, csv))
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	first := table.Row(0)
	assert.Equal(t, "TXN1", first.ID)
	assert.Equal(t, 250.50, first.AmountINR)
	assert.Equal(t, "Grocery", first.Category)
	assert.Equal(t, "Android", first.Device)
	assert.False(t, first.IsFraud)
	assert.False(t, first.IsFailed())
	assert.Equal(t, "Monday", first.DayOfWeek)

	second := table.Row(1)
	assert.True(t, second.IsFraud)
	assert.True(t, second.IsFailed())
	assert.Equal(t, "Saturday", second.DayOfWeek)
	assert.Equal(t, 22, second.Hour)
}

func TestLoadCSV_HeaderAliases(t *testing.T) {
	csv := `transaction id,timestamp,amount (INR),sender_state,sender_bank,merchant category,device type,network type,transaction_type,sender age group,is_fraud,status
TXN9,2024-07-01 12:00:00,99.99,Karnataka,ICICI,Food,Web,5G,Recharge,36-45,true,success
`
	table, err := LoadCSV(writeTempCSV(t, csv))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	row := table.Row(0)
	assert.Equal(t, "Karnataka", row.State)
	assert.Equal(t, "ICICI", row.Bank)
	assert.Equal(t, "Food", row.Category)
	assert.Equal(t, 99.99, row.AmountINR)
	assert.True(t, row.IsFraud)
	assert.Equal(t, StatusSuccess, row.Status)
}

func TestLoadCSV_MissingRequiredColumn(t *testing.T) {
	csv := `transaction_id,amount_inr,state,bank
TXN1,10,Delhi,HDFC
`
	_, err := LoadCSV(writeTempCSV(t, csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timestamp")
}

func TestLoadCSV_BadTimestamp(t *testing.T) {
	csv := `transaction_id,timestamp,amount_inr,state,bank
TXN1,not-a-time,10,Delhi,HDFC
`
	_, err := LoadCSV(writeTempCSV(t, csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timestamp")
}

func TestLoadCSV_FileNotFound(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
