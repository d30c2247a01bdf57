package extractor

import (
	"testing"
	"time"

	"github.com/bmritz/grocerymail/extractor/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dailyBody = `Your Daily Monitor Email
As of 1/12/19

*Transactions*

01/11

Chase Sapphire

Wholefds Grf 10140

-$54.21

01/11

Checking

-$3.00

01/12

Checking

Kevs Convenience Store

-$2.02

*Top Gainers*
`

const tabularBody = "Recent transactions as of 03/10/19\n\n\n03/09  Checking  Coffee Shop  $4.50\n"

func TestDetect(t *testing.T) {
	viper.Reset()
	assert.Equal(t, LayoutDailyMonitor, Detect(dailyBody))
	assert.Equal(t, LayoutRecentActivity, Detect(tabularBody))
	assert.Equal(t, LayoutNone, Detect("hello"))
	assert.Equal(t, "recent_activity", LayoutRecentActivity.String())
}

func TestTransactions_Tabular(t *testing.T) {
	viper.Reset()
	var txns []common.Transaction
	for txn, err := range Transactions(tabularBody, common.Options{}) {
		require.NoError(t, err)
		txns = append(txns, txn)
	}
	require.Len(t, txns, 1)
	assert.Equal(t, "Coffee Shop", txns[0].Content)
	assert.Equal(t, time.Date(2019, time.March, 9, 0, 0, 0, 0, time.Local), txns[0].Date)
}

func TestTransactions_UnknownLayout(t *testing.T) {
	viper.Reset()
	count := 0
	for range Transactions("nothing to see", common.Options{}) {
		count++
	}
	assert.Zero(t, count)
}

func TestNewMessage(t *testing.T) {
	received := time.Date(2019, time.January, 12, 9, 28, 0, 0, time.UTC)
	msg := NewMessage("alerts@example.com", dailyBody, received)

	assert.Len(t, msg.ID, 32)
	require.NotNil(t, msg.AsOf)
	assert.Equal(t, time.Date(2019, time.January, 12, 0, 0, 0, 0, time.Local), *msg.AsOf)
	assert.Equal(t, received, msg.ReceivedAt)

	again := NewMessage("alerts@example.com", dailyBody, received.Add(time.Hour))
	assert.Equal(t, msg.ID, again.ID, "redelivery keeps the same id")

	other := NewMessage("someone@example.com", dailyBody, received)
	assert.NotEqual(t, msg.ID, other.ID)
}

func TestAsOfDate(t *testing.T) {
	tests := []struct {
		body     string
		expected *time.Time
	}{
		{"As of 1/12/19", ptr(time.Date(2019, time.January, 12, 0, 0, 0, 0, time.Local))},
		{"Recent transactions as of 03/10/19", ptr(time.Date(2019, time.March, 10, 0, 0, 0, 0, time.Local))},
		{"As of 13/45/19", nil},
		{"no date here", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, AsOfDate(tt.body), tt.body)
	}
}

func TestProcess(t *testing.T) {
	viper.Reset()
	msg := NewMessage("alerts@example.com", dailyBody, time.Now())

	result := Process(msg)

	assert.Equal(t, "daily_monitor", result.Layout)
	require.Len(t, result.Transactions, 2)
	assert.Len(t, result.Errors, 1)
	assert.Equal(t, result.Transactions[0].Fingerprint(), result.Transactions[0].ID)
}

func TestProcess_YearFromAsOf(t *testing.T) {
	viper.Reset()
	viper.Set("statement.DAILY_MONITOR.year_from_as_of", true)
	defer viper.Reset()

	result := Process(NewMessage("alerts@example.com", dailyBody, time.Now()))
	require.NotEmpty(t, result.Transactions)
	assert.Equal(t, 2019, result.Transactions[0].Date.Year())
}

// Extracting the same body twice gives the same set of fingerprints.
func TestProcess_Idempotent(t *testing.T) {
	viper.Reset()
	msg := NewMessage("alerts@example.com", dailyBody, time.Now())

	ids := func() []string {
		var out []string
		for _, r := range Process(msg).Transactions {
			out = append(out, r.ID)
		}
		return out
	}
	assert.Equal(t, ids(), ids())
}

func TestCreateFinalOutput_TransactionOnly(t *testing.T) {
	viper.Reset()
	result := Process(NewMessage("alerts@example.com", tabularBody, time.Now()))

	output := CreateFinalOutput(result, true, false)

	records, ok := output.([]Record)
	require.True(t, ok)
	assert.Len(t, records, 1)
}

func TestCreateFinalOutput_MessageOnly(t *testing.T) {
	viper.Reset()
	result := Process(NewMessage("alerts@example.com", tabularBody, time.Now()))

	output, ok := CreateFinalOutput(result, false, true).(map[string]interface{})
	require.True(t, ok)

	assert.Equal(t, "alerts@example.com", output["sender"])
	assert.Equal(t, "2019-03-10", output["as_of"])
	_, exists := output["transactions"]
	assert.False(t, exists)
}

func TestCreateFinalOutput_Full(t *testing.T) {
	viper.Reset()
	result := Process(NewMessage("alerts@example.com", dailyBody, time.Now()))

	output, ok := CreateFinalOutput(result, false, false).(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, output, "transactions")
	assert.Contains(t, output, "errors")
}

func ptr(t time.Time) *time.Time { return &t }
