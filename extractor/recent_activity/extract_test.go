package recent_activity

import (
	"errors"
	"testing"
	"time"

	"github.com/bmritz/grocerymail/extractor/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(body string) ([]common.Transaction, []error) {
	var txns []common.Transaction
	var errs []error
	for txn, err := range Extract(body, common.Options{}) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		txns = append(txns, txn)
	}
	return txns, errs
}

func TestExtract_SingleRow(t *testing.T) {
	viper.Reset()
	body := "Recent transactions as of 03/10/19\n\n\n03/09  Checking  Coffee Shop  $4.50\n"

	txns, errs := collect(body)

	require.Empty(t, errs)
	require.Len(t, txns, 1)
	assert.Equal(t, time.Date(2019, time.March, 9, 0, 0, 0, 0, time.Local), txns[0].Date)
	assert.Equal(t, "Checking", txns[0].Account)
	assert.Equal(t, "Coffee Shop", txns[0].Content)
	assert.Equal(t, "4.5", txns[0].Amount.String())
}

const tabularAlert = `Hi there,

Recent transactions as of 12/31/18

Date   Account        Description               Amount
12/29  Visa Rewards   MARTIN'S SUPERMARKET 12   -$86.10
12/30  Visa Rewards   Single Space Name Here    -$1,200.00
12/31  Checking       Payroll Deposit           $2,500.00

Net worth: $10.00
01/01  Checking  Should Not Be Read  -$1.00
`

func TestExtract_Table(t *testing.T) {
	viper.Reset()

	txns, errs := collect(tabularAlert)

	require.Empty(t, errs)
	require.Len(t, txns, 3)
	assert.Equal(t, "MARTIN'S SUPERMARKET 12", txns[0].Content)
	assert.Equal(t, 2018, txns[0].Date.Year())
	assert.Equal(t, "Single Space Name Here", txns[1].Content)
	assert.Equal(t, "-1200", txns[1].Amount.String())
	assert.Equal(t, "2500", txns[2].Amount.String())
}

func TestExtract_MalformedRowEndsTable(t *testing.T) {
	viper.Reset()
	body := "Recent transactions as of 03/10/19\n\nDate  Account  Description  Amount\n" +
		"03/08  Checking  Fresh Thyme  -$4.50\n" +
		"03/09  Checking -$3.00\n" +
		"03/10  Checking  Down to Earth  -$9.99\n"

	txns, errs := collect(body)

	require.Len(t, txns, 1)
	assert.Equal(t, "Fresh Thyme", txns[0].Content)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], common.ErrUnparsableUnit))
}

func TestExtract_BadAmountContinues(t *testing.T) {
	viper.Reset()
	body := "Recent transactions as of 03/10/19\n\n\n" +
		"03/08  Checking  Fresh Thyme  pending\n" +
		"03/09  Checking  Down to Earth  -$9.99\n"

	txns, errs := collect(body)

	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], common.ErrInvalidAmount))
	require.Len(t, txns, 1)
	assert.Equal(t, "Down to Earth", txns[0].Content)
}

func TestExtract_NoHeader(t *testing.T) {
	viper.Reset()
	txns, errs := collect("03/09  Checking  Coffee Shop  $4.50")
	assert.Empty(t, txns)
	assert.Empty(t, errs)
}

func TestExtract_HeaderAtEnd(t *testing.T) {
	viper.Reset()
	txns, errs := collect("Recent transactions as of 03/10/19")
	assert.Empty(t, txns)
	assert.Empty(t, errs)
}

func TestMatch(t *testing.T) {
	viper.Reset()
	assert.True(t, Match(tabularAlert))
	assert.False(t, Match("*Transactions*\n01/15"))
}

func TestFullYear(t *testing.T) {
	assert.Equal(t, 2019, fullYear(19))
	assert.Equal(t, 2068, fullYear(68))
	assert.Equal(t, 1969, fullYear(69))
}
