package common

import (
	"errors"
	"time"

	"github.com/bmritz/grocerymail/fingerprint"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnparsableUnit marks a transaction block or row that does not have the expected shape.
	ErrUnparsableUnit = errors.New("transaction not parsable")
	// ErrInvalidAmount marks an amount string that is not a number after normalization.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Transaction is a single dated entry parsed out of an alert body.
// Amounts are signed: spending is negative.
type Transaction struct {
	Date    time.Time       `json:"date"`
	Account string          `json:"account"`
	Content string          `json:"content"`
	Amount  decimal.Decimal `json:"amount"`
}

// Fields returns the values that identify t.
func (t Transaction) Fields() fingerprint.Fields {
	return fingerprint.Fields{
		{Key: "date", Value: t.Date},
		{Key: "account", Value: t.Account},
		{Key: "content", Value: t.Content},
		{Key: "amount", Value: t.Amount},
	}
}

// Fingerprint returns the dedup key of t.
func (t Transaction) Fingerprint() string {
	// Every field is a supported scalar, so Of cannot fail here.
	id, _ := fingerprint.Of(t.Fields())
	return id
}

// Section is a delimiter line together with the text that follows it.
type Section struct {
	Label string
	Body  string
}

// Options tune how extractors resolve ambiguous data.
type Options struct {
	// Now supplies the current time. Daily monitor alerts carry no year, so
	// their transactions are dated in Now's year.
	Now func() time.Time
	// AsOf is the reference date of the message, when one was found.
	AsOf *time.Time
	// YearFromAsOf dates daily monitor transactions in AsOf's year instead of
	// the current year.
	YearFromAsOf bool
}

// CurrentTime returns o.Now() or time.Now when unset.
func (o Options) CurrentTime() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}
