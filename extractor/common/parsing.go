package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var amountReplacer = strings.NewReplacer("$", "", ",", "")

// ParseAmount strips dollar signs and thousands separators and parses the rest
// as a signed decimal. "-$1,234.56" becomes -1234.56.
func ParseAmount(text string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(amountReplacer.Replace(text))
	amount, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	return amount, nil
}

// MonthDay parses an "MM/DD" token and places it in the given year.
// Out of range values such as 02/30 are rejected instead of normalized.
func MonthDay(token string, year int) (time.Time, error) {
	month, day, ok := strings.Cut(strings.TrimSpace(token), "/")
	if !ok {
		return time.Time{}, fmt.Errorf("date %q is not MM/DD", token)
	}
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: bad month: %w", token, err)
	}
	d, err := strconv.Atoi(strings.TrimSpace(day))
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: bad day: %w", token, err)
	}

	date := time.Date(year, time.Month(m), d, 0, 0, 0, 0, time.Local)
	if date.Month() != time.Month(m) || date.Day() != d {
		return time.Time{}, fmt.Errorf("date %q does not exist in %d", token, year)
	}
	return date, nil
}

// ParseDate parses a date string using a layout in the local time zone.
func ParseDate(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, time.Local)
}
