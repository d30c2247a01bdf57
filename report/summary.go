// Package report builds the month-to-date spending summary for one category.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/bmritz/grocerymail/extractor/common"
	"github.com/shopspring/decimal"
)

// CategoryFilter matches transactions whose description contains any of the
// keywords, ignoring case.
type CategoryFilter struct {
	keywords []string
}

// NewCategoryFilter builds a filter from keywords. Blank keywords are dropped.
func NewCategoryFilter(keywords ...string) CategoryFilter {
	f := CategoryFilter{}
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			f.keywords = append(f.keywords, strings.ToUpper(k))
		}
	}
	return f
}

// ParseKeywords splits a comma separated keyword list.
func ParseKeywords(list string) CategoryFilter {
	return NewCategoryFilter(strings.Split(list, ",")...)
}

// Keywords returns the normalized keywords in their original order.
func (f CategoryFilter) Keywords() []string {
	return append([]string(nil), f.keywords...)
}

// Matches reports whether description contains one of the keywords.
func (f CategoryFilter) Matches(description string) bool {
	upper := strings.ToUpper(description)
	for _, k := range f.keywords {
		if strings.Contains(upper, k) {
			return true
		}
	}
	return false
}

// Detail is one matching transaction as shown in the summary. Amount is
// positive for spending.
type Detail struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Summary is the total spend and its breakdown.
type Summary struct {
	Start   time.Time       `json:"start"`
	End     time.Time       `json:"end"`
	Total   decimal.Decimal `json:"total"`
	Details []Detail        `json:"details"`
}

// Summarize totals the transactions dated in [start, end) that match filter.
// Spending is stored negative, so Total is the negated sum. Details are
// ordered by date, keeping input order for equal dates.
func Summarize(txns []common.Transaction, start, end time.Time, filter CategoryFilter) Summary {
	summary := Summary{Start: start, End: end, Total: decimal.Zero, Details: []Detail{}}
	for _, txn := range txns {
		if txn.Date.Before(start) || !txn.Date.Before(end) {
			continue
		}
		if !filter.Matches(txn.Content) {
			continue
		}
		summary.Total = summary.Total.Sub(txn.Amount)
		summary.Details = append(summary.Details, Detail{
			Date:        txn.Date,
			Description: txn.Content,
			Amount:      txn.Amount.Neg(),
		})
	}
	sort.SliceStable(summary.Details, func(i, j int) bool {
		return summary.Details[i].Date.Before(summary.Details[j].Date)
	})
	return summary
}

// MonthToDate returns the first day of now's month and the first day of the
// following month.
func MonthToDate(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}

// Dedupe drops transactions whose fingerprint was already seen. Consecutive
// daily alerts repeat recent transactions, so the same purchase is stored
// under several messages.
func Dedupe(txns []common.Transaction) []common.Transaction {
	seen := make(map[string]bool, len(txns))
	out := make([]common.Transaction, 0, len(txns))
	for _, txn := range txns {
		id := txn.Fingerprint()
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, txn)
	}
	return out
}
