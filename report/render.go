package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Money formats d as dollars with thousands separators, e.g. $1,234.50.
func Money(d decimal.Decimal) string {
	return printer.Sprintf("$%.2f", d.Round(2).InexactFloat64())
}

// Render returns the subject and body of the summary email.
func Render(s Summary, category, greeting string) (string, string) {
	subject := fmt.Sprintf("Month to Date %s spending.", titleCase(category))

	var b strings.Builder
	fmt.Fprintf(&b, "%s You have spent %s this month on %s.", greeting, Money(s.Total), category)
	b.WriteString("\n\n")

	lines := make([]string, 0, len(s.Details))
	for _, d := range s.Details {
		lines = append(lines, fmt.Sprintf("%s %-35s %s", d.Date.Format("2006-01-02"), d.Description, Money(d.Amount)))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return subject, b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
