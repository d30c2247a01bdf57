// Package daily_monitor reads the "daily monitor" alert layout, where
// transactions live in a section titled like *Transactions* and each one is a
// MM/DD line followed by account, description and amount lines.
package daily_monitor

import (
	"fmt"
	"iter"
	"regexp"
	"strings"

	"github.com/bmritz/grocerymail/extractor/common"
	"github.com/spf13/viper"
)

const (
	defaultSectionDelimiter     = `^\*.*\*$`
	defaultTransactionDelimiter = `^[0-9]{1,2}/[0-9]{1,2}$`
	defaultTransactionsTitle    = "Transactions"
)

type config struct {
	SectionDelimiter     *regexp.Regexp
	TransactionDelimiter *regexp.Regexp
	TransactionsTitle    string
}

func loadConfig() config {
	title := viper.GetString("statement.DAILY_MONITOR.patterns.transactions_title")
	if title == "" {
		title = defaultTransactionsTitle
	}
	return config{
		SectionDelimiter:     common.Pattern("statement.DAILY_MONITOR.patterns.section_delimiter", defaultSectionDelimiter),
		TransactionDelimiter: common.Pattern("statement.DAILY_MONITOR.patterns.transaction_delimiter", defaultTransactionDelimiter),
		TransactionsTitle:    title,
	}
}

// Match reports whether body has a transactions section in this layout.
func Match(body string) bool {
	cfg := loadConfig()
	for section := range common.Sections(body, common.PatternDelimiter(cfg.SectionDelimiter)) {
		if strings.Contains(section.Label, cfg.TransactionsTitle) {
			return true
		}
	}
	return false
}

// Extract yields the transactions of every transactions section in body.
// A block that is not exactly account/description/amount is yielded as an
// error and extraction moves on to the next block.
func Extract(body string, opts common.Options) iter.Seq2[common.Transaction, error] {
	cfg := loadConfig()
	year := opts.CurrentTime().Year()
	if opts.YearFromAsOf && opts.AsOf != nil {
		year = opts.AsOf.Year()
	}

	return func(yield func(common.Transaction, error) bool) {
		for section := range common.Sections(body, common.PatternDelimiter(cfg.SectionDelimiter)) {
			if !strings.Contains(section.Label, cfg.TransactionsTitle) {
				continue
			}
			for block := range common.Sections(section.Body, common.PatternDelimiter(cfg.TransactionDelimiter)) {
				if !yield(parseBlock(block, year)) {
					return
				}
			}
		}
	}
}

func parseBlock(block common.Section, year int) (common.Transaction, error) {
	date, err := common.MonthDay(block.Label, year)
	if err != nil {
		return common.Transaction{}, fmt.Errorf("%w: %v", common.ErrUnparsableUnit, err)
	}

	lines := common.NonBlankLines(block.Body)
	if len(lines) != 3 {
		return common.Transaction{}, fmt.Errorf("%w: %s has %d lines, want 3:\n%s",
			common.ErrUnparsableUnit, strings.TrimSpace(block.Label), len(lines), block.Body)
	}

	amount, err := common.ParseAmount(lines[2])
	if err != nil {
		return common.Transaction{}, err
	}

	return common.Transaction{
		Date:    date,
		Account: strings.TrimSpace(lines[0]),
		Content: strings.TrimSpace(lines[1]),
		Amount:  amount,
	}, nil
}
