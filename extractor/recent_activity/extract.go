// Package recent_activity reads the tabular alert layout that starts with a
// "Recent transactions as of MM/DD/YY" header followed by one transaction per
// line, with columns separated by runs of whitespace.
package recent_activity

import (
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"

	"github.com/bmritz/grocerymail/extractor/common"
)

const (
	defaultHeader         = `Recent transactions as of ([0-9]{2})/([0-9]{2})/([0-9]{2})`
	defaultFieldSeparator = `\s{2,}`

	// The header is followed by two lines (a blank and the column titles in
	// the alerts we receive) before the first transaction row.
	linesAfterHeader = 2
)

type config struct {
	Header         *regexp.Regexp
	FieldSeparator *regexp.Regexp
}

func loadConfig() config {
	return config{
		Header:         common.Pattern("statement.RECENT_ACTIVITY.patterns.header", defaultHeader),
		FieldSeparator: common.Pattern("statement.RECENT_ACTIVITY.patterns.field_separator", defaultFieldSeparator),
	}
}

// Match reports whether body carries the recent transactions header.
func Match(body string) bool {
	return loadConfig().Header.MatchString(body)
}

// Extract yields the rows under the first header in body, dated with the
// header's two digit year. Rows end at the first blank line.
//
// Unlike the daily monitor layout, a row that does not split into exactly
// four columns ends the table: the error is yielded and nothing after it is
// read, since a misaligned row usually means the column layout changed.
func Extract(body string, _ common.Options) iter.Seq2[common.Transaction, error] {
	cfg := loadConfig()

	return func(yield func(common.Transaction, error) bool) {
		lines := strings.Split(body, "\n")

		start, year := -1, 0
		for i, line := range lines {
			m := cfg.Header.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			yy, err := strconv.Atoi(m[len(m)-1])
			if err != nil {
				return
			}
			start, year = i+1+linesAfterHeader, fullYear(yy)
			break
		}
		if start < 0 {
			return
		}

		for _, line := range lines[min(start, len(lines)):] {
			if strings.TrimSpace(line) == "" {
				return
			}
			fields := cfg.FieldSeparator.Split(strings.TrimSpace(line), -1)
			if len(fields) != 4 {
				yield(common.Transaction{}, fmt.Errorf("%w: %d columns, want 4: %q",
					common.ErrUnparsableUnit, len(fields), line))
				return
			}
			if !yield(parseRow(fields, year)) {
				return
			}
		}
	}
}

func parseRow(fields []string, year int) (common.Transaction, error) {
	date, err := common.MonthDay(fields[0], year)
	if err != nil {
		return common.Transaction{}, fmt.Errorf("%w: %v", common.ErrUnparsableUnit, err)
	}
	amount, err := common.ParseAmount(fields[3])
	if err != nil {
		return common.Transaction{}, err
	}
	return common.Transaction{
		Date:    date,
		Account: strings.TrimSpace(fields[1]),
		Content: strings.TrimSpace(fields[2]),
		Amount:  amount,
	}, nil
}

// fullYear maps a two digit year the way time.Parse does for "06".
func fullYear(yy int) int {
	if yy >= 69 {
		return 1900 + yy
	}
	return 2000 + yy
}
