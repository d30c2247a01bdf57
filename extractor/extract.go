// Package extractor turns forwarded alert emails into transactions. It picks
// the layout a message body is written in and hands the body to the matching
// layout package.
package extractor

import (
	"iter"

	"github.com/bmritz/grocerymail/extractor/common"
	"github.com/bmritz/grocerymail/extractor/daily_monitor"
	"github.com/bmritz/grocerymail/extractor/recent_activity"
	"github.com/spf13/viper"
)

// Layout identifies one of the supported alert formats.
type Layout int

const (
	LayoutNone Layout = iota
	LayoutDailyMonitor
	LayoutRecentActivity
)

func (l Layout) String() string {
	switch l {
	case LayoutDailyMonitor:
		return "daily_monitor"
	case LayoutRecentActivity:
		return "recent_activity"
	default:
		return "none"
	}
}

type layoutParser struct {
	layout  Layout
	match   func(string) bool
	extract func(string, common.Options) iter.Seq2[common.Transaction, error]
}

// Checked in order. The tabular header is specific enough to win when both
// layouts appear in one body.
var parsers = []layoutParser{
	{LayoutRecentActivity, recent_activity.Match, recent_activity.Extract},
	{LayoutDailyMonitor, daily_monitor.Match, daily_monitor.Extract},
}

// Detect reports which layout body is written in.
func Detect(body string) Layout {
	for _, p := range parsers {
		if p.match(body) {
			return p.layout
		}
	}
	return LayoutNone
}

// Transactions yields the transactions in body in document order. A non-nil
// error marks a unit that could not be parsed; ranging may continue past it.
// A body in no known layout yields nothing.
func Transactions(body string, opts common.Options) iter.Seq2[common.Transaction, error] {
	for _, p := range parsers {
		if p.match(body) {
			return p.extract(body, opts)
		}
	}
	return func(func(common.Transaction, error) bool) {}
}

// MessageTransactions extracts the transactions of msg using its as-of date
// and the configured year policy.
func MessageTransactions(msg Message) iter.Seq2[common.Transaction, error] {
	return Transactions(msg.Body, common.Options{
		AsOf:         msg.AsOf,
		YearFromAsOf: viper.GetBool("statement.DAILY_MONITOR.year_from_as_of"),
	})
}
