package extractor

import (
	"regexp"
	"time"

	"github.com/bmritz/grocerymail/extractor/common"
	"github.com/bmritz/grocerymail/fingerprint"
)

var asOfPattern = regexp.MustCompile(`(?i)\bas of ([0-9]{1,2}/[0-9]{1,2}/[0-9]{1,2})\b`)

// Message is one ingested alert email. ID is derived from the sender and the
// plaintext body, so a redelivered email gets the same ID.
type Message struct {
	ID         string     `json:"id"`
	Sender     string     `json:"sender"`
	Body       string     `json:"body"`
	AsOf       *time.Time `json:"as_of,omitempty"`
	ReceivedAt time.Time  `json:"received_at"`
}

// NewMessage builds a Message from a sender and plaintext body.
func NewMessage(sender, body string, receivedAt time.Time) Message {
	return Message{
		ID:         fingerprint.Bytes(sender, body),
		Sender:     sender,
		Body:       body,
		AsOf:       AsOfDate(body),
		ReceivedAt: receivedAt,
	}
}

// AsOfDate returns the first "As of M/D/YY" date in body, or nil.
func AsOfDate(body string) *time.Time {
	m := asOfPattern.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	date, err := common.ParseDate("1/2/06", m[1])
	if err != nil {
		return nil
	}
	return &date
}
