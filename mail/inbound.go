// Package mail adapts raw RFC 5322 messages in and plain text summaries out.
package mail

import (
	"fmt"
	"io"
	"strings"

	"github.com/jhillyerd/enmime"
)

// Inbound is the part of a received email the extractor cares about.
type Inbound struct {
	Sender  string
	Subject string
	Text    string
}

// ParseInbound reads a raw email and keeps its sender and text/plain body.
// HTML alternatives and attachments are ignored.
func ParseInbound(r io.Reader) (Inbound, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return Inbound{}, fmt.Errorf("failed to read email: %w", err)
	}
	in := Inbound{
		Sender:  strings.TrimSpace(env.GetHeader("From")),
		Subject: env.GetHeader("Subject"),
		Text:    normalizeNewlines(env.Text),
	}
	if in.Text == "" {
		return in, fmt.Errorf("email from %q has no text/plain body", in.Sender)
	}
	return in, nil
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
