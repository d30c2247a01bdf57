package store

import (
	"context"
	"errors"
	"time"

	"github.com/bmritz/grocerymail/extractor"
	"github.com/bmritz/grocerymail/extractor/common"
)

// ErrSettingNotFound is returned when a required setting has never been set.
var ErrSettingNotFound = errors.New("setting not found")

// StoredTransaction is a transaction as persisted under its parent message.
type StoredTransaction struct {
	ID        string
	MessageID string
	common.Transaction
}

// Store defines the persistence operations used by ingestion and reporting.
type Store interface {
	Settings

	// PutMessage inserts msg or overwrites the message with the same ID.
	PutMessage(ctx context.Context, msg extractor.Message) error
	// GetOrCreateTransaction stores txn under messageID with key id unless
	// that key already exists. It reports whether a row was created.
	GetOrCreateTransaction(ctx context.Context, messageID, id string, txn common.Transaction) (bool, error)
	// MessagesSince returns up to limit messages with an as-of date on or
	// after since, oldest first. Messages without an as-of date are excluded.
	MessagesSince(ctx context.Context, since time.Time, limit int) ([]extractor.Message, error)
	// TransactionsForMessages returns the transactions owned by the given messages.
	TransactionsForMessages(ctx context.Context, messageIDs []string) ([]StoredTransaction, error)
}

// Settings is a string key/value store for operator configuration such as
// mail addresses.
type Settings interface {
	GetSetting(ctx context.Context, name string) (string, error)
	SetSetting(ctx context.Context, name, value string) error
}
