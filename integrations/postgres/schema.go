package postgres

import (
	"context"
	"fmt"
)

const ddl = `
-- One row per alert email, keyed by the fingerprint of sender + body
CREATE TABLE IF NOT EXISTS messages (
    id CHAR(32) PRIMARY KEY,
    sender TEXT NOT NULL,
    content TEXT NOT NULL,
    as_of_date DATE,
    received_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Transactions belong to the message they were parsed from
CREATE TABLE IF NOT EXISTS transactions (
    message_id CHAR(32) NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
    id CHAR(32) NOT NULL,
    date DATE NOT NULL,
    account TEXT NOT NULL,
    content TEXT NOT NULL,
    amount NUMERIC NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW(),

    PRIMARY KEY (message_id, id)
);

CREATE TABLE IF NOT EXISTS settings (
    name VARCHAR(255) PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMPTZ DEFAULT NOW()
);

-- Indexes for the month to date report
CREATE INDEX IF NOT EXISTS idx_messages_as_of_date ON messages(as_of_date);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
`

// EnsureSchema creates tables if they don't exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
