package postgres

import (
	"context"
	"fmt"

	"github.com/bmritz/grocerymail/extractor/common"
	"github.com/bmritz/grocerymail/store"
	"github.com/jackc/pgx/v5"
)

// GetOrCreateTransaction inserts a transaction under its message unless the
// (message, fingerprint) pair already exists
func (db *DB) GetOrCreateTransaction(ctx context.Context, messageID, id string, txn common.Transaction) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `
		INSERT INTO transactions (message_id, id, date, account, content, amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (message_id, id) DO NOTHING
	`, messageID, id, txn.Date, txn.Account, txn.Content, txn.Amount)
	if err != nil {
		return false, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// TransactionsForMessages returns the transactions owned by the given messages
func (db *DB) TransactionsForMessages(ctx context.Context, messageIDs []string) ([]store.StoredTransaction, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, message_id, date, account, content, amount
		FROM transactions
		WHERE message_id = ANY($1)
		ORDER BY created_at, message_id, id
	`, messageIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}

	txns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.StoredTransaction, error) {
		var st store.StoredTransaction
		if err := row.Scan(&st.ID, &st.MessageID, &st.Date, &st.Account, &st.Content, &st.Amount); err != nil {
			return st, err
		}
		st.Date = localDate(st.Date)
		return st, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return txns, nil
}
