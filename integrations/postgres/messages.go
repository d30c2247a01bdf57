package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bmritz/grocerymail/extractor"
	"github.com/jackc/pgx/v5"
)

// PutMessage inserts a message or overwrites the one with the same id
func (db *DB) PutMessage(ctx context.Context, msg extractor.Message) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO messages (id, sender, content, as_of_date, received_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET sender = EXCLUDED.sender,
		    content = EXCLUDED.content,
		    as_of_date = EXCLUDED.as_of_date,
		    received_at = EXCLUDED.received_at
	`, msg.ID, msg.Sender, msg.Body, msg.AsOf, msg.ReceivedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert message: %w", err)
	}
	return nil
}

// MessagesSince returns messages with an as-of date on or after since, oldest first
func (db *DB) MessagesSince(ctx context.Context, since time.Time, limit int) ([]extractor.Message, error) {
	query := `
		SELECT id, sender, content, as_of_date, received_at
		FROM messages
		WHERE as_of_date >= $1
		ORDER BY as_of_date, id
	`
	args := []any{since}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}

	msgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (extractor.Message, error) {
		var msg extractor.Message
		if err := row.Scan(&msg.ID, &msg.Sender, &msg.Body, &msg.AsOf, &msg.ReceivedAt); err != nil {
			return msg, err
		}
		if msg.AsOf != nil {
			asOf := localDate(*msg.AsOf)
			msg.AsOf = &asOf
		}
		return msg, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	return msgs, nil
}
