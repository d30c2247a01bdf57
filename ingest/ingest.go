// Package ingest stores alert emails and the transactions parsed out of them.
// Storing is keyed by content fingerprint, so ingesting the same email any
// number of times leaves the store unchanged after the first time.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmritz/grocerymail/extractor"
	"github.com/bmritz/grocerymail/logger"
	"github.com/bmritz/grocerymail/mail"
	"github.com/bmritz/grocerymail/store"
	"github.com/google/uuid"
)

// Result tracks the outcome of an ingest run.
type Result struct {
	RunID      string   `json:"run_id"`
	Messages   int      `json:"messages"`
	Created    int      `json:"created"`
	Duplicates int      `json:"duplicates"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

func (r *Result) add(other Result) {
	r.Messages += other.Messages
	r.Created += other.Created
	r.Duplicates += other.Duplicates
	r.Failed += other.Failed
	r.Errors = append(r.Errors, other.Errors...)
}

// Ingester writes messages and their transactions to a store.
type Ingester struct {
	store store.Store
	now   func() time.Time
}

// New creates an Ingester backed by st.
func New(st store.Store) *Ingester {
	return &Ingester{store: st, now: time.Now}
}

// Message stores one message and every transaction that parses out of its
// body. Units that fail to parse are logged and counted, not returned; only
// storage errors abort.
func (in *Ingester) Message(ctx context.Context, sender, body string) (Result, error) {
	msg := extractor.NewMessage(sender, body, in.now())
	log := logger.WithFields(logger.FromContext(ctx), map[string]interface{}{
		"message_id": msg.ID,
		"sender":     sender,
	})

	if err := in.store.PutMessage(ctx, msg); err != nil {
		return Result{}, fmt.Errorf("failed to store message: %w", err)
	}
	log.Info().Msg("received message")

	result := Result{Messages: 1}
	for txn, err := range extractor.MessageTransactions(msg) {
		if err != nil {
			log.Error().Err(err).Msg("transaction not parsable")
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", msg.ID, err))
			continue
		}

		created, err := in.store.GetOrCreateTransaction(ctx, msg.ID, txn.Fingerprint(), txn)
		if err != nil {
			return result, fmt.Errorf("failed to store transaction: %w", err)
		}
		if created {
			result.Created++
		} else {
			result.Duplicates++
		}
	}

	log.Debug().
		Int("created", result.Created).
		Int("duplicates", result.Duplicates).
		Int("failed", result.Failed).
		Msg("message ingested")
	return result, nil
}

// Raw parses a raw RFC 5322 email and ingests its text body.
func (in *Ingester) Raw(ctx context.Context, r io.Reader) (Result, error) {
	email, err := mail.ParseInbound(r)
	if err != nil {
		return Result{}, err
	}
	return in.Message(ctx, email.Sender, email.Text)
}

// File ingests a single .eml file.
func (in *Ingester) File(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return in.Raw(ctx, f)
}

// Path ingests a file, or every .eml file in a directory. A file that cannot
// be read is counted as failed and the run continues.
func (in *Ingester) Path(ctx context.Context, path string) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}
	log := logger.FromContext(ctx).With().Str("run_id", result.RunID).Logger()
	ctx = logger.WithContext(ctx, log)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	files := []string{path}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory: %w", err)
		}
		files = files[:0]
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".eml") {
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
		log.Info().Str("dir", path).Int("files", len(files)).Msg("scanning")
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		r, err := in.File(ctx, file)
		if err != nil {
			log.Error().Err(err).Str("file", file).Msg("failed to ingest")
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", filepath.Base(file), err))
			continue
		}
		result.add(r)
	}
	return result, nil
}
