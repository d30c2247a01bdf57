package ingest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bmritz/grocerymail/logger"
	"github.com/bmritz/grocerymail/store"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alertBody = "As of 3/10/19\n\n*Transactions*\n\n03/09\n\nChecking\n\nFresh Thyme #112\n\n-$12.34\n\n" +
	"03/09\n\nChecking\n\n-$3.00\n\n03/10\n\nVisa\n\nWholefds Grf 10140\n\n-$54.21\n"

const rawEmail = "From: alerts@example.com\r\nSubject: Daily Monitor\r\n\r\n" +
	"Recent transactions as of 03/10/19\r\n\r\n\r\n03/09  Checking  Coffee Shop  -$4.50\r\n"

func testContext() (context.Context, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return logger.WithContext(context.Background(), logger.NewWithWriter(buf)), buf
}

func TestMessage(t *testing.T) {
	viper.Reset()
	ctx, logs := testContext()
	st := store.NewMemoryStore()

	result, err := New(st).Message(ctx, "alerts@example.com", alertBody)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Messages)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, result.Errors, 1)
	assert.Contains(t, logs.String(), "transaction not parsable")
}

func TestMessage_LogsCarryMessageFields(t *testing.T) {
	viper.Reset()
	ctx, logs := testContext()
	st := store.NewMemoryStore()

	_, err := New(st).Message(ctx, "alerts@example.com", alertBody)
	require.NoError(t, err)

	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		if strings.Contains(line, "received message") || strings.Contains(line, "transaction not parsable") {
			assert.Contains(t, line, `"message_id":"`)
			assert.Contains(t, line, `"sender":"alerts@example.com"`)
		}
	}
	assert.Contains(t, logs.String(), "received message")
}

func TestMessage_Idempotent(t *testing.T) {
	viper.Reset()
	ctx, _ := testContext()
	st := store.NewMemoryStore()
	in := New(st)

	_, err := in.Message(ctx, "alerts@example.com", alertBody)
	require.NoError(t, err)
	second, err := in.Message(ctx, "alerts@example.com", alertBody)
	require.NoError(t, err)

	assert.Zero(t, second.Created)
	assert.Equal(t, 2, second.Duplicates)

	msgs, err := st.MessagesSince(ctx, time0(), 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	txns, err := st.TransactionsForMessages(ctx, []string{msgs[0].ID})
	require.NoError(t, err)
	assert.Len(t, txns, 2)
}

func TestRaw(t *testing.T) {
	viper.Reset()
	ctx, _ := testContext()
	st := store.NewMemoryStore()

	result, err := New(st).Raw(ctx, strings.NewReader(rawEmail))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	msgs, err := st.MessagesSince(ctx, time0(), 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "alerts@example.com", msgs[0].Sender)
	assert.Equal(t, 2019, msgs[0].AsOf.Year())
}

func TestPath_Directory(t *testing.T) {
	viper.Reset()
	ctx, _ := testContext()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.eml"), []byte(rawEmail), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.EML"), []byte(rawEmail), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.eml"), []byte("From: x@example.com\r\n\r\n"), 0o600))

	result, err := New(store.NewMemoryStore()).Path(ctx, dir)

	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 2, result.Messages)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 1, result.Failed)
}

func TestPath_Missing(t *testing.T) {
	ctx, _ := testContext()
	_, err := New(store.NewMemoryStore()).Path(ctx, filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
