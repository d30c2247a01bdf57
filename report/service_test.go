package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bmritz/grocerymail/extractor"
	"github.com/bmritz/grocerymail/extractor/common"
	"github.com/bmritz/grocerymail/mail"
	"github.com/bmritz/grocerymail/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []mail.Outgoing
	err  error
}

func (f *fakeSender) Send(ctx context.Context, msg mail.Outgoing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func clock() time.Time {
	return time.Date(2024, time.March, 20, 8, 0, 0, 0, time.Local)
}

func seed(t *testing.T, st *store.MemoryStore) {
	t.Helper()
	ctx := context.Background()

	put := func(id string, asOf time.Time, txns ...common.Transaction) {
		require.NoError(t, st.PutMessage(ctx, extractor.Message{ID: id, AsOf: &asOf}))
		for _, tx := range txns {
			_, err := st.GetOrCreateTransaction(ctx, id, tx.Fingerprint(), tx)
			require.NoError(t, err)
		}
	}

	wholefds := txn(time.March, 3, "Wholefds Grf 10140", "-54.21")
	thyme := txn(time.March, 9, "Fresh Thyme #112", "-12.34")
	gas := txn(time.March, 9, "Shell Oil", "-40.00")
	oldThyme := txn(time.February, 27, "Fresh Thyme #112", "-7.00")

	put("feb", time.Date(2024, time.February, 28, 0, 0, 0, 0, time.Local), oldThyme)
	// Consecutive alerts repeat recent transactions, and early March alerts
	// still list February purchases.
	put("mar4", time.Date(2024, time.March, 4, 0, 0, 0, 0, time.Local), oldThyme, wholefds)
	put("mar10", time.Date(2024, time.March, 10, 0, 0, 0, 0, time.Local), wholefds, thyme, gas)
}

func TestService_Build(t *testing.T) {
	st := store.NewMemoryStore()
	seed(t, st)
	svc := NewService(st, nil, DefaultConfig()).WithClock(clock)

	s, err := svc.Build(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "66.55", s.Total.String())
	require.Len(t, s.Details, 2)
	assert.Equal(t, "Wholefds Grf 10140", s.Details[0].Description)
}

func TestService_FilterFromSettings(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seed(t, st)
	require.NoError(t, st.SetSetting(ctx, SettingKeywords, "shell"))
	svc := NewService(st, nil, DefaultConfig()).WithClock(clock)

	s, err := svc.Build(ctx)

	require.NoError(t, err)
	assert.Equal(t, "40", s.Total.String())
}

func TestService_Send(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seed(t, st)
	require.NoError(t, st.SetSetting(ctx, SettingUserAddress, "me@example.com"))
	require.NoError(t, st.SetSetting(ctx, SettingSenderAddress, "reports@example.com"))
	sender := &fakeSender{}
	svc := NewService(st, sender, DefaultConfig()).WithClock(clock)

	_, err := svc.Send(ctx)

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "me@example.com", sender.sent[0].To)
	assert.Equal(t, "reports@example.com", sender.sent[0].From)
	assert.Equal(t, "Month to Date Groceries spending.", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].Body, "You have spent $66.55 this month on groceries.")
}

func TestService_SendMissingSetting(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	sender := &fakeSender{}
	svc := NewService(st, sender, DefaultConfig()).WithClock(clock)

	_, err := svc.Send(ctx)
	assert.True(t, errors.Is(err, store.ErrSettingNotFound))

	require.NoError(t, st.SetSetting(ctx, SettingUserAddress, "me@example.com"))
	_, err = svc.Send(ctx)
	assert.True(t, errors.Is(err, store.ErrSettingNotFound))
	assert.Empty(t, sender.sent)
}

func TestService_SendInvalidRecipient(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.SetSetting(ctx, SettingUserAddress, "not-an-address"))
	require.NoError(t, st.SetSetting(ctx, SettingSenderAddress, "reports@example.com"))

	_, err := NewService(st, &fakeSender{}, DefaultConfig()).Send(ctx)

	assert.True(t, errors.Is(err, mail.ErrInvalidAddress))
}

func TestService_SendFailure(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.SetSetting(ctx, SettingUserAddress, "me@example.com"))
	require.NoError(t, st.SetSetting(ctx, SettingSenderAddress, "reports@example.com"))
	boom := errors.New("relay down")

	_, err := NewService(st, &fakeSender{err: boom}, DefaultConfig()).WithClock(clock).Send(ctx)

	assert.ErrorIs(t, err, boom)
}

func TestService_NoSender(t *testing.T) {
	_, err := NewService(store.NewMemoryStore(), nil, DefaultConfig()).Send(context.Background())
	assert.Error(t, err)
}
