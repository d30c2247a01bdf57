package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bmritz/grocerymail/extractor/common"
	"github.com/bmritz/grocerymail/logger"
	"github.com/bmritz/grocerymail/mail"
	"github.com/bmritz/grocerymail/store"
)

// Setting names read from the settings store.
const (
	SettingUserAddress   = "user_address"
	SettingSenderAddress = "sender_address"
	SettingKeywords      = "category_keywords"
)

// Config holds the report options that come from the config file.
type Config struct {
	Category     string
	Keywords     string
	Greeting     string
	MessageLimit int
}

// DefaultConfig returns the grocery report used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Category:     "groceries",
		Keywords:     "Martin's Supermarket,Fresh Thyme,Wholefds,Down to Earth",
		Greeting:     "Good morning!",
		MessageLimit: 30,
	}
}

// Service builds and mails the month-to-date summary.
type Service struct {
	store  store.Store
	sender mail.Sender
	config Config
	now    func() time.Time
}

// NewService creates a report service. sender may be nil when only Build is used.
func NewService(st store.Store, sender mail.Sender, cfg Config) *Service {
	return &Service{store: st, sender: sender, config: cfg, now: time.Now}
}

// WithClock replaces the clock used to pick the current month.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Filter returns the category filter, preferring keywords from the settings
// store over the config file.
func (s *Service) Filter(ctx context.Context) (CategoryFilter, error) {
	keywords, err := s.store.GetSetting(ctx, SettingKeywords)
	switch {
	case err == nil:
		return ParseKeywords(keywords), nil
	case errors.Is(err, store.ErrSettingNotFound):
		return ParseKeywords(s.config.Keywords), nil
	default:
		return CategoryFilter{}, err
	}
}

// Build collects this month's messages, dedupes their transactions and
// summarizes the configured category.
func (s *Service) Build(ctx context.Context) (Summary, error) {
	log := logger.FromContext(ctx)
	start, end := MonthToDate(s.now())

	filter, err := s.Filter(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load category keywords: %w", err)
	}
	if len(filter.Keywords()) == 0 {
		log.Warn().Str("category", s.config.Category).Msg("no category keywords configured, summary will be empty")
	}

	msgs, err := s.store.MessagesSince(ctx, start, s.config.MessageLimit)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to query messages: %w", err)
	}
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}

	stored, err := s.store.TransactionsForMessages(ctx, ids)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to query transactions: %w", err)
	}
	txns := make([]common.Transaction, 0, len(stored))
	for _, st := range stored {
		txns = append(txns, st.Transaction)
	}

	summary := Summarize(Dedupe(txns), start, end, filter)
	log.Debug().
		Int("messages", len(msgs)).
		Int("transactions", len(txns)).
		Int("matched", len(summary.Details)).
		Str("total", summary.Total.StringFixed(2)).
		Msg("built month to date summary")
	return summary, nil
}

// Send builds the summary and mails it to the configured user. Both mail
// addresses must be present in the settings store.
func (s *Service) Send(ctx context.Context) (Summary, error) {
	if s.sender == nil {
		return Summary{}, errors.New("no mail sender configured")
	}
	to, err := s.store.GetSetting(ctx, SettingUserAddress)
	if err != nil {
		return Summary{}, fmt.Errorf("%w (set it with: settings set %s <address>)", err, SettingUserAddress)
	}
	if err := mail.ValidateAddress(to); err != nil {
		return Summary{}, err
	}
	from, err := s.store.GetSetting(ctx, SettingSenderAddress)
	if err != nil {
		return Summary{}, fmt.Errorf("%w (set it with: settings set %s <address>)", err, SettingSenderAddress)
	}

	summary, err := s.Build(ctx)
	if err != nil {
		return Summary{}, err
	}

	subject, body := Render(summary, s.config.Category, s.config.Greeting)
	if err := s.sender.Send(ctx, mail.Outgoing{From: from, To: to, Subject: subject, Body: body}); err != nil {
		return Summary{}, err
	}
	log := logger.FromContext(ctx)
	log.Info().Str("to", to).Str("total", summary.Total.StringFixed(2)).Msg("summary email sent")
	return summary, nil
}
