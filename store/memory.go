package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bmritz/grocerymail/extractor"
	"github.com/bmritz/grocerymail/extractor/common"
)

type txnKey struct {
	messageID string
	id        string
}

// MemoryStore implements Store with in-memory storage
type MemoryStore struct {
	mu sync.RWMutex

	messages     map[string]extractor.Message
	transactions map[txnKey]StoredTransaction
	order        []txnKey
	settings     map[string]string
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		messages:     make(map[string]extractor.Message),
		transactions: make(map[txnKey]StoredTransaction),
		settings:     make(map[string]string),
	}
}

func (s *MemoryStore) PutMessage(ctx context.Context, msg extractor.Message) error {
	if msg.ID == "" {
		return fmt.Errorf("message has no id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.ID] = msg
	return nil
}

func (s *MemoryStore) GetOrCreateTransaction(ctx context.Context, messageID, id string, txn common.Transaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[messageID]; !ok {
		return false, fmt.Errorf("message %s not found", messageID)
	}
	key := txnKey{messageID: messageID, id: id}
	if _, exists := s.transactions[key]; exists {
		return false, nil
	}
	s.transactions[key] = StoredTransaction{ID: id, MessageID: messageID, Transaction: txn}
	s.order = append(s.order, key)
	return true, nil
}

func (s *MemoryStore) MessagesSince(ctx context.Context, since time.Time, limit int) ([]extractor.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []extractor.Message
	for _, msg := range s.messages {
		if msg.AsOf != nil && !msg.AsOf.Before(since) {
			result = append(result, msg)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].AsOf.Equal(*result[j].AsOf) {
			return result[i].AsOf.Before(*result[j].AsOf)
		}
		return result[i].ID < result[j].ID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *MemoryStore) TransactionsForMessages(ctx context.Context, messageIDs []string) ([]StoredTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(messageIDs))
	for _, id := range messageIDs {
		wanted[id] = true
	}

	var result []StoredTransaction
	for _, key := range s.order {
		if wanted[key.messageID] {
			result = append(result, s.transactions[key])
		}
	}
	return result, nil
}

func (s *MemoryStore) GetSetting(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.settings[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSettingNotFound, name)
	}
	return value, nil
}

func (s *MemoryStore) SetSetting(ctx context.Context, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[name] = value
	return nil
}
