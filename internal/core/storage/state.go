package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/planetreboot/internal/core/observability/log"
)

// StateStore loads and saves the simulation Document under one key.
// Saving a document identical to the last one written is skipped.
type StateStore struct {
	kv     KV
	key    string
	logger log.Log

	mu       sync.Mutex
	lastHash uint64
	hashed   bool
}

func NewStateStore(kv KV, key string, logger log.Log) *StateStore {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &StateStore{
		kv:     kv,
		key:    key,
		logger: logger.With(log.Component("state_store"), log.String("key", key)),
	}
}

func (s *StateStore) Key() string {
	return s.key
}

// Load returns the stored document, or nil when nothing usable is stored.
// An unparsable blob counts as nothing stored. Only I/O failures are errors.
func (s *StateStore) Load(ctx context.Context) (*Document, error) {
	data, err := s.kv.Read(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var doc Document
	if err = doc.Deserialize(data); err != nil {
		s.logger.Warn("Ignoring unreadable stored state", log.Error(err), log.Int("bytes", len(data)))
		return nil, nil
	}
	if doc.Skipped > 0 {
		s.logger.Warn("Skipped malformed trash entries", log.Int("skipped", doc.Skipped))
	}

	s.remember(xxhash.Sum64(data))
	return &doc, nil
}

// Save writes doc unless it encodes to the same bytes as the last write.
// It reports whether anything was written.
func (s *StateStore) Save(ctx context.Context, doc Document) (bool, error) {
	data, err := doc.Serialize()
	if err != nil {
		return false, fmt.Errorf("encode state: %w", err)
	}
	sum := xxhash.Sum64(data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hashed && s.lastHash == sum {
		return false, nil
	}
	if err = s.kv.Write(ctx, s.key, data); err != nil {
		return false, fmt.Errorf("save state: %w", err)
	}
	s.lastHash, s.hashed = sum, true
	s.logger.Debug("State saved", log.Int("bytes", len(data)), log.Int("trash", len(doc.Trash)))
	return true, nil
}

// Clear deletes the stored document.
func (s *StateStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}
	s.hashed = false
	return nil
}

func (s *StateStore) remember(sum uint64) {
	s.mu.Lock()
	s.lastHash, s.hashed = sum, true
	s.mu.Unlock()
}
