package memory

import (
	"context"
	"sync"

	"daily-quiz-service/internal/domain"
)

// KVStore keeps streak records in process memory; nothing survives a restart.
type KVStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewKVStore() *KVStore {
	return &KVStore{items: make(map[string][]byte)}
}

func (s *KVStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *KVStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = append([]byte(nil), value...)
	return nil
}
