package memory

import (
	"sync"

	"daily-quiz-service/internal/app"
)

// AttemptStore is an in-memory implementation of app.AttemptRepository.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]*app.Attempt
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		attempts: make(map[string]*app.Attempt),
	}
}

func (s *AttemptStore) Put(playerID string, attempt *app.Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[playerID] = attempt
}

func (s *AttemptStore) Get(playerID string) (*app.Attempt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[playerID]
	return attempt, ok
}

func (s *AttemptStore) Delete(playerID, attemptID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt, ok := s.attempts[playerID]; ok && attempt.ID() == attemptID {
		delete(s.attempts, playerID)
	}
}
