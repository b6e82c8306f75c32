package redis

import (
	"context"
	"sync"
	"time"

	"daily-quiz-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// AttemptStore is a Redis-aware implementation of app.AttemptRepository.
// Attempts live in a local map next to their in-process subscribers;
// Redis only carries a liveness marker per player, holding the attempt id,
// so other instances can see who is mid-quiz.
type AttemptStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	attempts map[string]*app.Attempt
}

func NewAttemptStore(client *redis.Client, ttl time.Duration) *AttemptStore {
	return &AttemptStore{
		client:   client,
		ttl:      ttl,
		attempts: make(map[string]*app.Attempt),
	}
}

func (s *AttemptStore) Put(playerID string, attempt *app.Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[playerID] = attempt
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(playerID), attempt.ID(), s.ttl).Err()
}

func (s *AttemptStore) Get(playerID string) (*app.Attempt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[playerID]
	return attempt, ok
}

// deleteIfOwner drops the liveness marker only while it still names the
// attempt being removed.
var deleteIfOwner = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

func (s *AttemptStore) Delete(playerID, attemptID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt, ok := s.attempts[playerID]; ok && attempt.ID() == attemptID {
		delete(s.attempts, playerID)
	}
	_ = deleteIfOwner.Run(context.Background(), s.client, []string{s.key(playerID)}, attemptID).Err()
}

func (s *AttemptStore) key(playerID string) string {
	return "quiz:attempt:" + playerID
}
