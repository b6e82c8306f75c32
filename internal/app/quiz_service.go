package app

import (
	"context"
	"time"

	"daily-quiz-service/internal/domain"
	"daily-quiz-service/internal/metrics"
	"github.com/sirupsen/logrus"
)

// AttemptRepository abstracts where in-flight attempts live (in-memory, Redis, etc).
type AttemptRepository interface {
	Put(playerID string, attempt *Attempt)
	Get(playerID string) (*Attempt, bool)
	// Delete removes the player's attempt only if it is still attemptID.
	Delete(playerID, attemptID string)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizService contains the core quiz use cases.
type QuizService struct {
	attempts  AttemptRepository
	quizzes   QuizRepository
	storage   Storage
	keyPrefix string
	log       logrus.FieldLogger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Option customizes a QuizService.
type Option func(*QuizService)

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *QuizService) { s.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *QuizService) { s.metrics = m }
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithStreakKeyPrefix sets the prefix of per-player streak storage keys.
func WithStreakKeyPrefix(prefix string) Option {
	return func(s *QuizService) { s.keyPrefix = prefix }
}

func NewQuizService(attempts AttemptRepository, quizzes QuizRepository, storage Storage, opts ...Option) *QuizService {
	s := &QuizService{
		attempts:  attempts,
		quizzes:   quizzes,
		storage:   storage,
		keyPrefix: DefaultStreakKey,
		log:       logrus.StandardLogger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins a fresh attempt at quizID for a player, replacing any attempt
// the player had in flight.
func (s *QuizService) Start(ctx context.Context, quizID, playerID string) (*Attempt, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	attempt := NewAttemptWithClock(quiz, s.now)
	s.attempts.Put(playerID, attempt)
	s.metrics.ObserveStart()
	s.log.WithFields(logrus.Fields{
		"quiz_id":    quizID,
		"player_id":  playerID,
		"attempt_id": attempt.ID(),
	}).Info("attempt started")
	return attempt, nil
}

// Attempt returns the player's attempt in flight.
func (s *QuizService) Attempt(playerID string) (*Attempt, error) {
	attempt, ok := s.attempts.Get(playerID)
	if !ok {
		return nil, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

// SubmitAnswer answers the player's current question.
func (s *QuizService) SubmitAnswer(_ context.Context, playerID string, optionIndex int) (domain.QuizAnswer, error) {
	attempt, err := s.Attempt(playerID)
	if err != nil {
		return domain.QuizAnswer{}, err
	}
	return s.Answer(attempt, optionIndex)
}

// Answer submits optionIndex on a specific attempt.
func (s *QuizService) Answer(attempt *Attempt, optionIndex int) (domain.QuizAnswer, error) {
	answer, err := attempt.SubmitAnswer(optionIndex)
	if err != nil {
		return domain.QuizAnswer{}, err
	}
	s.metrics.ObserveAnswer(answer.Correct)
	return answer, nil
}

// Next moves the player's attempt forward; false means it is now complete.
func (s *QuizService) Next(_ context.Context, playerID string) (bool, error) {
	attempt, err := s.Attempt(playerID)
	if err != nil {
		return false, err
	}
	return attempt.NextQuestion(), nil
}

// Reset restarts the player's attempt from the first question.
func (s *QuizService) Reset(_ context.Context, playerID string) error {
	attempt, err := s.Attempt(playerID)
	if err != nil {
		return err
	}
	attempt.Reset()
	return nil
}

// Finish records a completed attempt in the player's streak record and
// drops the attempt.
func (s *QuizService) Finish(ctx context.Context, playerID string) (domain.QuizResult, domain.StreakStats, error) {
	attempt, err := s.Attempt(playerID)
	if err != nil {
		return domain.QuizResult{}, domain.StreakStats{}, err
	}
	return s.FinishAttempt(ctx, playerID, attempt)
}

// FinishAttempt records attempt for playerID. The stored attempt is dropped
// only if it is still this one.
func (s *QuizService) FinishAttempt(ctx context.Context, playerID string, attempt *Attempt) (domain.QuizResult, domain.StreakStats, error) {
	if !attempt.IsComplete() {
		return domain.QuizResult{}, domain.StreakStats{}, domain.ErrAttemptNotComplete
	}

	result := attempt.Results()
	tracker := s.Tracker(ctx, playerID)
	tracker.RecordCompletion(ctx, result.QuizID, result)
	s.attempts.Delete(playerID, attempt.ID())
	s.metrics.ObserveCompletion()

	s.log.WithFields(logrus.Fields{
		"quiz_id":    result.QuizID,
		"player_id":  playerID,
		"attempt_id": attempt.ID(),
		"score":      result.Score,
		"total":      result.TotalPoints,
		"seconds":    result.TimeSeconds,
	}).Info("attempt completed")
	return result, tracker.Stats(), nil
}

// Tracker loads the player's streak record.
func (s *QuizService) Tracker(ctx context.Context, playerID string) *StreakTracker {
	return NewStreakTrackerWithClock(ctx, s.storage, StreakKey(s.keyPrefix, playerID), s.log, s.now)
}

// Streak reports the player's streak statistics.
func (s *QuizService) Streak(ctx context.Context, playerID string) domain.StreakStats {
	return s.Tracker(ctx, playerID).Stats()
}

// Leave abandons the player's attempt attemptID. A newer attempt started
// by the same player is left alone.
func (s *QuizService) Leave(_ context.Context, playerID, attemptID string) {
	s.attempts.Delete(playerID, attemptID)
}
