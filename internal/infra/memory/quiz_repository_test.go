package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"daily-quiz-service/internal/domain"
)

func TestQuizRepositoryCaches(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewStaticQuizLoader(sampleQuiz())}
	repo := NewQuizRepository(loader, time.Minute)

	if _, err := repo.GetQuiz(context.Background(), "space-facts"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	quiz, err := repo.GetQuiz(context.Background(), "space-facts")
	if err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
	if quiz.Meta.Topic != "Space Facts" {
		t.Fatalf("unexpected quiz %+v", quiz.Meta)
	}
}

func TestQuizRepositoryReloadsAfterExpiry(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewStaticQuizLoader(sampleQuiz())}
	repo := NewQuizRepository(loader, time.Minute)
	now := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetQuiz(context.Background(), "space-facts")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetQuiz(context.Background(), "space-facts")

	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

func TestQuizRepositoryUnknownQuiz(t *testing.T) {
	repo := NewQuizRepository(NewStaticQuizLoader(), time.Minute)
	if _, err := repo.GetQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type countingLoader struct {
	QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		Meta: domain.QuizMetadata{
			ID:         "space-facts",
			Date:       "2024-01-05",
			Topic:      "Space Facts",
			Category:   domain.CategoryScience,
			Difficulty: domain.DifficultyEasy,
		},
		Questions: []domain.Question{
			{
				ID:   "q1",
				Text: "Which planet is known as the red planet?",
				Options: []domain.AnswerOption{
					{Text: "Venus"},
					{Text: "Mars", Correct: true},
					{Text: "Jupiter"},
					{Text: "Saturn"},
				},
				Explanation: "Iron oxide dust gives Mars its color.",
				Points:      100,
			},
		},
	}
}
