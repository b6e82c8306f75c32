package redis

import (
	"context"
	"testing"
	"time"

	"daily-quiz-service/internal/domain"
	"daily-quiz-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuizRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{QuizLoader: memory.NewStaticQuizLoader(sampleQuiz())}
	repo := NewQuizRepository(client, loader, time.Minute)

	_, err = repo.GetQuiz(context.Background(), "space-facts")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:space-facts") {
		t.Fatalf("expected quiz cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	quiz, err := repo.GetQuiz(context.Background(), "space-facts")
	if err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(quiz.Questions) != 1 || quiz.Questions[0].Options[1].Text != "Mars" {
		t.Fatalf("expected full quiz from cache, got %+v", quiz)
	}
}

func TestQuizRepositoryExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{QuizLoader: memory.NewStaticQuizLoader(sampleQuiz())}
	repo := NewQuizRepository(newClient(mr), loader, time.Minute)

	_, _ = repo.GetQuiz(context.Background(), "space-facts")
	mr.FastForward(2 * time.Minute)
	_, _ = repo.GetQuiz(context.Background(), "space-facts")

	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.calls)
	}
}

func TestQuizRepositoryIgnoresInvalidCacheEntry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	if err := mr.Set("quiz:space-facts", `{"meta":{"id":"space-facts","date":"2024-01-05","topic":"Space Facts","category":"science","difficulty":"easy"},"questions":[]}`); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	loader := &countingLoader{QuizLoader: memory.NewStaticQuizLoader(sampleQuiz())}
	repo := NewQuizRepository(newClient(mr), loader, time.Minute)

	quiz, err := repo.GetQuiz(context.Background(), "space-facts")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 || len(quiz.Questions) != 1 {
		t.Fatalf("expected reload from loader, calls=%d quiz=%+v", loader.calls, quiz)
	}

	// the bad entry was replaced, so the next read is a hit
	if _, err := repo.GetQuiz(context.Background(), "space-facts"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected repaired cache entry, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.QuizLoader
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

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
