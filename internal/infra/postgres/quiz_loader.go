package postgres

import (
	"context"
	"errors"
	"fmt"

	"daily-quiz-service/internal/content"
	"daily-quiz-service/internal/domain"
	"daily-quiz-service/internal/metrics"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuizLoader loads quiz JSONB from Postgres. Rows are validated again on
// read so a hand-edited row can never reach players; rejected rows are
// counted in metrics.
type QuizLoader struct {
	pool    *pgxpool.Pool
	metrics *metrics.Metrics
}

func NewQuizLoader(pool *pgxpool.Pool, m *metrics.Metrics) *QuizLoader {
	return &QuizLoader{pool: pool, metrics: m}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return l.parse(quizID, raw)
}

func (l *QuizLoader) parse(quizID string, raw []byte) (domain.Quiz, error) {
	quiz, err := content.ParseQuiz(raw, "")
	if err != nil {
		l.metrics.ObserveRejectedDocument()
		return domain.Quiz{}, fmt.Errorf("stored quiz %s: %w", quizID, err)
	}
	return quiz, nil
}

// QuizIDForDate returns the id of the quiz scheduled on date.
func (l *QuizLoader) QuizIDForDate(ctx context.Context, date string) (string, error) {
	var id string
	err := l.pool.QueryRow(ctx, `SELECT id FROM quizzes WHERE quiz_date=$1 ORDER BY id LIMIT 1`, date).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrQuizNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find quiz for %s: %w", date, err)
	}
	return id, nil
}

// QuizForDate loads the quiz published for date.
func (l *QuizLoader) QuizForDate(ctx context.Context, date string) (domain.Quiz, error) {
	id, err := l.QuizIDForDate(ctx, date)
	if err != nil {
		return domain.Quiz{}, err
	}
	return l.LoadQuiz(ctx, id)
}

// ListQuizzes returns the published quizzes, newest first, optionally of
// one category. Rows failing validation are skipped.
func (l *QuizLoader) ListQuizzes(ctx context.Context, category domain.Category) ([]domain.Quiz, error) {
	rows, err := l.pool.Query(ctx, `
SELECT id, data FROM quizzes
WHERE $1 = '' OR category = $1
ORDER BY quiz_date DESC, id`, string(category))
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []domain.Quiz
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quiz, err := l.parse(id, raw)
		if err != nil {
			continue
		}
		quizzes = append(quizzes, quiz)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return quizzes, nil
}
