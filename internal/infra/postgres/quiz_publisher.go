package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"daily-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuizPublisher upserts validated quizzes.
type QuizPublisher struct {
	pool *pgxpool.Pool
}

func NewQuizPublisher(pool *pgxpool.Pool) *QuizPublisher {
	return &QuizPublisher{pool: pool}
}

func (p *QuizPublisher) Publish(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
INSERT INTO quizzes (id, quiz_date, category, data)
VALUES ($1, $2, $3, $4::jsonb)
ON CONFLICT (id) DO UPDATE SET quiz_date=EXCLUDED.quiz_date, category=EXCLUDED.category, data=EXCLUDED.data`,
		quiz.Meta.ID, quiz.Meta.Date, string(quiz.Meta.Category), string(data))
	if err != nil {
		return fmt.Errorf("publish quiz %s: %w", quiz.Meta.ID, err)
	}
	return nil
}
