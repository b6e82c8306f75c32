package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"daily-quiz-service/internal/content"
	"daily-quiz-service/internal/domain"
)

func newTestAPI(t *testing.T) *http.ServeMux {
	t.Helper()
	older := sampleQuiz()
	newer := sampleQuiz()
	newer.Meta.ID = "web-history"
	newer.Meta.Date = "2024-01-06"
	newer.Meta.Category = domain.CategoryTech

	catalog, err := content.NewCatalog([]domain.Quiz{older, newer})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	api := NewAPIHandler(newTestService(), catalog)
	api.now = func() time.Time { return time.Date(2024, 1, 6, 8, 0, 0, 0, time.UTC) }

	mux := http.NewServeMux()
	api.Register(mux)
	return mux
}

func TestListQuizzes(t *testing.T) {
	mux := newTestAPI(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quizzes", nil))
	var metas []domain.QuizMetadata
	if err := json.NewDecoder(rec.Body).Decode(&metas); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(metas) != 2 || metas[0].ID != "web-history" {
		t.Fatalf("expected newest first, got %+v", metas)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quizzes?category=science", nil))
	metas = nil
	_ = json.NewDecoder(rec.Body).Decode(&metas)
	if len(metas) != 1 || metas[0].ID != "space-facts" {
		t.Fatalf("expected science quiz only, got %+v", metas)
	}
}

func TestTodaysQuiz(t *testing.T) {
	mux := newTestAPI(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quizzes/today", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var meta domain.QuizMetadata
	_ = json.NewDecoder(rec.Body).Decode(&meta)
	if meta.ID != "web-history" {
		t.Fatalf("expected today's quiz, got %+v", meta)
	}
}

func TestStreakEndpoint(t *testing.T) {
	mux := newTestAPI(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/streak", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without player, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/streak?playerId=alice", nil))
	var stats domain.StreakStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalCompleted != 0 || len(stats.Badges) != 6 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

type brokenIndex struct{}

func (brokenIndex) ListQuizzes(context.Context, domain.Category) ([]domain.Quiz, error) {
	return nil, errors.New("connection refused")
}

func (brokenIndex) QuizForDate(context.Context, string) (domain.Quiz, error) {
	return domain.Quiz{}, errors.New("connection refused")
}

func TestIndexFailures(t *testing.T) {
	mux := http.NewServeMux()
	NewAPIHandler(newTestService(), brokenIndex{}).Register(mux)

	for _, path := range []string{"/quizzes", "/quizzes/today"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("%s: expected 500, got %d", path, rec.Code)
		}
	}
}

func TestNoQuizToday(t *testing.T) {
	catalog, err := content.NewCatalog([]domain.Quiz{sampleQuiz()})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	api := NewAPIHandler(newTestService(), catalog)
	api.now = func() time.Time { return time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC) }
	mux := http.NewServeMux()
	api.Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quizzes/today", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
