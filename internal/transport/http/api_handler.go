package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/domain"
)

// QuizIndex lists published quizzes. *content.Catalog serves the content
// directory and *postgres.QuizLoader the published table.
type QuizIndex interface {
	ListQuizzes(ctx context.Context, category domain.Category) ([]domain.Quiz, error)
	QuizForDate(ctx context.Context, date string) (domain.Quiz, error)
}

// APIHandler serves the read-only JSON endpoints.
type APIHandler struct {
	service *app.QuizService
	index   QuizIndex
	now     func() time.Time
}

func NewAPIHandler(service *app.QuizService, index QuizIndex) *APIHandler {
	return &APIHandler{service: service, index: index, now: time.Now}
}

// Register mounts the endpoints on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/quizzes", h.listQuizzes)
	mux.HandleFunc("/quizzes/today", h.todaysQuiz)
	mux.HandleFunc("/streak", h.streak)
}

func (h *APIHandler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.index.ListQuizzes(r.Context(), domain.Category(r.URL.Query().Get("category")))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorPayload{Message: err.Error()})
		return
	}
	metas := make([]domain.QuizMetadata, 0, len(quizzes))
	for _, q := range quizzes {
		metas = append(metas, q.Meta)
	}
	writeJSON(w, http.StatusOK, metas)
}

func (h *APIHandler) todaysQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.index.QuizForDate(r.Context(), h.now().Format(time.DateOnly))
	if errors.Is(err, domain.ErrQuizNotFound) {
		writeJSON(w, http.StatusNotFound, errorPayload{Message: domain.ErrQuizNotFound.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorPayload{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, quiz.Meta)
}

func (h *APIHandler) streak(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "missing playerId"})
		return
	}
	writeJSON(w, http.StatusOK, h.service.Streak(r.Context(), playerID))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
