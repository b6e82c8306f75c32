package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type WSHandler struct {
	service      *app.QuizService
	log          logrus.FieldLogger
	upgrader     websocket.Upgrader
	tickInterval time.Duration
}

func NewWSHandler(service *app.QuizService, log logrus.FieldLogger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		tickInterval: time.Second,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	OptionIndex *int `json:"optionIndex"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type tickPayload struct {
	ElapsedSeconds int `json:"elapsedSeconds"`
}

type resultPayload struct {
	Result domain.QuizResult  `json:"result"`
	Streak domain.StreakStats `json:"streak"`
}

// questionView hides which option is correct until the question is answered.
type questionView struct {
	ID                 string   `json:"id"`
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	Points             int      `json:"points"`
	Explanation        string   `json:"explanation,omitempty"`
	CorrectOptionIndex *int     `json:"correctOptionIndex,omitempty"`
}

type statePayload struct {
	AttemptID      string             `json:"attemptId"`
	QuizID         string             `json:"quizId"`
	Topic          string             `json:"topic"`
	QuestionNumber int                `json:"questionNumber"`
	TotalQuestions int                `json:"totalQuestions"`
	Question       questionView       `json:"question"`
	Answer         *domain.QuizAnswer `json:"answer,omitempty"`
	Score          int                `json:"score"`
	MaxScore       int                `json:"maxScore"`
	IsLastQuestion bool               `json:"isLastQuestion"`
	IsComplete     bool               `json:"isComplete"`
	ElapsedSeconds int                `json:"elapsedSeconds"`
}

func snapshot(a *app.Attempt) statePayload {
	q := a.CurrentQuestion()
	view := questionView{ID: q.ID, Text: q.Text, Points: q.Points}
	for _, opt := range q.Options {
		view.Options = append(view.Options, opt.Text)
	}

	state := statePayload{
		AttemptID:      a.ID(),
		QuizID:         a.Quiz().Meta.ID,
		Topic:          a.Quiz().Meta.Topic,
		QuestionNumber: a.CurrentQuestionNumber(),
		TotalQuestions: a.TotalQuestions(),
		Question:       view,
		Score:          a.Score(),
		MaxScore:       a.MaxScore(),
		IsLastQuestion: a.IsLastQuestion(),
		IsComplete:     a.IsComplete(),
		ElapsedSeconds: a.ElapsedSeconds(),
	}
	if answer, ok := a.CurrentAnswer(); ok {
		state.Answer = &answer
		state.Question.Explanation = q.Explanation
		for i, opt := range q.Options {
			if opt.Correct {
				idx := i
				state.Question.CorrectOptionIndex = &idx
			}
		}
	}
	return state
}

// ServeWS upgrades HTTP requests to websockets and plays one attempt over the connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	playerID := r.URL.Query().Get("playerId")
	if quizID == "" || playerID == "" {
		http.Error(w, "missing quizId or playerId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.WithFields(logrus.Fields{"quiz_id": quizID, "player_id": playerID})

	attempt, err := h.service.Start(r.Context(), quizID, playerID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	log = log.WithField("attempt_id", attempt.ID())
	defer h.service.Leave(r.Context(), playerID, attempt.ID())

	ctx, cancel := context.WithCancel(r.Context())
	send := make(chan outboundMessage, 16)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Warn("ws write error")
				cancel()
				// keep draining so producers never block
				for range send {
				}
				return
			}
		}
	}()

	enqueue := func(msg outboundMessage) {
		select {
		case send <- msg:
		case <-ctx.Done():
		}
	}

	unsubscribe := attempt.Subscribe(func() {
		enqueue(outboundMessage{Type: "state", Payload: snapshot(attempt)})
	})

	var timerWG sync.WaitGroup
	timerWG.Add(1)
	go func() {
		defer timerWG.Done()
		attempt.RunTimer(ctx, h.tickInterval, func(elapsed int) {
			enqueue(outboundMessage{Type: "tick", Payload: tickPayload{ElapsedSeconds: elapsed}})
		})
	}()

	enqueue(outboundMessage{Type: "state", Payload: snapshot(attempt)})

	for ctx.Err() == nil {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.handleInbound(ctx, playerID, attempt, inbound, enqueue)
	}

	unsubscribe()
	cancel()
	timerWG.Wait()
	close(send)
	<-writerDone
}

// handleInbound drives the attempt this connection started, never whatever
// attempt the player currently has stored.
func (h *WSHandler) handleInbound(ctx context.Context, playerID string, attempt *app.Attempt, inbound inboundMessage, enqueue func(outboundMessage)) {
	sendErr := func(err error) {
		enqueue(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
	}

	switch inbound.Type {
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.OptionIndex == nil {
			sendErr(errors.New("invalid answer payload"))
			return
		}
		answer, err := h.service.Answer(attempt, *payload.OptionIndex)
		if err != nil {
			sendErr(err)
			return
		}
		enqueue(outboundMessage{Type: "answerResult", Payload: answer})
	case "next":
		if attempt.IsComplete() {
			sendErr(domain.ErrAttemptComplete)
			return
		}
		if attempt.NextQuestion() {
			return
		}
		result, stats, err := h.service.FinishAttempt(ctx, playerID, attempt)
		if err != nil {
			sendErr(err)
			return
		}
		enqueue(outboundMessage{Type: "result", Payload: resultPayload{Result: result, Streak: stats}})
	case "reset":
		attempt.Reset()
	default:
		sendErr(errors.New("unsupported message type"))
	}
}
