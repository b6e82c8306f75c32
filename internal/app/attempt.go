package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"daily-quiz-service/internal/domain"
)

// Attempt walks one player through a quiz, one question at a time.
//
// Every mutation notifies subscribers synchronously after the attempt's lock
// is released, so callbacks may read the attempt back through its queries.
type Attempt struct {
	id   string
	quiz domain.Quiz
	now  func() time.Time

	mu       sync.RWMutex
	progress domain.QuizProgress

	listenersMu sync.Mutex
	listeners   map[int]func()
	nextID      int
}

// NewAttempt starts an attempt at the first question.
func NewAttempt(quiz domain.Quiz) *Attempt {
	return NewAttemptWithClock(quiz, time.Now)
}

// NewAttemptWithClock allows deterministic timing in tests.
func NewAttemptWithClock(quiz domain.Quiz, now func() time.Time) *Attempt {
	a := &Attempt{
		id:        uuid.NewString(),
		quiz:      quiz,
		now:       now,
		listeners: make(map[int]func()),
	}
	a.progress = a.freshProgress()
	return a
}

func (a *Attempt) freshProgress() domain.QuizProgress {
	return domain.QuizProgress{
		CurrentQuestionIndex: 0,
		Answers:              make([]*domain.QuizAnswer, len(a.quiz.Questions)),
		StartTime:            a.now(),
	}
}

// ID identifies the attempt in logs and transport messages.
func (a *Attempt) ID() string {
	return a.id
}

func (a *Attempt) Quiz() domain.Quiz {
	return a.quiz
}

// Progress returns a copy of the current progress.
func (a *Attempt) Progress() domain.QuizProgress {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p := a.progress
	p.Answers = make([]*domain.QuizAnswer, len(a.progress.Answers))
	for i, ans := range a.progress.Answers {
		if ans != nil {
			cp := *ans
			p.Answers[i] = &cp
		}
	}
	return p
}

func (a *Attempt) CurrentQuestion() domain.Question {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.quiz.Questions[a.progress.CurrentQuestionIndex]
}

// CurrentQuestionIndex is 0-based.
func (a *Attempt) CurrentQuestionIndex() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.progress.CurrentQuestionIndex
}

// CurrentQuestionNumber is 1-based.
func (a *Attempt) CurrentQuestionNumber() int {
	return a.CurrentQuestionIndex() + 1
}

func (a *Attempt) TotalQuestions() int {
	return len(a.quiz.Questions)
}

func (a *Attempt) IsLastQuestion() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.isLastLocked()
}

func (a *Attempt) isLastLocked() bool {
	return a.progress.CurrentQuestionIndex == len(a.quiz.Questions)-1
}

func (a *Attempt) IsComplete() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.progress.IsComplete
}

func (a *Attempt) Score() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.progress.Score
}

// MaxScore is the sum of every question's points.
func (a *Attempt) MaxScore() int {
	total := 0
	for _, q := range a.quiz.Questions {
		total += questionPoints(q)
	}
	return total
}

// ElapsedSeconds is the floored time since the attempt (re)started.
func (a *Attempt) ElapsedSeconds() int {
	a.mu.RLock()
	start := a.progress.StartTime
	a.mu.RUnlock()
	return int(a.now().Sub(start) / time.Second)
}

// CurrentAnswer returns the recorded answer for the current question, if any.
func (a *Attempt) CurrentAnswer() (domain.QuizAnswer, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ans := a.progress.Answers[a.progress.CurrentQuestionIndex]
	if ans == nil {
		return domain.QuizAnswer{}, false
	}
	return *ans, true
}

func (a *Attempt) IsCurrentQuestionAnswered() bool {
	_, ok := a.CurrentAnswer()
	return ok
}

// SubmitAnswer scores the selected option of the current question. A
// question accepts a single answer; resubmission returns ErrAlreadyAnswered
// and leaves the score untouched.
func (a *Attempt) SubmitAnswer(optionIndex int) (domain.QuizAnswer, error) {
	a.mu.Lock()
	if a.progress.IsComplete {
		a.mu.Unlock()
		return domain.QuizAnswer{}, domain.ErrAttemptComplete
	}
	idx := a.progress.CurrentQuestionIndex
	if a.progress.Answers[idx] != nil {
		a.mu.Unlock()
		return domain.QuizAnswer{}, domain.ErrAlreadyAnswered
	}
	question := a.quiz.Questions[idx]
	if optionIndex < 0 || optionIndex >= len(question.Options) {
		a.mu.Unlock()
		return domain.QuizAnswer{}, domain.ErrOptionNotFound
	}

	correct := question.Options[optionIndex].Correct
	points := 0
	if correct {
		points = questionPoints(question)
	}
	answer := domain.QuizAnswer{
		QuestionID:          question.ID,
		SelectedOptionIndex: optionIndex,
		Correct:             correct,
		Points:              points,
	}
	a.progress.Answers[idx] = &answer
	a.progress.Score += points
	a.mu.Unlock()

	a.notify()
	return answer, nil
}

// NextQuestion advances to the following question and returns true, or
// completes the attempt on the last question and returns false.
func (a *Attempt) NextQuestion() bool {
	a.mu.Lock()
	if a.progress.IsComplete {
		a.mu.Unlock()
		return false
	}
	if a.isLastLocked() {
		a.progress.IsComplete = true
		a.mu.Unlock()
		a.notify()
		return false
	}
	a.progress.CurrentQuestionIndex++
	a.mu.Unlock()
	a.notify()
	return true
}

// Complete ends the attempt regardless of position.
func (a *Attempt) Complete() {
	a.mu.Lock()
	if a.progress.IsComplete {
		a.mu.Unlock()
		return
	}
	a.progress.IsComplete = true
	a.mu.Unlock()
	a.notify()
}

// Reset restarts the attempt from the first question with a new start time.
func (a *Attempt) Reset() {
	a.mu.Lock()
	a.progress = a.freshProgress()
	a.mu.Unlock()
	a.notify()
}

// Results snapshots the attempt. It is meaningful once complete but can be
// taken at any point.
func (a *Attempt) Results() domain.QuizResult {
	a.mu.RLock()
	answers := make([]domain.QuizAnswer, 0, len(a.progress.Answers))
	for _, ans := range a.progress.Answers {
		if ans != nil {
			answers = append(answers, *ans)
		}
	}
	score := a.progress.Score
	a.mu.RUnlock()

	return domain.QuizResult{
		QuizID:      a.quiz.Meta.ID,
		Score:       score,
		TotalPoints: a.MaxScore(),
		TimeSeconds: a.ElapsedSeconds(),
		Answers:     answers,
		CompletedAt: a.now().UTC(),
	}
}

// Subscribe registers fn to run after every state change. The returned
// function removes it.
func (a *Attempt) Subscribe(fn func()) func() {
	a.listenersMu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.listenersMu.Unlock()

	return func() {
		a.listenersMu.Lock()
		delete(a.listeners, id)
		a.listenersMu.Unlock()
	}
}

func (a *Attempt) notify() {
	a.listenersMu.Lock()
	ids := make([]int, 0, len(a.listeners))
	for id := range a.listeners {
		ids = append(ids, id)
	}
	fns := make([]func(), 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, a.listeners[id])
	}
	a.listenersMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// RunTimer calls tick with the elapsed seconds every interval until the
// attempt completes or ctx is done. It never mutates the attempt.
func (a *Attempt) RunTimer(ctx context.Context, interval time.Duration, tick func(elapsed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if a.IsComplete() {
				return
			}
			tick(a.ElapsedSeconds())
		}
	}
}

func questionPoints(q domain.Question) int {
	if q.Points > 0 {
		return q.Points
	}
	return domain.DefaultPoints
}
