package app

import (
	"context"
	"testing"
	"time"

	"daily-quiz-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)}
}

func fourOptions(correct int) []domain.AnswerOption {
	opts := []domain.AnswerOption{{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d"}}
	opts[correct].Correct = true
	return opts
}

// twoQuestionQuiz is worth 100 + 50 points; option 0 is correct for both.
func twoQuestionQuiz() domain.Quiz {
	return domain.Quiz{
		Meta: domain.QuizMetadata{ID: "space-facts", Date: "2024-01-05", Topic: "Space", Category: domain.CategoryScience, Difficulty: domain.DifficultyEasy},
		Questions: []domain.Question{
			{ID: "q1", Text: "First?", Options: fourOptions(0), Explanation: "Because the first one is right.", Points: 100},
			{ID: "q2", Text: "Second?", Options: fourOptions(0), Explanation: "Because the first one is right.", Points: 50},
		},
	}
}

func TestAttemptStartsAtFirstQuestion(t *testing.T) {
	a := NewAttemptWithClock(twoQuestionQuiz(), newClock().Now)

	assert.NotEmpty(t, a.ID())
	assert.Equal(t, 0, a.CurrentQuestionIndex())
	assert.Equal(t, 1, a.CurrentQuestionNumber())
	assert.Equal(t, 2, a.TotalQuestions())
	assert.Equal(t, "q1", a.CurrentQuestion().ID)
	assert.False(t, a.IsLastQuestion())
	assert.False(t, a.IsComplete())
	assert.Equal(t, 0, a.Score())
	assert.Equal(t, 150, a.MaxScore())
	assert.False(t, a.IsCurrentQuestionAnswered())
}

func TestAttemptScoresExampleQuiz(t *testing.T) {
	clock := newClock()
	a := NewAttemptWithClock(twoQuestionQuiz(), clock.Now)

	first, err := a.SubmitAnswer(0)
	require.NoError(t, err)
	assert.Equal(t, domain.QuizAnswer{QuestionID: "q1", SelectedOptionIndex: 0, Correct: true, Points: 100}, first)

	require.True(t, a.NextQuestion())
	second, err := a.SubmitAnswer(3)
	require.NoError(t, err)
	assert.False(t, second.Correct)
	assert.Equal(t, 0, second.Points)

	clock.Advance(42*time.Second + 900*time.Millisecond)
	require.False(t, a.NextQuestion())
	assert.True(t, a.IsComplete())

	result := a.Results()
	assert.Equal(t, "space-facts", result.QuizID)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, 150, result.TotalPoints)
	assert.Equal(t, 42, result.TimeSeconds)
	assert.Len(t, result.Answers, 2)
	assert.Equal(t, clock.Now(), result.CompletedAt)
}

func TestAttemptRejectsSecondSubmission(t *testing.T) {
	a := NewAttemptWithClock(twoQuestionQuiz(), newClock().Now)

	_, err := a.SubmitAnswer(1)
	require.NoError(t, err)
	_, err = a.SubmitAnswer(0)
	assert.ErrorIs(t, err, domain.ErrAlreadyAnswered)

	answer, ok := a.CurrentAnswer()
	require.True(t, ok)
	assert.Equal(t, 1, answer.SelectedOptionIndex)
	assert.Equal(t, 0, a.Score())
}

func TestAttemptRejectsInvalidOption(t *testing.T) {
	a := NewAttemptWithClock(twoQuestionQuiz(), newClock().Now)

	_, err := a.SubmitAnswer(4)
	assert.ErrorIs(t, err, domain.ErrOptionNotFound)
	_, err = a.SubmitAnswer(-1)
	assert.ErrorIs(t, err, domain.ErrOptionNotFound)
	assert.False(t, a.IsCurrentQuestionAnswered())
}

func TestAttemptRejectsAnswersAfterCompletion(t *testing.T) {
	a := NewAttemptWithClock(twoQuestionQuiz(), newClock().Now)
	a.Complete()

	_, err := a.SubmitAnswer(0)
	assert.ErrorIs(t, err, domain.ErrAttemptComplete)
	assert.False(t, a.NextQuestion())
}

func TestAttemptVisitsEveryQuestionInOrder(t *testing.T) {
	quiz := twoQuestionQuiz()
	quiz.Questions = append(quiz.Questions,
		domain.Question{ID: "q3", Text: "Third?", Options: fourOptions(2), Explanation: "Because the third one is right.", Points: 10})
	a := NewAttemptWithClock(quiz, newClock().Now)

	visited := []string{a.CurrentQuestion().ID}
	for i := 0; i < len(quiz.Questions)-1; i++ {
		require.True(t, a.NextQuestion())
		visited = append(visited, a.CurrentQuestion().ID)
	}
	assert.Equal(t, []string{"q1", "q2", "q3"}, visited)
	assert.True(t, a.IsLastQuestion())
	assert.False(t, a.IsComplete())

	assert.False(t, a.NextQuestion())
	assert.True(t, a.IsComplete())
}

func TestAttemptReset(t *testing.T) {
	clock := newClock()
	a := NewAttemptWithClock(twoQuestionQuiz(), clock.Now)
	before := a.Progress().StartTime

	_, _ = a.SubmitAnswer(0)
	a.NextQuestion()
	a.NextQuestion()
	clock.Advance(time.Minute)
	a.Reset()

	p := a.Progress()
	assert.Equal(t, 0, p.CurrentQuestionIndex)
	assert.Equal(t, 0, p.Score)
	assert.False(t, p.IsComplete)
	for _, ans := range p.Answers {
		assert.Nil(t, ans)
	}
	assert.False(t, p.StartTime.Before(before))
	assert.Equal(t, 0, a.ElapsedSeconds())
}

func TestAttemptProgressIsACopy(t *testing.T) {
	a := NewAttemptWithClock(twoQuestionQuiz(), newClock().Now)
	_, _ = a.SubmitAnswer(0)

	p := a.Progress()
	p.Answers[0].Points = 999
	p.Score = 999

	answer, _ := a.CurrentAnswer()
	assert.Equal(t, 100, answer.Points)
	assert.Equal(t, 100, a.Score())
}

func TestAttemptDefaultsMissingPoints(t *testing.T) {
	quiz := twoQuestionQuiz()
	quiz.Questions[1].Points = 0
	a := NewAttemptWithClock(quiz, newClock().Now)
	assert.Equal(t, 100+domain.DefaultPoints, a.MaxScore())
}

func TestAttemptNotifiesSubscribers(t *testing.T) {
	a := NewAttemptWithClock(twoQuestionQuiz(), newClock().Now)

	var calls []int
	unsubscribe := a.Subscribe(func() {
		// subscribers read state back through queries
		calls = append(calls, a.CurrentQuestionIndex())
	})
	other := 0
	a.Subscribe(func() { other++ })

	_, _ = a.SubmitAnswer(0)
	a.NextQuestion()
	unsubscribe()
	a.NextQuestion()
	a.Reset()

	assert.Equal(t, []int{0, 1}, calls)
	assert.Equal(t, 4, other)
}

func TestAttemptFailedSubmissionDoesNotNotify(t *testing.T) {
	a := NewAttemptWithClock(twoQuestionQuiz(), newClock().Now)
	calls := 0
	a.Subscribe(func() { calls++ })

	_, _ = a.SubmitAnswer(9)
	assert.Equal(t, 0, calls)
}

func TestRunTimerStopsWhenComplete(t *testing.T) {
	a := NewAttempt(twoQuestionQuiz())
	ticks := make(chan int, 100)

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.RunTimer(context.Background(), time.Millisecond, func(elapsed int) { ticks <- elapsed })
	}()

	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("expected at least one tick")
	}
	a.Complete()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not stop after completion")
	}
}

func TestRunTimerStopsOnCancel(t *testing.T) {
	a := NewAttempt(twoQuestionQuiz())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.RunTimer(ctx, time.Hour, func(int) {})
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not stop after cancel")
	}
}
