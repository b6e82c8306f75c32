package domain

import "time"

// Category groups quizzes by subject area.
type Category string

const (
	CategoryTech       Category = "tech"
	CategoryScience    Category = "science"
	CategoryHistory    Category = "history"
	CategoryPopCulture Category = "pop-culture"
	CategorySports     Category = "sports"
	CategoryGeneral    Category = "general"
)

// Categories lists every accepted category in display order.
var Categories = []Category{
	CategoryTech,
	CategoryScience,
	CategoryHistory,
	CategoryPopCulture,
	CategorySports,
	CategoryGeneral,
}

// Difficulty is the author-declared difficulty of a quiz.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists every accepted difficulty.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// DefaultPoints is awarded for a question that does not declare its own points.
const DefaultPoints = 100

// QuizMetadata describes a single day's quiz.
type QuizMetadata struct {
	ID         string     `json:"id" yaml:"id"`
	Date       string     `json:"date" yaml:"date"` // YYYY-MM-DD
	Topic      string     `json:"topic" yaml:"topic"`
	Category   Category   `json:"category" yaml:"category"`
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty"`
}

// AnswerOption is one of the four choices of a question.
type AnswerOption struct {
	Text    string `json:"text" yaml:"text"`
	Correct bool   `json:"correct" yaml:"correct"`
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID          string         `json:"id" yaml:"id"`
	Text        string         `json:"text" yaml:"text"`
	Options     []AnswerOption `json:"options" yaml:"options"`
	Explanation string         `json:"explanation" yaml:"explanation"`
	Points      int            `json:"points" yaml:"points"`
}

// Quiz is a validated quiz document. It is not modified after loading.
type Quiz struct {
	Meta      QuizMetadata `json:"meta" yaml:"meta"`
	Questions []Question   `json:"questions" yaml:"questions"`
}

// QuizAnswer records the answer given to one question.
type QuizAnswer struct {
	QuestionID          string `json:"questionId"`
	SelectedOptionIndex int    `json:"selectedOptionIndex"`
	Correct             bool   `json:"correct"`
	Points              int    `json:"points"`
}

// QuizProgress is a copy of an attempt's mutable state. Answers is indexed by
// question position; unanswered questions hold nil.
type QuizProgress struct {
	CurrentQuestionIndex int           `json:"currentQuestionIndex"`
	Answers              []*QuizAnswer `json:"answers"`
	Score                int           `json:"score"`
	StartTime            time.Time     `json:"startTime"`
	IsComplete           bool          `json:"isComplete"`
}

// QuizResult is the scored outcome of an attempt.
type QuizResult struct {
	QuizID      string       `json:"quizId"`
	Score       int          `json:"score"`
	TotalPoints int          `json:"totalPoints"`
	TimeSeconds int          `json:"timeSeconds"`
	Answers     []QuizAnswer `json:"answers"`
	CompletedAt time.Time    `json:"completedAt"`
}

// Perfect reports whether every available point was earned.
func (r QuizResult) Perfect() bool {
	return r.Score == r.TotalPoints
}

// StreakData is the persisted streak record. Its JSON shape is the storage
// contract shared with other clients of the same key.
type StreakData struct {
	CurrentStreak  int                   `json:"currentStreak"`
	LongestStreak  int                   `json:"longestStreak"`
	LastPlayedDate *string               `json:"lastPlayedDate"`
	TotalCompleted int                   `json:"totalCompleted"`
	Results        map[string]QuizResult `json:"results"`
	Badges         []BadgeType           `json:"badges"`
}

// NewStreakData returns an empty record.
func NewStreakData() StreakData {
	return StreakData{
		Results: make(map[string]QuizResult),
		Badges:  []BadgeType{},
	}
}

// BadgeType identifies an achievement.
type BadgeType string

const (
	BadgeBeginner     BadgeType = "beginner"
	BadgePerfectScore BadgeType = "perfect-score"
	BadgeWeekWarrior  BadgeType = "week-warrior"
	BadgeMonthMaster  BadgeType = "month-master"
	BadgeSpeedDemon   BadgeType = "speed-demon"
	BadgeCenturyClub  BadgeType = "century-club"
)

// Badge is an achievement together with its unlock status.
type Badge struct {
	ID          BadgeType `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Emoji       string    `json:"emoji"`
	Unlocked    bool      `json:"unlocked"`
}

// StreakStats is the summary shown after a quiz and on the stats screen.
type StreakStats struct {
	CurrentStreak  int     `json:"currentStreak"`
	LongestStreak  int     `json:"longestStreak"`
	TotalCompleted int     `json:"totalCompleted"`
	Badges         []Badge `json:"badges"`
	StreakAtRisk   bool    `json:"isStreakAtRisk"`
}
