package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"daily-quiz-service/internal/domain"
)

// Catalog is an immutable set of validated quizzes.
type Catalog struct {
	quizzes []domain.Quiz // newest first
	byID    map[string]int
}

// NewCatalog indexes quizzes by id. Duplicate ids are rejected.
func NewCatalog(quizzes []domain.Quiz) (*Catalog, error) {
	sorted := append([]domain.Quiz(nil), quizzes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Meta.Date > sorted[j].Meta.Date
	})

	byID := make(map[string]int, len(sorted))
	for i, q := range sorted {
		if _, dup := byID[q.Meta.ID]; dup {
			return nil, fmt.Errorf("duplicate quiz id %q", q.Meta.ID)
		}
		byID[q.Meta.ID] = i
	}
	return &Catalog{quizzes: sorted, byID: byID}, nil
}

// LoadDir reads every *.yaml/*.yml file in dir. Any invalid document fails
// the whole load so it can never be served.
func LoadDir(dir string) (*Catalog, error) {
	files, err := quizFiles(dir)
	if err != nil {
		return nil, err
	}
	quizzes := make([]domain.Quiz, 0, len(files))
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		quiz, err := ParseQuiz(raw, path)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return NewCatalog(quizzes)
}

// FileReport is the validation outcome of one document.
type FileReport struct {
	Path string
	Quiz domain.Quiz
	Err  error
}

// ValidateDir validates every quiz document in dir and reports each one,
// valid or not.
func ValidateDir(dir string) ([]FileReport, error) {
	files, err := quizFiles(dir)
	if err != nil {
		return nil, err
	}
	reports := make([]FileReport, 0, len(files))
	for _, path := range files {
		report := FileReport{Path: path}
		raw, err := os.ReadFile(path)
		if err != nil {
			report.Err = err
		} else {
			report.Quiz, report.Err = ParseQuiz(raw, path)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func quizFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read content dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// All returns every quiz, newest date first.
func (c *Catalog) All() []domain.Quiz {
	return append([]domain.Quiz(nil), c.quizzes...)
}

// ByDate returns the quiz scheduled for date (YYYY-MM-DD).
func (c *Catalog) ByDate(date string) (domain.Quiz, bool) {
	for _, q := range c.quizzes {
		if q.Meta.Date == date {
			return q, true
		}
	}
	return domain.Quiz{}, false
}

// Today returns the quiz for the calendar date of now.
func (c *Catalog) Today(now time.Time) (domain.Quiz, bool) {
	return c.ByDate(now.Format(time.DateOnly))
}

// ByCategory returns the quizzes of one category, newest first.
func (c *Catalog) ByCategory(category domain.Category) []domain.Quiz {
	var out []domain.Quiz
	for _, q := range c.quizzes {
		if q.Meta.Category == category {
			out = append(out, q)
		}
	}
	return out
}

// LoadQuiz implements the quiz loader contract of the repositories.
func (c *Catalog) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	if i, ok := c.byID[quizID]; ok {
		return c.quizzes[i], nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

// ListQuizzes returns every quiz, or those of category when it is set,
// newest first.
func (c *Catalog) ListQuizzes(_ context.Context, category domain.Category) ([]domain.Quiz, error) {
	if category == "" {
		return c.All(), nil
	}
	return c.ByCategory(category), nil
}

// QuizForDate is ByDate reporting ErrQuizNotFound for an empty day.
func (c *Catalog) QuizForDate(_ context.Context, date string) (domain.Quiz, error) {
	if q, ok := c.ByDate(date); ok {
		return q, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}
