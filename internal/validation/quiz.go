// Package validation enforces the authoring rules every quiz document must
// satisfy before it can be published.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"daily-quiz-service/internal/domain"
)

const (
	maxQuestionText    = 300
	maxOptionText      = 150
	minExplanation     = 20
	maxExplanation     = 500
	minPoints          = 1
	maxPoints          = 1000
	optionsPerQuestion = 4
)

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateQuiz checks a decoded quiz document (as produced by yaml or json
// decoding into an interface value) and returns it as a domain.Quiz. Checks
// run in document order and the first violation is returned as a
// *ValidationError. The only value filled in is the default for absent points.
func ValidateQuiz(data any, filename string) (domain.Quiz, error) {
	prefix := ""
	if filename != "" {
		prefix = "[" + filename + "] "
	}

	doc, ok := asMap(data)
	if !ok {
		return domain.Quiz{}, newError(prefix+"Quiz data must be an object", "", data)
	}

	meta, err := validateMeta(doc, prefix)
	if err != nil {
		return domain.Quiz{}, err
	}

	rawQuestions, ok := doc["questions"].([]any)
	if !ok || len(rawQuestions) == 0 {
		return domain.Quiz{}, newError(prefix+"questions must be a non-empty array", "questions", doc["questions"])
	}

	seen := make(map[string]struct{}, len(rawQuestions))
	questions := make([]domain.Question, 0, len(rawQuestions))
	for i, raw := range rawQuestions {
		q, err := validateQuestion(raw, i, prefix, seen)
		if err != nil {
			return domain.Quiz{}, err
		}
		questions = append(questions, q)
	}

	return domain.Quiz{Meta: meta, Questions: questions}, nil
}

func validateMeta(doc map[string]any, prefix string) (domain.QuizMetadata, error) {
	meta, ok := asMap(doc["meta"])
	if !ok {
		return domain.QuizMetadata{}, newError(prefix+"Missing or invalid 'meta' field", "meta", doc["meta"])
	}

	id, ok := meta["id"].(string)
	if !ok || strings.TrimSpace(id) == "" {
		return domain.QuizMetadata{}, newError(prefix+"meta.id must be a non-empty string", "meta.id", meta["id"])
	}

	if ts, ok := meta["date"].(time.Time); ok {
		return domain.QuizMetadata{}, newError(
			fmt.Sprintf("%smeta.date must be a string; quote the date in YAML (date: \"%s\")", prefix, ts.Format(time.DateOnly)),
			"meta.date", meta["date"])
	}
	date, ok := meta["date"].(string)
	if !ok || date == "" {
		return domain.QuizMetadata{}, newError(prefix+"meta.date must be a string", "meta.date", meta["date"])
	}
	if !isoDate.MatchString(date) {
		return domain.QuizMetadata{}, newError(prefix+"meta.date must be in ISO 8601 format (YYYY-MM-DD)", "meta.date", date)
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return domain.QuizMetadata{}, newError(prefix+"meta.date must be a valid calendar date", "meta.date", date)
	}

	topic, ok := meta["topic"].(string)
	if !ok || strings.TrimSpace(topic) == "" {
		return domain.QuizMetadata{}, newError(prefix+"meta.topic must be a non-empty string", "meta.topic", meta["topic"])
	}

	category, _ := meta["category"].(string)
	if !validCategory(category) {
		return domain.QuizMetadata{}, newError(
			prefix+"meta.category must be one of: "+joinCategories(),
			"meta.category", meta["category"])
	}

	difficulty, _ := meta["difficulty"].(string)
	if !validDifficulty(difficulty) {
		return domain.QuizMetadata{}, newError(
			prefix+"meta.difficulty must be one of: "+joinDifficulties(),
			"meta.difficulty", meta["difficulty"])
	}

	return domain.QuizMetadata{
		ID:         id,
		Date:       date,
		Topic:      topic,
		Category:   domain.Category(category),
		Difficulty: domain.Difficulty(difficulty),
	}, nil
}

func validateQuestion(raw any, index int, prefix string, seen map[string]struct{}) (domain.Question, error) {
	path := fmt.Sprintf("questions[%d]", index)
	qPrefix := prefix + path

	question, ok := asMap(raw)
	if !ok {
		return domain.Question{}, newError(qPrefix+" must be an object", path, raw)
	}

	id, ok := question["id"].(string)
	if !ok || id == "" {
		return domain.Question{}, newError(qPrefix+".id must be a non-empty string", path+".id", question["id"])
	}
	if _, dup := seen[id]; dup {
		return domain.Question{}, newError(fmt.Sprintf("%s.id %q is not unique", qPrefix, id), path+".id", id)
	}
	seen[id] = struct{}{}

	text, ok := question["text"].(string)
	if !ok || text == "" {
		return domain.Question{}, newError(qPrefix+".text must be a non-empty string", path+".text", question["text"])
	}
	if n := utf8.RuneCountInString(text); n > maxQuestionText {
		return domain.Question{}, newError(
			fmt.Sprintf("%s.text must be %d characters or less (got %d)", qPrefix, maxQuestionText, n),
			path+".text", text)
	}

	rawOptions, ok := question["options"].([]any)
	if !ok || len(rawOptions) != optionsPerQuestion {
		return domain.Question{}, newError(
			fmt.Sprintf("%s.options must be an array with exactly %d options", qPrefix, optionsPerQuestion),
			path+".options", question["options"])
	}

	options := make([]domain.AnswerOption, 0, len(rawOptions))
	correctCount := 0
	for j, rawOpt := range rawOptions {
		optPath := fmt.Sprintf("%s.options[%d]", path, j)
		optPrefix := prefix + optPath

		opt, ok := asMap(rawOpt)
		if !ok {
			return domain.Question{}, newError(optPrefix+" must be an object", optPath, rawOpt)
		}
		optText, ok := opt["text"].(string)
		if !ok || optText == "" {
			return domain.Question{}, newError(optPrefix+".text must be a non-empty string", optPath+".text", opt["text"])
		}
		if utf8.RuneCountInString(optText) > maxOptionText {
			return domain.Question{}, newError(
				fmt.Sprintf("%s.text must be %d characters or less", optPrefix, maxOptionText),
				optPath+".text", optText)
		}
		correct, ok := opt["correct"].(bool)
		if !ok {
			return domain.Question{}, newError(optPrefix+".correct must be a boolean", optPath+".correct", opt["correct"])
		}
		if correct {
			correctCount++
		}
		options = append(options, domain.AnswerOption{Text: optText, Correct: correct})
	}
	if correctCount != 1 {
		return domain.Question{}, newError(
			fmt.Sprintf("%s must have exactly one correct option (found %d)", qPrefix, correctCount),
			path+".options", correctCount)
	}

	explanation, ok := question["explanation"].(string)
	if !ok || explanation == "" {
		return domain.Question{}, newError(qPrefix+".explanation must be a non-empty string", path+".explanation", question["explanation"])
	}
	if n := utf8.RuneCountInString(explanation); n < minExplanation || n > maxExplanation {
		return domain.Question{}, newError(
			fmt.Sprintf("%s.explanation must be between %d and %d characters (got %d)", qPrefix, minExplanation, maxExplanation, n),
			path+".explanation", explanation)
	}

	points := domain.DefaultPoints
	if rawPoints, present := question["points"]; present && rawPoints != nil {
		p, ok := asInt(rawPoints)
		if !ok || p < minPoints || p > maxPoints {
			return domain.Question{}, newError(
				fmt.Sprintf("%s.points must be a number between %d and %d", qPrefix, minPoints, maxPoints),
				path+".points", rawPoints)
		}
		points = p
	}

	return domain.Question{
		ID:          id,
		Text:        text,
		Options:     options,
		Explanation: explanation,
		Points:      points,
	}, nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, m != nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// asInt accepts any numeric value that is a whole number.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func validCategory(c string) bool {
	for _, known := range domain.Categories {
		if string(known) == c {
			return true
		}
	}
	return false
}

func validDifficulty(d string) bool {
	for _, known := range domain.Difficulties {
		if string(known) == d {
			return true
		}
	}
	return false
}

func joinCategories() string {
	names := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func joinDifficulties() string {
	names := make([]string, len(domain.Difficulties))
	for i, d := range domain.Difficulties {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}
