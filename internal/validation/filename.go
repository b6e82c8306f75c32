package validation

import (
	"fmt"
	"path/filepath"
	"regexp"

	"daily-quiz-service/internal/domain"
)

var (
	filenamePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)\.ya?ml$`)
	slugPattern     = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// ValidateFilename checks the YYYY-MM-DD-topic-slug.yaml naming convention and
// that the embedded date equals the quiz date.
func ValidateFilename(filename, date string) error {
	match := filenamePattern.FindStringSubmatch(filename)
	if match == nil {
		return newError(
			fmt.Sprintf("Filename must match pattern: YYYY-MM-DD-topic-slug.yaml (got: %s)", filename),
			"filename", filename)
	}

	fileDate, slug := match[1], match[2]
	if fileDate != date {
		return newError(
			fmt.Sprintf("Filename date (%s) must match meta.date (%s)", fileDate, date),
			"filename", filename)
	}
	if !slugPattern.MatchString(slug) {
		return newError("Topic slug must be kebab-case (lowercase, numbers, hyphens only)", "filename", slug)
	}
	return nil
}

// ValidateDocument runs every publishing check for a document read from
// filename: the structural rules and the naming convention.
func ValidateDocument(data any, filename string) (domain.Quiz, error) {
	base := filepath.Base(filename)
	quiz, err := ValidateQuiz(data, base)
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := ValidateFilename(base, quiz.Meta.Date); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}
