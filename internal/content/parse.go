// Package content reads quiz documents from disk and serves them by date,
// category and id.
package content

import (
	"fmt"

	"daily-quiz-service/internal/domain"
	"daily-quiz-service/internal/validation"
	"gopkg.in/yaml.v3"
)

// ParseQuiz decodes a YAML (or JSON) quiz document and validates it. When
// filename is set the naming convention is checked as well.
func ParseQuiz(raw []byte, filename string) (domain.Quiz, error) {
	var data any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return domain.Quiz{}, fmt.Errorf("decode quiz %s: %w", filename, err)
	}
	if filename == "" {
		return validation.ValidateQuiz(data, "")
	}
	return validation.ValidateDocument(data, filename)
}
