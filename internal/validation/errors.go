package validation

// ValidationError describes the first rule a quiz document violates.
// Field is a dotted/bracketed path such as "questions[2].options[1].text".
type ValidationError struct {
	Message string
	Field   string
	Value   any
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newError(message, field string, value any) *ValidationError {
	return &ValidationError{Message: message, Field: field, Value: value}
}
