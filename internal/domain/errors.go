package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound is returned when a player acts without a started attempt.
	ErrAttemptNotFound = errors.New("quiz attempt not found")
	// ErrOptionNotFound indicates a submitted option index is out of range.
	ErrOptionNotFound = errors.New("option not found")
	// ErrAlreadyAnswered is returned when the current question already has an answer.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrAttemptComplete is returned when mutating an attempt that has finished.
	ErrAttemptComplete = errors.New("quiz attempt already complete")
	// ErrAttemptNotComplete is returned when recording an attempt that is still in progress.
	ErrAttemptNotComplete = errors.New("quiz attempt not complete")
	// ErrKeyNotFound is returned by key/value storage for a missing key.
	ErrKeyNotFound = errors.New("storage key not found")
)
