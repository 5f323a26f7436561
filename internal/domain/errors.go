package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPool means no question can be served; a configuration error.
	ErrEmptyPool = errors.New("question pool is empty")
	// ErrEmptyAnswer is returned when the trimmed answer text is empty.
	ErrEmptyAnswer = errors.New("answer is empty")
	// ErrAlreadyAnswered reports that today's question already has an answer.
	// It is informational rather than a failure.
	ErrAlreadyAnswered = errors.New("question already answered today")
	// ErrQuestionNotActive is returned when the submitted question is not today's.
	ErrQuestionNotActive = errors.New("question is not active today")
	// ErrMalformedRecord marks a persisted record that could not be decoded.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrPersistence matches any *PersistenceError via errors.Is.
	ErrPersistence = errors.New("persistence failure")
)

// PersistenceError wraps a failure of the record store.
type PersistenceError struct {
	Op     string
	Record string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Record, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
