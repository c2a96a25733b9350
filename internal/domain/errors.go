package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz document could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrUserNotFound indicates the user record does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrNothingToSubmit is returned when a submission references a quiz that
	// is not pending for the user (already completed, removed, or never assigned).
	ErrNothingToSubmit = errors.New("no pending quiz to submit")
	// ErrInvalidSubmission is returned when answers are malformed relative to
	// the quiz's question set, or the quiz is not the user's current quiz.
	ErrInvalidSubmission = errors.New("invalid submission")
)
