package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session has not been started or was discarded.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrInvalidTransition is returned when an action is not allowed in the session's current phase.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrSubmissionFailed wraps gateway failures; the session stays finalizing and can be retried.
	ErrSubmissionFailed = errors.New("quiz submission failed")
	// ErrMalformedQuiz indicates a quiz that cannot be played.
	ErrMalformedQuiz = errors.New("malformed quiz")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizCompleted is returned when a different answer set is submitted for a graded quiz.
	ErrQuizCompleted = errors.New("quiz already completed")
	// ErrOptionNotFound indicates a selected option index is out of range.
	ErrOptionNotFound = errors.New("option not found")
	// ErrDuplicateAnswer is returned when a question is answered twice.
	ErrDuplicateAnswer = errors.New("question already answered")
	// ErrInvalidRequest indicates a quiz generation request outside the supported shapes.
	ErrInvalidRequest = errors.New("invalid quiz request")
	// ErrInvalidSubmission indicates answers that do not line up with the quiz questions.
	ErrInvalidSubmission = errors.New("invalid submission")
)
