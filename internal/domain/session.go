package domain

import "time"

// Phase is the externally visible state of a quiz session.
type Phase string

const (
	PhaseAnswering  Phase = "answering"
	PhaseFinalizing Phase = "finalizing"
	PhaseCompleted  Phase = "completed"
	PhaseAbandoned  Phase = "abandoned"
)

// Terminal reports whether no further transitions are possible.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseAbandoned
}

// SessionState is a snapshot of a session, safe to hand to other goroutines.
type SessionState struct {
	SessionID  string    `json:"sessionId"`
	QuizID     string    `json:"quizId"`
	Phase      Phase     `json:"phase"`
	Index      int       `json:"index"`
	Total      int       `json:"total"`
	Question   *Question `json:"question,omitempty"`
	Remaining  int       `json:"remaining"`
	Selection  *int      `json:"selection"`
	Answers    []Answer  `json:"answers"`
	Submitting bool      `json:"submitting"`
	Result     *Result   `json:"result,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
}

// Event types broadcast to session subscribers.
const (
	EventState            = "state"
	EventSelected         = "selected"
	EventTick             = "tick"
	EventAdvanced         = "advanced"
	EventFinalizing       = "finalizing"
	EventSubmissionFailed = "submission_failed"
	EventCompleted        = "completed"
	EventAbandoned        = "abandoned"
)

// SessionEvent pairs a transition with the state it produced.
type SessionEvent struct {
	Type  string       `json:"type"`
	State SessionState `json:"state"`
	Error string       `json:"error,omitempty"`
}
