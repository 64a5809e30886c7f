package app

import (
	"fmt"

	"quizpro/internal/domain"
)

// AnswerLedger is the append-only, ordered record of committed answers.
type AnswerLedger struct {
	answers []domain.Answer
	seen    map[string]struct{}
}

func NewAnswerLedger(capacity int) *AnswerLedger {
	return &AnswerLedger{
		answers: make([]domain.Answer, 0, capacity),
		seen:    make(map[string]struct{}, capacity),
	}
}

// Record appends an answer. A second answer for the same question is rejected.
func (l *AnswerLedger) Record(answer domain.Answer) error {
	if _, ok := l.seen[answer.QuestionID]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateAnswer, answer.QuestionID)
	}
	l.seen[answer.QuestionID] = struct{}{}
	l.answers = append(l.answers, answer)
	return nil
}

// Snapshot returns a copy of the answers recorded so far.
func (l *AnswerLedger) Snapshot() []domain.Answer {
	out := make([]domain.Answer, len(l.answers))
	copy(out, l.answers)
	return out
}

func (l *AnswerLedger) Len() int {
	return len(l.answers)
}
