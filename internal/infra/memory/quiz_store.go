package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"quizpro/internal/domain"
)

// QuizStore keeps generated quizzes and their grading state in a map
// (useful for tests/demos and single-instance deployments).
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]domain.QuizRecord
}

func NewQuizStore() *QuizStore {
	return &QuizStore{quizzes: make(map[string]domain.QuizRecord)}
}

func (s *QuizStore) SaveQuiz(_ context.Context, record domain.QuizRecord) error {
	if record.Quiz.ID == "" {
		return fmt.Errorf("%w: missing quiz id", domain.ErrMalformedQuiz)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[record.Quiz.ID] = record
	return nil
}

func (s *QuizStore) LoadQuiz(_ context.Context, quizID string) (domain.QuizRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.quizzes[quizID]
	if !ok {
		return domain.QuizRecord{}, domain.ErrQuizNotFound
	}
	return record, nil
}

func (s *QuizStore) CompleteQuiz(_ context.Context, quizID string, answers []domain.Answer, result domain.Result, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.quizzes[quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	if record.Completed {
		return domain.ErrQuizCompleted
	}
	stored := make([]domain.Answer, len(answers))
	copy(stored, answers)
	record.Completed = true
	record.Submission = stored
	record.Result = &result
	record.CompletedAt = &at
	s.quizzes[quizID] = record
	return nil
}
