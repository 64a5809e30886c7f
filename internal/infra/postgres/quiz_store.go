package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"quizpro/internal/domain"
)

// QuizStore keeps quiz records in the quizzes table. The quiz and its answer
// keys live in the data JSONB column.
type QuizStore struct {
	pool *pgxpool.Pool
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

type quizData struct {
	Quiz domain.Quiz        `json:"quiz"`
	Keys []domain.AnswerKey `json:"keys"`
}

func (s *QuizStore) SaveQuiz(ctx context.Context, record domain.QuizRecord) error {
	raw, err := json.Marshal(quizData{Quiz: record.Quiz, Keys: record.Keys})
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quizzes (id, data, created_at) VALUES ($1, $2::jsonb, $3)`,
		record.Quiz.ID, string(raw), record.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (s *QuizStore) LoadQuiz(ctx context.Context, quizID string) (domain.QuizRecord, error) {
	var (
		raw         []byte
		submission  []byte
		result      []byte
		record      domain.QuizRecord
		completedAt *time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT data, completed, submission, result, created_at, completed_at FROM quizzes WHERE id=$1`,
		quizID).Scan(&raw, &record.Completed, &submission, &result, &record.CreatedAt, &completedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizRecord{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.QuizRecord{}, fmt.Errorf("load quiz: %w", err)
	}

	var data quizData
	if err := json.Unmarshal(raw, &data); err != nil {
		return domain.QuizRecord{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	record.Quiz = data.Quiz
	record.Keys = data.Keys
	record.CompletedAt = completedAt
	if len(submission) > 0 {
		if err := json.Unmarshal(submission, &record.Submission); err != nil {
			return domain.QuizRecord{}, fmt.Errorf("unmarshal submission: %w", err)
		}
	}
	if len(result) > 0 {
		record.Result = &domain.Result{}
		if err := json.Unmarshal(result, record.Result); err != nil {
			return domain.QuizRecord{}, fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return record, nil
}

func (s *QuizStore) CompleteQuiz(ctx context.Context, quizID string, answers []domain.Answer, result domain.Result, at time.Time) error {
	rawAnswers, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}
	rawResult, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE quizzes SET completed=TRUE, submission=$2::jsonb, result=$3::jsonb, completed_at=$4
		 WHERE id=$1 AND NOT completed`,
		quizID, string(rawAnswers), string(rawResult), at)
	if err != nil {
		return fmt.Errorf("complete quiz: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quizzes WHERE id=$1)`, quizID).Scan(&exists); err != nil {
		return fmt.Errorf("check quiz: %w", err)
	}
	if !exists {
		return domain.ErrQuizNotFound
	}
	return domain.ErrQuizCompleted
}
