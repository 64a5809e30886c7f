package domain

import (
	"fmt"
	"time"
)

// Difficulty is the tier a quiz is generated at.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Points returns the per-question value of the tier.
func (d Difficulty) Points() int {
	switch d {
	case DifficultyMedium:
		return 20
	case DifficultyHard:
		return 30
	default:
		return 10
	}
}

// NoSelection is recorded when a question times out before any option was chosen.
const NoSelection = -1

// QuestionSeconds is the countdown every question gets.
const QuestionSeconds = 30

// GenerateRequest asks the quiz API for a new quiz.
type GenerateRequest struct {
	Category     string     `json:"category"`
	Difficulty   Difficulty `json:"difficulty"`
	NumQuestions int        `json:"num_questions"`
}

// Validate checks the request against the supported shapes.
func (r GenerateRequest) Validate() error {
	if r.Category == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidRequest)
	}
	if !r.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidRequest, r.Difficulty)
	}
	switch r.NumQuestions {
	case 5, 10, 15:
	default:
		return fmt.Errorf("%w: num_questions must be 5, 10 or 15", ErrInvalidRequest)
	}
	return nil
}

// Question models an MCQ question as the player sees it. Options are
// identified by their position.
type Question struct {
	ID         string     `json:"id"`
	Prompt     string     `json:"question"`
	Options    []string   `json:"options"`
	Points     int        `json:"points"`
	Category   string     `json:"category,omitempty"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
}

// Quiz is an immutable, generated set of questions.
type Quiz struct {
	ID                  string     `json:"quiz_id"`
	Category            string     `json:"category"`
	Difficulty          Difficulty `json:"difficulty"`
	Questions           []Question `json:"questions"`
	TimeLimit           int        `json:"time_limit"`
	TotalPossiblePoints int        `json:"total_possible_points"`
}

// Validate rejects quizzes a session cannot be played against.
func (q Quiz) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: missing quiz id", ErrMalformedQuiz)
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: quiz %s has no questions", ErrMalformedQuiz, q.ID)
	}
	if q.TimeLimit < 0 {
		return fmt.Errorf("%w: negative time limit", ErrMalformedQuiz)
	}
	seen := make(map[string]struct{}, len(q.Questions))
	for i, question := range q.Questions {
		if question.ID == "" {
			return fmt.Errorf("%w: question %d has no id", ErrMalformedQuiz, i)
		}
		if _, dup := seen[question.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %s", ErrMalformedQuiz, question.ID)
		}
		seen[question.ID] = struct{}{}
		if len(question.Options) < 2 {
			return fmt.Errorf("%w: question %s needs at least two options", ErrMalformedQuiz, question.ID)
		}
	}
	return nil
}

// Answer is one ledger entry.
type Answer struct {
	QuestionID     string  `json:"question_id"`
	SelectedAnswer int     `json:"selected_answer"`
	TimeTaken      float64 `json:"time_taken"`
}

// Submission is the finalize payload sent to the submission gateway.
type Submission struct {
	QuizID  string   `json:"quiz_id"`
	Answers []Answer `json:"answers"`
}

// QuestionResult is the graded breakdown of one answer.
type QuestionResult struct {
	QuestionID     string   `json:"question_id"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	SelectedAnswer int      `json:"selected_answer"`
	CorrectAnswer  int      `json:"correct_answer"`
	IsCorrect      bool     `json:"is_correct"`
	PointsEarned   int      `json:"points_earned"`
	Explanation    string   `json:"explanation"`
	TimeTaken      float64  `json:"time_taken"`
}

// Result is the authoritative score returned after submission.
type Result struct {
	QuizID         string           `json:"quiz_id"`
	TotalScore     int              `json:"total_score"`
	CorrectAnswers int              `json:"correct_answers"`
	TotalQuestions int              `json:"total_questions"`
	Accuracy       float64          `json:"accuracy"`
	PointsEarned   int              `json:"points_earned"`
	MoneyEarned    float64          `json:"money_earned"`
	Results        []QuestionResult `json:"results"`
}

// AnswerKey holds what the player never sees before submission.
type AnswerKey struct {
	QuestionID    string `json:"question_id"`
	CorrectAnswer int    `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// QuizRecord is the grading backend's view of a generated quiz.
type QuizRecord struct {
	Quiz        Quiz        `json:"quiz"`
	Keys        []AnswerKey `json:"keys"`
	Completed   bool        `json:"completed"`
	Submission  []Answer    `json:"submission,omitempty"`
	Result      *Result     `json:"result,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}
