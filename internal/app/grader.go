package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quizpro/internal/domain"

	"github.com/google/uuid"
)

// QuizStore persists generated quizzes together with their answer keys.
type QuizStore interface {
	SaveQuiz(ctx context.Context, record domain.QuizRecord) error
	LoadQuiz(ctx context.Context, quizID string) (domain.QuizRecord, error)
	// CompleteQuiz stores the graded submission. It returns ErrQuizCompleted
	// when the quiz was already graded.
	CompleteQuiz(ctx context.Context, quizID string, answers []domain.Answer, result domain.Result, at time.Time) error
}

var categories = []string{
	"General Knowledge",
	"Science & Technology",
	"History",
	"Geography",
	"Sports",
	"Entertainment",
	"Literature",
	"Mathematics",
	"Current Affairs",
	"Art & Culture",
}

// Grader is an in-process quiz backend: it generates quizzes, keeps their
// answer keys and grades submissions. It satisfies both QuizGenerator and
// SubmissionGateway.
type Grader struct {
	store           QuizStore
	questionSeconds int
	now             func() time.Time
	newID           func() string
}

// NewGrader builds a grader whose quizzes allow questionSeconds per question.
func NewGrader(store QuizStore, questionSeconds int) *Grader {
	if questionSeconds <= 0 {
		questionSeconds = domain.QuestionSeconds
	}
	return &Grader{
		store:           store,
		questionSeconds: questionSeconds,
		now:             time.Now,
		newID:           uuid.NewString,
	}
}

// NewGraderWithClock is test-only for deterministic ids and timestamps.
func NewGraderWithClock(store QuizStore, now func() time.Time, newID func() string) *Grader {
	g := NewGrader(store, domain.QuestionSeconds)
	g.now = now
	g.newID = newID
	return g
}

// Categories lists the quiz categories on offer.
func (g *Grader) Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// Generate builds and stores a quiz. The returned quiz carries no answer keys.
func (g *Grader) Generate(ctx context.Context, req domain.GenerateRequest) (domain.Quiz, error) {
	if err := req.Validate(); err != nil {
		return domain.Quiz{}, err
	}
	questions, keys := placeholderQuestions(req)
	total := 0
	for _, q := range questions {
		total += q.Points
	}
	quiz := domain.Quiz{
		ID:                  g.newID(),
		Category:            req.Category,
		Difficulty:          req.Difficulty,
		Questions:           questions,
		TimeLimit:           req.NumQuestions * g.questionSeconds,
		TotalPossiblePoints: total,
	}
	record := domain.QuizRecord{Quiz: quiz, Keys: keys, CreatedAt: g.now()}
	if err := g.store.SaveQuiz(ctx, record); err != nil {
		return domain.Quiz{}, fmt.Errorf("save quiz: %w", err)
	}
	return quiz, nil
}

// Submit grades a submission. Resubmitting the exact answers of an already
// graded quiz returns the stored result.
func (g *Grader) Submit(ctx context.Context, submission domain.Submission) (domain.Result, error) {
	record, err := g.store.LoadQuiz(ctx, submission.QuizID)
	if err != nil {
		return domain.Result{}, err
	}
	if record.Completed {
		return replayResult(record, submission.Answers)
	}

	result, err := Grade(record, submission.Answers)
	if err != nil {
		return domain.Result{}, err
	}
	err = g.store.CompleteQuiz(ctx, submission.QuizID, submission.Answers, result, g.now())
	if errors.Is(err, domain.ErrQuizCompleted) {
		// Lost a race with another submission; answer as if it had been stored first.
		record, err = g.store.LoadQuiz(ctx, submission.QuizID)
		if err != nil {
			return domain.Result{}, err
		}
		return replayResult(record, submission.Answers)
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("complete quiz: %w", err)
	}
	return result, nil
}

// Grade scores answers against the record's keys. Answers must follow the
// question order exactly.
func Grade(record domain.QuizRecord, answers []domain.Answer) (domain.Result, error) {
	quiz := record.Quiz
	if len(answers) != len(quiz.Questions) {
		return domain.Result{}, fmt.Errorf("%w: got %d answers for %d questions", domain.ErrInvalidSubmission, len(answers), len(quiz.Questions))
	}
	if len(record.Keys) != len(quiz.Questions) {
		return domain.Result{}, fmt.Errorf("%w: answer keys do not match questions", domain.ErrMalformedQuiz)
	}

	result := domain.Result{
		QuizID:         quiz.ID,
		TotalQuestions: len(quiz.Questions),
		Results:        make([]domain.QuestionResult, 0, len(answers)),
	}
	for i, answer := range answers {
		question := quiz.Questions[i]
		key := record.Keys[i]
		if answer.QuestionID != question.ID {
			return domain.Result{}, fmt.Errorf("%w: answer %d is for %s, expected %s", domain.ErrInvalidSubmission, i, answer.QuestionID, question.ID)
		}
		if answer.SelectedAnswer < domain.NoSelection || answer.SelectedAnswer >= len(question.Options) {
			return domain.Result{}, fmt.Errorf("%w: option %d out of range for %s", domain.ErrInvalidSubmission, answer.SelectedAnswer, question.ID)
		}
		if answer.TimeTaken < 0 {
			return domain.Result{}, fmt.Errorf("%w: negative time for %s", domain.ErrInvalidSubmission, question.ID)
		}

		correct := answer.SelectedAnswer == key.CorrectAnswer
		earned := 0
		if correct {
			earned = question.Points
			result.CorrectAnswers++
			result.TotalScore += earned
		}
		result.Results = append(result.Results, domain.QuestionResult{
			QuestionID:     question.ID,
			Question:       question.Prompt,
			Options:        question.Options,
			SelectedAnswer: answer.SelectedAnswer,
			CorrectAnswer:  key.CorrectAnswer,
			IsCorrect:      correct,
			PointsEarned:   earned,
			Explanation:    key.Explanation,
			TimeTaken:      answer.TimeTaken,
		})
	}
	result.Accuracy = float64(result.CorrectAnswers) / float64(result.TotalQuestions) * 100
	result.PointsEarned = result.TotalScore
	result.MoneyEarned = float64(result.TotalScore) / 100
	return result, nil
}

func replayResult(record domain.QuizRecord, answers []domain.Answer) (domain.Result, error) {
	if record.Result == nil || !sameAnswers(record.Submission, answers) {
		return domain.Result{}, domain.ErrQuizCompleted
	}
	return *record.Result, nil
}

func sameAnswers(a, b []domain.Answer) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// placeholderQuestions stands in for content generation: four options per
// question with the first one correct.
func placeholderQuestions(req domain.GenerateRequest) ([]domain.Question, []domain.AnswerKey) {
	points := req.Difficulty.Points()
	questions := make([]domain.Question, 0, req.NumQuestions)
	keys := make([]domain.AnswerKey, 0, req.NumQuestions)
	for i := 1; i <= req.NumQuestions; i++ {
		id := fmt.Sprintf("fallback_%d", i)
		questions = append(questions, domain.Question{
			ID:         id,
			Prompt:     fmt.Sprintf("Sample %s question %d about %s?", req.Difficulty, i, req.Category),
			Options:    []string{"Option A", "Option B", "Option C", "Option D"},
			Points:     points,
			Category:   req.Category,
			Difficulty: req.Difficulty,
		})
		keys = append(keys, domain.AnswerKey{
			QuestionID:    id,
			CorrectAnswer: 0,
			Explanation:   fmt.Sprintf("This is a sample explanation for %s", req.Category),
		})
	}
	return questions, keys
}
