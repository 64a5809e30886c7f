package app_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"quizpro/internal/app"
	"quizpro/internal/domain"
	"quizpro/internal/infra/memory"
)

func TestGenerateBuildsPlayableQuiz(t *testing.T) {
	grader := newTestGrader(memory.NewQuizStore())

	quiz, err := grader.Generate(context.Background(), domain.GenerateRequest{Category: "Geography", Difficulty: domain.DifficultyHard, NumQuestions: 10})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if quiz.ID != "quiz-1" || len(quiz.Questions) != 10 {
		t.Fatalf("unexpected quiz %s with %d questions", quiz.ID, len(quiz.Questions))
	}
	if quiz.TimeLimit != 300 || quiz.TotalPossiblePoints != 300 {
		t.Fatalf("expected 300s / 300 points, got %ds / %d", quiz.TimeLimit, quiz.TotalPossiblePoints)
	}
	for _, q := range quiz.Questions {
		if q.Points != 30 || len(q.Options) != 4 {
			t.Fatalf("unexpected question %+v", q)
		}
	}
	if err := quiz.Validate(); err != nil {
		t.Fatalf("generated quiz invalid: %v", err)
	}
}

func TestGenerateValidatesRequest(t *testing.T) {
	grader := newTestGrader(memory.NewQuizStore())
	bad := []domain.GenerateRequest{
		{Category: "", Difficulty: domain.DifficultyEasy, NumQuestions: 5},
		{Category: "History", Difficulty: "Impossible", NumQuestions: 5},
		{Category: "History", Difficulty: domain.DifficultyEasy, NumQuestions: 0},
	}
	for _, req := range bad {
		if _, err := grader.Generate(context.Background(), req); !errors.Is(err, domain.ErrInvalidRequest) {
			t.Fatalf("%+v: expected invalid request, got %v", req, err)
		}
	}
}

func TestSubmitScoresAnswers(t *testing.T) {
	ctx := context.Background()
	grader := newTestGrader(memory.NewQuizStore())
	quiz, _ := grader.Generate(ctx, domain.GenerateRequest{Category: "Science & Technology", Difficulty: domain.DifficultyEasy, NumQuestions: 5})

	answers := []domain.Answer{
		{QuestionID: quiz.Questions[0].ID, SelectedAnswer: 0, TimeTaken: 10},
		{QuestionID: quiz.Questions[1].ID, SelectedAnswer: 0, TimeTaken: 10},
		{QuestionID: quiz.Questions[2].ID, SelectedAnswer: 2, TimeTaken: 10},
		{QuestionID: quiz.Questions[3].ID, SelectedAnswer: 0, TimeTaken: 10},
		{QuestionID: quiz.Questions[4].ID, SelectedAnswer: domain.NoSelection, TimeTaken: 30},
	}
	result, err := grader.Submit(ctx, domain.Submission{QuizID: quiz.ID, Answers: answers})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if result.TotalScore != 30 || result.CorrectAnswers != 3 || result.TotalQuestions != 5 {
		t.Fatalf("unexpected score %+v", result)
	}
	if result.Accuracy != 60 || result.MoneyEarned != 0.3 || result.PointsEarned != 30 {
		t.Fatalf("unexpected accuracy/money %v/%v", result.Accuracy, result.MoneyEarned)
	}
	last := result.Results[4]
	if last.IsCorrect || last.SelectedAnswer != domain.NoSelection || last.CorrectAnswer != 0 || last.TimeTaken != 30 {
		t.Fatalf("unexpected timeout breakdown %+v", last)
	}
	if last.Explanation == "" || len(last.Options) != 4 {
		t.Fatalf("breakdown missing explanation/options")
	}
}

func TestSubmitIsIdempotentForSamePayload(t *testing.T) {
	ctx := context.Background()
	grader := newTestGrader(memory.NewQuizStore())
	quiz, _ := grader.Generate(ctx, domain.GenerateRequest{Category: "Sports", Difficulty: domain.DifficultyEasy, NumQuestions: 5})
	submission := domain.Submission{QuizID: quiz.ID, Answers: answersFor(quiz, 0)}

	first, err := grader.Submit(ctx, submission)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second, err := grader.Submit(ctx, submission)
	if err != nil {
		t.Fatalf("retry submit: %v", err)
	}
	if first.TotalScore != second.TotalScore || second.TotalScore != 50 {
		t.Fatalf("retry returned a different result: %d vs %d", first.TotalScore, second.TotalScore)
	}

	_, err = grader.Submit(ctx, domain.Submission{QuizID: quiz.ID, Answers: answersFor(quiz, 1)})
	if !errors.Is(err, domain.ErrQuizCompleted) {
		t.Fatalf("expected completed error for changed answers, got %v", err)
	}
}

func TestSubmitRejectsMisalignedAnswers(t *testing.T) {
	ctx := context.Background()
	grader := newTestGrader(memory.NewQuizStore())
	quiz, _ := grader.Generate(ctx, domain.GenerateRequest{Category: "Literature", Difficulty: domain.DifficultyEasy, NumQuestions: 5})

	short := answersFor(quiz, 0)[:4]
	swapped := answersFor(quiz, 0)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	outOfRange := answersFor(quiz, 0)
	outOfRange[2].SelectedAnswer = 4

	for name, answers := range map[string][]domain.Answer{"short": short, "swapped": swapped, "out of range": outOfRange} {
		_, err := grader.Submit(ctx, domain.Submission{QuizID: quiz.ID, Answers: answers})
		if !errors.Is(err, domain.ErrInvalidSubmission) {
			t.Fatalf("%s: expected invalid submission, got %v", name, err)
		}
	}

	// rejected submissions leave the quiz gradable
	if _, err := grader.Submit(ctx, domain.Submission{QuizID: quiz.ID, Answers: answersFor(quiz, 0)}); err != nil {
		t.Fatalf("valid submit after rejections: %v", err)
	}
}

func TestSubmitUnknownQuiz(t *testing.T) {
	grader := newTestGrader(memory.NewQuizStore())
	_, err := grader.Submit(context.Background(), domain.Submission{QuizID: "missing"})
	if !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func newTestGrader(store app.QuizStore) *app.Grader {
	ids := 0
	return app.NewGraderWithClock(store,
		func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		func() string {
			ids++
			return "quiz-" + strconv.Itoa(ids)
		})
}

func answersFor(quiz domain.Quiz, option int) []domain.Answer {
	answers := make([]domain.Answer, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		answers = append(answers, domain.Answer{QuestionID: q.ID, SelectedAnswer: option, TimeTaken: 5})
	}
	return answers
}
