package quizapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"quizpro/internal/app"
	"quizpro/internal/domain"
	"quizpro/internal/httpx"
	"quizpro/internal/infra/memory"
	"quizpro/internal/infra/quizapi"
	transport "quizpro/internal/transport/http"
)

func TestClientAgainstAPIHandler(t *testing.T) {
	grader := app.NewGrader(memory.NewQuizStore(), 0)
	mux := http.NewServeMux()
	transport.NewAPIHandler(grader).Register(mux)
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx := context.Background()
	client := quizapi.NewClient(server.URL+"/", "", 5*time.Second)

	categories, err := client.Categories(ctx)
	if err != nil || len(categories) != 10 {
		t.Fatalf("categories: %v %v", categories, err)
	}

	quiz, err := client.Generate(ctx, domain.GenerateRequest{Category: "History", Difficulty: domain.DifficultyMedium, NumQuestions: 5})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(quiz.Questions) != 5 || quiz.TimeLimit != 150 || quiz.TotalPossiblePoints != 100 {
		t.Fatalf("unexpected quiz %+v", quiz)
	}

	submission := domain.Submission{QuizID: quiz.ID}
	for _, q := range quiz.Questions {
		submission.Answers = append(submission.Answers, domain.Answer{QuestionID: q.ID, SelectedAnswer: 0, TimeTaken: 2})
	}
	result, err := client.Submit(ctx, submission)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.TotalScore != 100 || result.MoneyEarned != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	// Retrying the identical payload is safe.
	again, err := client.Submit(ctx, submission)
	if err != nil || again.TotalScore != result.TotalScore {
		t.Fatalf("resubmit: %+v %v", again, err)
	}

	submission.Answers[0].SelectedAnswer = 1
	if _, err := client.Submit(ctx, submission); !errors.Is(err, domain.ErrQuizCompleted) {
		t.Fatalf("expected completed error, got %v", err)
	}
	if _, err := client.Submit(ctx, domain.Submission{QuizID: "missing"}); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := client.Generate(ctx, domain.GenerateRequest{Category: "History", Difficulty: "Brutal", NumQuestions: 5}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}

func TestClientRetriesSubmitButNotGenerate(t *testing.T) {
	var submits, generates atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/quiz/submit", func(w http.ResponseWriter, r *http.Request) {
		if submits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quiz_id":"quiz-1","total_score":20}`))
	})
	mux.HandleFunc("POST /api/quiz/generate", func(w http.ResponseWriter, r *http.Request) {
		generates.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := quizapi.NewClient(server.URL, "", 5*time.Second).
		WithRetryPolicy(httpx.Policy{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond})

	result, err := client.Submit(context.Background(), domain.Submission{QuizID: "quiz-1"})
	if err != nil || result.TotalScore != 20 {
		t.Fatalf("submit: %+v %v", result, err)
	}
	if submits.Load() != 2 {
		t.Fatalf("expected one retry, got %d calls", submits.Load())
	}

	_, err = client.Generate(context.Background(), domain.GenerateRequest{Category: "History", Difficulty: domain.DifficultyEasy, NumQuestions: 5})
	var statusErr *httpx.StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 status error, got %v", err)
	}
	if generates.Load() != 1 {
		t.Fatalf("generate must not be retried, got %d calls", generates.Load())
	}
}

func TestClientSendsBearerToken(t *testing.T) {
	var auth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user_id":"u1","full_name":"Ada","total_points":40}`))
	}))
	defer server.Close()

	profile, err := quizapi.NewClient(server.URL, "secret", time.Second).Profile(context.Background())
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.UserID != "u1" || profile.TotalPoints != 40 {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if got := auth.Load(); got != "Bearer secret" {
		t.Fatalf("expected bearer token, got %v", got)
	}
}

func TestSubmitBudgetOutlastsRetries(t *testing.T) {
	client := quizapi.NewClient("http://quiz.invalid", "", 10*time.Second)
	if got := client.SubmitBudget(); got <= 10*time.Second {
		t.Fatalf("submit budget %s leaves no room for retries", got)
	}

	single := client.WithRetryPolicy(httpx.Policy{})
	if got := single.SubmitBudget(); got != 10*time.Second {
		t.Fatalf("expected one attempt budget, got %s", got)
	}
}

func TestSubmitRetryAfterLostResponseAgainstStrictAPI(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			// graded, but the response never makes it back
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Quiz already completed"}`))
	}))
	defer server.Close()

	client := quizapi.NewClient(server.URL, "", time.Second).
		WithRetryPolicy(httpx.Policy{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond})
	_, err := client.Submit(context.Background(), domain.Submission{QuizID: "quiz-1"})
	if !errors.Is(err, domain.ErrQuizCompleted) {
		t.Fatalf("expected completed error, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected the 400 to stop retries, got %d calls", calls.Load())
	}
}
