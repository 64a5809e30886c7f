package quizapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"quizpro/internal/domain"
	"quizpro/internal/httpx"
)

// Client talks to the quiz API over HTTP. It is the remote QuizGenerator,
// SubmissionGateway and LobbySource.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	timeout time.Duration
	retry   httpx.Policy
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
		retry:   httpx.DefaultPolicy,
	}
}

// WithRetryPolicy returns a copy of the client using policy for submissions.
func (c *Client) WithRetryPolicy(policy httpx.Policy) *Client {
	cp := *c
	cp.retry = policy
	return &cp
}

// Generate requests a new quiz. Generation is not idempotent and is never retried.
func (c *Client) Generate(ctx context.Context, req domain.GenerateRequest) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := c.do(ctx, httpx.Policy{}, http.MethodPost, "/api/quiz/generate", req, &quiz)
	if err != nil {
		return domain.Quiz{}, mapError(err, domain.ErrInvalidRequest)
	}
	return quiz, nil
}

// SubmitBudget is how long a caller should allow Submit, covering every
// retry at the full per-request timeout.
func (c *Client) SubmitBudget() time.Duration {
	return c.retry.Budget(c.timeout)
}

// Submit sends the finalize payload. Retries assume the API replays the
// stored result for an identical payload. An API that answers every
// resubmission with "Quiz already completed" turns a retry after a lost
// response into ErrQuizCompleted; the session then stays in finalizing and
// the result has to be read from the API's history instead.
func (c *Client) Submit(ctx context.Context, submission domain.Submission) (domain.Result, error) {
	var result domain.Result
	err := c.do(ctx, c.retry, http.MethodPost, "/api/quiz/submit", submission, &result)
	if err != nil {
		return domain.Result{}, mapError(err, domain.ErrInvalidSubmission)
	}
	return result, nil
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var body struct {
		Categories []string `json:"categories"`
	}
	if err := c.do(ctx, c.retry, http.MethodGet, "/api/quiz/categories", nil, &body); err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	return body.Categories, nil
}

func (c *Client) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	var body struct {
		Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
	}
	if err := c.do(ctx, c.retry, http.MethodGet, "/api/leaderboard?limit="+strconv.Itoa(limit), nil, &body); err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}
	return body.Leaderboard, nil
}

func (c *Client) History(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	var body struct {
		History []domain.HistoryEntry `json:"history"`
	}
	if err := c.do(ctx, c.retry, http.MethodGet, "/api/user/history?limit="+strconv.Itoa(limit), nil, &body); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return body.History, nil
}

func (c *Client) Profile(ctx context.Context) (domain.Profile, error) {
	var profile domain.Profile
	if err := c.do(ctx, c.retry, http.MethodGet, "/api/user/profile", nil, &profile); err != nil {
		return domain.Profile{}, fmt.Errorf("fetch profile: %w", err)
	}
	return profile, nil
}

func (c *Client) do(ctx context.Context, policy httpx.Policy, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	endpoint := c.baseURL + path

	resp, err := httpx.DoWithRetry(ctx, c.http, policy, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// mapError turns API status codes back into domain errors.
func mapError(err error, badRequest error) error {
	var statusErr *httpx.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}
	switch {
	case statusErr.Status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrQuizNotFound, detail(statusErr.Body))
	case statusErr.Status == http.StatusBadRequest && strings.Contains(strings.ToLower(statusErr.Body), "already completed"):
		return fmt.Errorf("%w: %s", domain.ErrQuizCompleted, detail(statusErr.Body))
	case statusErr.Status == http.StatusBadRequest || statusErr.Status == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", badRequest, detail(statusErr.Body))
	}
	return err
}

func detail(body string) string {
	var parsed struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err == nil && parsed.Detail != nil {
		if s, ok := parsed.Detail.(string); ok {
			return s
		}
	}
	return body
}
