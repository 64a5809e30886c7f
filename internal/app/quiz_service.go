package app

import (
	"context"
	"log"
	"time"

	"quizpro/internal/domain"

	"github.com/google/uuid"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuizGenerator produces a playable quiz for a request.
type QuizGenerator interface {
	Generate(ctx context.Context, req domain.GenerateRequest) (domain.Quiz, error)
}

// SubmissionGateway exchanges a completed answer set for the authoritative result.
// Implementations must tolerate being called again with the same submission.
type SubmissionGateway interface {
	Submit(ctx context.Context, submission domain.Submission) (domain.Result, error)
}

// QuizService contains the quiz session use cases.
type QuizService struct {
	sessions        SessionRepository
	generator       QuizGenerator
	gateway         SubmissionGateway
	questionSeconds int
	submitTimeout   time.Duration
	newTicker       TickerFactory
	newID           func() string
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithTicker replaces the per-second ticker. A nil factory disables the
// background clock; callers then drive sessions through Tick.
func WithTicker(factory TickerFactory) Option {
	return func(s *QuizService) { s.newTicker = factory }
}

// WithQuestionSeconds overrides the per-question countdown.
func WithQuestionSeconds(seconds int) Option {
	return func(s *QuizService) {
		if seconds > 0 {
			s.questionSeconds = seconds
		}
	}
}

// WithSubmitTimeout bounds each gateway call.
func WithSubmitTimeout(timeout time.Duration) Option {
	return func(s *QuizService) {
		if timeout > 0 {
			s.submitTimeout = timeout
		}
	}
}

// WithIDGenerator is test-only for deterministic session ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *QuizService) { s.newID = newID }
}

func NewQuizService(store SessionRepository, generator QuizGenerator, gateway SubmissionGateway, opts ...Option) *QuizService {
	s := &QuizService{
		sessions:        store,
		generator:       generator,
		gateway:         gateway,
		questionSeconds: domain.QuestionSeconds,
		submitTimeout:   15 * time.Second,
		newTicker:       NewSecondTicker,
		newID:           uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start generates a quiz and opens a session on its first question.
func (s *QuizService) Start(ctx context.Context, req domain.GenerateRequest) (domain.SessionState, error) {
	if err := req.Validate(); err != nil {
		return domain.SessionState{}, err
	}
	quiz, err := s.generator.Generate(ctx, req)
	if err != nil {
		return domain.SessionState{}, err
	}
	return s.StartQuiz(quiz)
}

// StartQuiz opens a session for an already generated quiz.
func (s *QuizService) StartQuiz(quiz domain.Quiz) (domain.SessionState, error) {
	session, err := NewSession(s.newID(), quiz, s.gateway, s.questionSeconds)
	if err != nil {
		return domain.SessionState{}, err
	}
	s.sessions.Put(session)

	if s.newTicker != nil {
		driverCtx, cancel := context.WithCancel(context.Background())
		session.setStop(cancel)
		go RunClock(driverCtx, session, s.newTicker(), s.finalizeInBackground)
	}
	return session.State(), nil
}

// State returns the current snapshot of a session.
func (s *QuizService) State(_ context.Context, sessionID string) (domain.SessionState, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	return session.State(), nil
}

// Select highlights an option on the current question.
func (s *QuizService) Select(_ context.Context, sessionID string, option int) (domain.SessionState, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	return session.Select(option)
}

// Advance commits the selection. Committing the last question submits the ledger.
func (s *QuizService) Advance(ctx context.Context, sessionID string) (domain.SessionState, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	state, err := session.Advance()
	if err != nil {
		return state, err
	}
	if state.Phase == domain.PhaseFinalizing {
		return s.finalize(ctx, session)
	}
	return state, nil
}

// Tick advances a session's clock by one second. Used when the background
// clock is disabled.
func (s *QuizService) Tick(ctx context.Context, sessionID string) (domain.SessionState, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	state, err := session.Tick()
	if err != nil {
		return state, err
	}
	if state.Phase == domain.PhaseFinalizing {
		return s.finalize(ctx, session)
	}
	return state, nil
}

// Finalize (re)submits a session waiting in the finalizing phase.
func (s *QuizService) Finalize(ctx context.Context, sessionID string) (domain.SessionState, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	return s.finalize(ctx, session)
}

// Subscribe returns a channel that receives session events.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan domain.SessionEvent, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Abandon stops a session and forgets it. Nothing is submitted.
func (s *QuizService) Abandon(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Abandon()
	s.sessions.Delete(sessionID)
}

func (s *QuizService) finalize(ctx context.Context, session *Session) (domain.SessionState, error) {
	ctx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	defer cancel()
	return session.Finalize(ctx)
}

func (s *QuizService) finalizeInBackground(session *Session) {
	if _, err := s.finalize(context.Background(), session); err != nil {
		log.Printf("finalize session %s: %v", session.ID(), err)
	}
}
