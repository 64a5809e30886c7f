package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"quizpro/internal/domain"
)

// Session is one player's timed run through a quiz. Every transition takes
// the session lock, so user actions and clock ticks are applied one at a time
// in the order they arrive.
type Session struct {
	id        string
	quiz      domain.Quiz
	limit     int
	gateway   SubmissionGateway
	now       func() time.Time
	startedAt time.Time

	mu          sync.Mutex
	phase       domain.Phase
	index       int
	selection   *int
	clock       QuestionClock
	ledger      *AnswerLedger
	submitting  bool
	result      *domain.Result
	stop        func()
	subscribers map[chan domain.SessionEvent]struct{}
}

// NewSession validates the quiz and arms the clock for its first question.
func NewSession(id string, quiz domain.Quiz, gateway SubmissionGateway, questionSeconds int) (*Session, error) {
	return NewSessionWithClock(id, quiz, gateway, questionSeconds, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(id string, quiz domain.Quiz, gateway SubmissionGateway, questionSeconds int, now func() time.Time) (*Session, error) {
	if err := quiz.Validate(); err != nil {
		return nil, err
	}
	if gateway == nil {
		return nil, errors.New("session requires a submission gateway")
	}
	if questionSeconds <= 0 {
		questionSeconds = domain.QuestionSeconds
	}
	s := &Session{
		id:          id,
		quiz:        quiz,
		limit:       questionSeconds,
		gateway:     gateway,
		now:         now,
		startedAt:   now(),
		phase:       domain.PhaseAnswering,
		ledger:      NewAnswerLedger(len(quiz.Questions)),
		subscribers: make(map[chan domain.SessionEvent]struct{}),
	}
	// The quiz-wide time limit only seeds the first countdown.
	first := quiz.TimeLimit
	if first <= 0 {
		first = questionSeconds
	}
	s.clock.Start(first)
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Quiz() domain.Quiz {
	return s.quiz
}

// State returns a snapshot of the session.
func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Select highlights an option of the current question. It never commits.
func (s *Session) Select(option int) (domain.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseAnswering {
		return s.snapshotLocked(), fmt.Errorf("%w: cannot select while %s", domain.ErrInvalidTransition, s.phase)
	}
	question := s.quiz.Questions[s.index]
	if option < 0 || option >= len(question.Options) {
		return s.snapshotLocked(), fmt.Errorf("%w: %d for question %s", domain.ErrOptionNotFound, option, question.ID)
	}
	selected := option
	s.selection = &selected
	return s.broadcastLocked(domain.EventSelected, ""), nil
}

// Advance commits the held selection for the current question.
func (s *Session) Advance() (domain.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseAnswering {
		return s.snapshotLocked(), fmt.Errorf("%w: cannot advance while %s", domain.ErrInvalidTransition, s.phase)
	}
	if s.selection == nil {
		return s.snapshotLocked(), fmt.Errorf("%w: no option selected", domain.ErrInvalidTransition)
	}
	if err := s.commitLocked(*s.selection); err != nil {
		return s.snapshotLocked(), err
	}
	s.clock.Cancel()
	return s.advanceLocked(), nil
}

// Tick feeds one elapsed second to the clock. On expiry the held selection,
// or NoSelection, is committed.
func (s *Session) Tick() (domain.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseAnswering {
		return s.snapshotLocked(), fmt.Errorf("%w: no running question while %s", domain.ErrInvalidTransition, s.phase)
	}
	if !s.clock.Tick() {
		return s.broadcastLocked(domain.EventTick, ""), nil
	}
	selected := domain.NoSelection
	if s.selection != nil {
		selected = *s.selection
	}
	if err := s.commitLocked(selected); err != nil {
		return s.snapshotLocked(), err
	}
	return s.advanceLocked(), nil
}

// Finalize sends the ledger to the submission gateway. The lock is released
// while the call is pending; concurrent Finalize calls are rejected.
func (s *Session) Finalize(ctx context.Context) (domain.SessionState, error) {
	s.mu.Lock()
	if s.phase != domain.PhaseFinalizing {
		defer s.mu.Unlock()
		return s.snapshotLocked(), fmt.Errorf("%w: cannot finalize while %s", domain.ErrInvalidTransition, s.phase)
	}
	if s.submitting {
		defer s.mu.Unlock()
		return s.snapshotLocked(), fmt.Errorf("%w: submission already in flight", domain.ErrInvalidTransition)
	}
	s.submitting = true
	submission := domain.Submission{QuizID: s.quiz.ID, Answers: s.ledger.Snapshot()}
	s.mu.Unlock()

	result, err := s.gateway.Submit(ctx, submission)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if s.phase != domain.PhaseFinalizing {
		return s.snapshotLocked(), fmt.Errorf("%w: session %s while submitting", domain.ErrInvalidTransition, s.phase)
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrSubmissionFailed, err)
		return s.broadcastLocked(domain.EventSubmissionFailed, err.Error()), err
	}
	s.result = &result
	s.phase = domain.PhaseCompleted
	return s.broadcastLocked(domain.EventCompleted, ""), nil
}

// Result returns the graded result once the session completed.
func (s *Session) Result() (domain.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.Result{}, false
	}
	return *s.result, true
}

// Submission returns the payload Finalize sends.
func (s *Session) Submission() domain.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Submission{QuizID: s.quiz.ID, Answers: s.ledger.Snapshot()}
}

// Abandon stops the clock and closes all subscriptions. A completed session
// keeps its phase.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clock.Cancel()
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	if !s.phase.Terminal() {
		s.phase = domain.PhaseAbandoned
		s.broadcastLocked(domain.EventAbandoned, "")
	}
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// setStop registers the function that halts the background clock driver.
func (s *Session) setStop(stop func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == domain.PhaseAbandoned {
		stop()
		return
	}
	s.stop = stop
}

// Subscribe returns a channel of session events, starting with the current
// state. The caller must invoke the returned cancel function.
func (s *Session) Subscribe() (<-chan domain.SessionEvent, func()) {
	ch := make(chan domain.SessionEvent, 8)

	s.mu.Lock()
	initial := domain.SessionEvent{Type: domain.EventState, State: s.snapshotLocked()}
	ch <- initial
	if s.phase == domain.PhaseAbandoned {
		close(ch)
		s.mu.Unlock()
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) commitLocked(selected int) error {
	return s.ledger.Record(domain.Answer{
		QuestionID:     s.quiz.Questions[s.index].ID,
		SelectedAnswer: selected,
		TimeTaken:      elapsedSeconds(s.limit, s.clock.Remaining()),
	})
}

// advanceLocked moves past a committed question: to the next one, or to
// finalizing after the last.
func (s *Session) advanceLocked() domain.SessionState {
	s.selection = nil
	s.index++
	if s.index >= len(s.quiz.Questions) {
		s.index = len(s.quiz.Questions)
		s.clock.Cancel()
		s.phase = domain.PhaseFinalizing
		return s.broadcastLocked(domain.EventFinalizing, "")
	}
	s.clock.Start(s.limit)
	return s.broadcastLocked(domain.EventAdvanced, "")
}

// elapsedSeconds is limit - remaining for a clock started at limit. Only the
// first question, whose clock is seeded with the quiz-wide time limit, can
// hold more than limit; it is reduced modulo limit.
func elapsedSeconds(limit, remaining int) float64 {
	if remaining <= limit {
		return float64(limit - remaining)
	}
	return float64((limit - remaining%limit) % limit)
}

func (s *Session) broadcastLocked(eventType, message string) domain.SessionState {
	state := s.snapshotLocked()
	event := domain.SessionEvent{Type: eventType, State: state, Error: message}
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Drop the oldest queued event rather than block the transition on a slow reader.
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
	return state
}

func (s *Session) snapshotLocked() domain.SessionState {
	state := domain.SessionState{
		SessionID:  s.id,
		QuizID:     s.quiz.ID,
		Phase:      s.phase,
		Index:      s.index,
		Total:      len(s.quiz.Questions),
		Remaining:  s.clock.Remaining(),
		Answers:    s.ledger.Snapshot(),
		Submitting: s.submitting,
		StartedAt:  s.startedAt,
	}
	if s.phase == domain.PhaseAnswering && s.index < len(s.quiz.Questions) {
		question := s.quiz.Questions[s.index]
		state.Question = &question
	}
	if s.selection != nil {
		selected := *s.selection
		state.Selection = &selected
	}
	if s.result != nil {
		result := *s.result
		state.Result = &result
	}
	return state
}
