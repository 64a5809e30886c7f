package app_test

import (
	"context"
	"testing"
	"time"

	"quizpro/internal/app"
	"quizpro/internal/domain"
)

type fakeTicker struct {
	ch      chan time.Time
	stopped chan struct{}
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               { close(f.stopped) }

func (f *fakeTicker) tick(t *testing.T) {
	t.Helper()
	select {
	case f.ch <- time.Now():
	case <-time.After(2 * time.Second):
		t.Fatalf("driver stopped listening for ticks")
	}
}

func TestRunClockFinalizesAfterLastExpiry(t *testing.T) {
	session, err := app.NewSession("s1", testQuiz(2), &fakeGateway{}, 2)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	ticker := newFakeTicker()
	finalizing := make(chan *app.Session, 1)
	go app.RunClock(context.Background(), session, ticker, func(s *app.Session) { finalizing <- s })

	for i := 0; i < 4; i++ {
		ticker.tick(t)
	}

	select {
	case s := <-finalizing:
		if s != session {
			t.Fatalf("callback got a different session")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected finalizing callback")
	}
	<-ticker.stopped

	answers := session.State().Answers
	if len(answers) != 2 || answers[0].SelectedAnswer != domain.NoSelection || answers[1].TimeTaken != 2 {
		t.Fatalf("unexpected answers %+v", answers)
	}
}

func TestRunClockStopsOnCancel(t *testing.T) {
	session, _ := app.NewSession("s1", testQuiz(1), &fakeGateway{}, 30)
	ticker := newFakeTicker()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.RunClock(ctx, session, ticker, nil)
		close(done)
	}()

	ticker.tick(t)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("driver did not stop")
	}
	if got := session.State().Remaining; got != 29 {
		t.Fatalf("expected 29 remaining, got %d", got)
	}
}

func TestRunClockExitsWhenUserFinishes(t *testing.T) {
	session, _ := app.NewSession("s1", testQuiz(1), &fakeGateway{}, 30)
	ticker := newFakeTicker()
	done := make(chan struct{})
	go func() {
		app.RunClock(context.Background(), session, ticker, func(*app.Session) {
			t.Errorf("driver must not finalize a manually completed question")
		})
		close(done)
	}()

	_, _ = session.Select(1)
	_, _ = session.Advance()
	ticker.tick(t)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("driver did not exit")
	}
}
