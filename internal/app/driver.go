package app

import (
	"context"
	"time"

	"quizpro/internal/domain"
)

// Ticker delivers one value per elapsed question second.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory builds the ticker a session's clock driver listens to.
type TickerFactory func() Ticker

type realTicker struct {
	t *time.Ticker
}

// NewSecondTicker ticks once per wall-clock second.
func NewSecondTicker() Ticker {
	return realTicker{t: time.NewTicker(time.Second)}
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// RunClock feeds ticks into the session until it leaves the answering phase
// or ctx ends. When a tick expires the last question, onFinalizing is called
// from the driver goroutine.
func RunClock(ctx context.Context, session *Session, ticker Ticker, onFinalizing func(*Session)) {
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			state, err := session.Tick()
			if err != nil {
				// The session moved on through a user action.
				return
			}
			if state.Phase == domain.PhaseFinalizing {
				if onFinalizing != nil {
					onFinalizing(session)
				}
				return
			}
		}
	}
}
