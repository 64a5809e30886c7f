package app

// QuestionClock counts down the seconds left on the current question.
// It does no scheduling of its own: something calls Tick once per elapsed
// second. Callers serialize access.
type QuestionClock struct {
	remaining int
	running   bool
}

// Start (re)arms the clock with limit seconds.
func (c *QuestionClock) Start(limit int) {
	if limit < 0 {
		limit = 0
	}
	c.remaining = limit
	c.running = true
}

// Tick consumes one second and reports whether the clock expired on this tick.
// Expiry is reported once per Start; a stopped clock ignores ticks.
func (c *QuestionClock) Tick() bool {
	if !c.running {
		return false
	}
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining == 0 {
		c.running = false
		return true
	}
	return false
}

// Cancel stops the countdown without expiring.
func (c *QuestionClock) Cancel() {
	c.running = false
}

// Remaining returns the seconds left.
func (c *QuestionClock) Remaining() int {
	return c.remaining
}

// Running reports whether ticks still count down.
func (c *QuestionClock) Running() bool {
	return c.running
}
