package cli

import (
	"bytes"
	"strings"
	"testing"

	"quizpro/internal/domain"
)

func TestRenderQuestionAndTicks(t *testing.T) {
	var out bytes.Buffer
	question := domain.Question{ID: "q1", Prompt: "Capital of France?", Options: []string{"Paris", "Rome"}}

	done := render(&out, domain.SessionEvent{Type: domain.EventState, State: domain.SessionState{Index: 0, Total: 5, Remaining: 150, Question: &question}})
	if done {
		t.Fatalf("state event must not end the session")
	}
	render(&out, domain.SessionEvent{Type: domain.EventTick, State: domain.SessionState{Remaining: 12}})
	render(&out, domain.SessionEvent{Type: domain.EventTick, State: domain.SessionState{Remaining: 5}})

	text := out.String()
	if !strings.Contains(text, "Question 1/5 (150s): Capital of France?") || !strings.Contains(text, "  2) Rome") {
		t.Fatalf("question not rendered:\n%s", text)
	}
	if strings.Contains(text, "12s left") || !strings.Contains(text, "5s left") {
		t.Fatalf("expected only the final countdown ticks:\n%s", text)
	}
}

func TestRenderTerminalEvents(t *testing.T) {
	var out bytes.Buffer
	if !render(&out, domain.SessionEvent{Type: domain.EventAbandoned}) {
		t.Fatalf("abandoned must end the session")
	}
	if render(&out, domain.SessionEvent{Type: domain.EventSubmissionFailed, Error: "gateway down"}) {
		t.Fatalf("failed submission leaves the session retryable")
	}
	if !strings.Contains(out.String(), "submission failed: gateway down (r to retry)") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
	if got := optionText([]string{"A"}, domain.NoSelection); got != "no answer" {
		t.Fatalf("expected no answer, got %q", got)
	}
}
