package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"quizpro/internal/app"
	"quizpro/internal/config"
	"quizpro/internal/domain"
)

// NewPlayCmd plays one quiz in the terminal against the configured gateway.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		category   string
		difficulty string
		num        int
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a timed quiz in the terminal",
		Long: "Play a timed quiz in the terminal.\n" +
			"Type an option number to select it, n to lock it in and move on, r to retry a failed submission, q to quit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			b, err := buildBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.close()

			req := domain.GenerateRequest{
				Category:     category,
				Difficulty:   domain.Difficulty(difficulty),
				NumQuestions: num,
			}
			return play(cmd.Context(), newService(b, cfg), req, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&category, "category", "General Knowledge", "quiz category")
	cmd.Flags().StringVar(&difficulty, "difficulty", string(domain.DifficultyEasy), "Easy, Medium or Hard")
	cmd.Flags().IntVar(&num, "num", 5, "number of questions (5, 10 or 15)")
	return cmd
}

func play(ctx context.Context, service *app.QuizService, req domain.GenerateRequest, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	state, err := service.Start(ctx, req)
	if err != nil {
		return err
	}
	sessionID := state.SessionID
	defer service.Abandon(context.Background(), sessionID)

	events, cancel, err := service.Subscribe(ctx, sessionID)
	if err != nil {
		return err
	}
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if done := render(out, event); done {
				return nil
			}
		case line, ok := <-lines:
			if !ok {
				// Input closed; let the clock run the quiz out.
				lines = nil
				continue
			}
			if err := handleInput(ctx, service, sessionID, line); err != nil {
				if errors.Is(err, errQuit) {
					fmt.Fprintln(out, "quiz abandoned")
					return nil
				}
				fmt.Fprintf(out, "! %v\n", err)
			}
		}
	}
}

var errQuit = errors.New("quit")

func handleInput(ctx context.Context, service *app.QuizService, sessionID, line string) error {
	switch line {
	case "":
		return nil
	case "q":
		return errQuit
	case "n":
		_, err := service.Advance(ctx, sessionID)
		return err
	case "r":
		_, err := service.Finalize(ctx, sessionID)
		return err
	}
	option, err := strconv.Atoi(line)
	if err != nil {
		return fmt.Errorf("unknown input %q", line)
	}
	_, err = service.Select(ctx, sessionID, option-1)
	return err
}

// render prints an event and reports whether the session is over.
func render(out io.Writer, event domain.SessionEvent) bool {
	state := event.State
	switch event.Type {
	case domain.EventState, domain.EventAdvanced:
		if state.Question != nil {
			fmt.Fprintf(out, "\nQuestion %d/%d (%ds): %s\n", state.Index+1, state.Total, state.Remaining, state.Question.Prompt)
			for i, option := range state.Question.Options {
				fmt.Fprintf(out, "  %d) %s\n", i+1, option)
			}
		}
	case domain.EventSelected:
		if state.Selection != nil {
			fmt.Fprintf(out, "selected %d\n", *state.Selection+1)
		}
	case domain.EventTick:
		if state.Remaining == 10 || state.Remaining <= 5 {
			fmt.Fprintf(out, "%ds left\n", state.Remaining)
		}
	case domain.EventFinalizing:
		fmt.Fprintln(out, "\nsubmitting answers...")
	case domain.EventSubmissionFailed:
		fmt.Fprintf(out, "submission failed: %s (r to retry)\n", event.Error)
	case domain.EventCompleted:
		if state.Result != nil {
			printResult(out, *state.Result)
		}
		return true
	case domain.EventAbandoned:
		return true
	}
	return false
}

func printResult(out io.Writer, result domain.Result) {
	fmt.Fprintf(out, "\nScore %d, %d/%d correct (%.0f%%), earned $%.2f\n",
		result.TotalScore, result.CorrectAnswers, result.TotalQuestions, result.Accuracy, result.MoneyEarned)
	for i, r := range result.Results {
		mark := "x"
		if r.IsCorrect {
			mark = "✓"
		}
		fmt.Fprintf(out, "%s %d. %s\n   you: %s, correct: %s (%.0fs) %s\n",
			mark, i+1, r.Question, optionText(r.Options, r.SelectedAnswer), optionText(r.Options, r.CorrectAnswer), r.TimeTaken, r.Explanation)
	}
}

func optionText(options []string, index int) string {
	if index < 0 || index >= len(options) {
		return "no answer"
	}
	return options[index]
}
