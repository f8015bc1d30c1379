package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"globetrotter/internal/app"
	"globetrotter/internal/domain"
)

// gameScreen is the terminal rendition of the game screen. It only renders
// snapshots and forwards choices to the controller.
type gameScreen struct {
	ctrl   *app.Controller
	in     *bufio.Scanner
	out    io.Writer
	origin string
}

func newGameScreen(ctrl *app.Controller, in io.Reader, out io.Writer, origin string) *gameScreen {
	return &gameScreen{ctrl: ctrl, in: bufio.NewScanner(in), out: out, origin: origin}
}

// run loops until the player quits or input ends.
func (s *gameScreen) run(ctx context.Context) error {
	for {
		snap := s.ctrl.Snapshot()
		if snap.Identity == nil {
			return domain.ErrNoIdentity
		}

		var err error
		switch snap.State {
		case domain.StateInitial:
			fmt.Fprintf(s.out, "\nWelcome, %s! Score so far: %d/%d\n", snap.Identity.Username, snap.Identity.CorrectCount, snap.Identity.TotalCount)
			if _, ok := s.prompt("Press Enter to start or q to quit: "); !ok {
				return nil
			}
			err = s.ctrl.Start(ctx)

		case domain.StatePlaying:
			switch {
			case snap.Question == nil:
				fmt.Fprintln(s.out, "The next question could not be loaded.")
				if _, ok := s.prompt("Press Enter to retry or q to quit: "); !ok {
					return nil
				}
				err = s.ctrl.Advance(ctx)
			case snap.Feedback == nil:
				renderQuestion(s.out, snap)
				line, ok := s.prompt(fmt.Sprintf("Your answer (1-%d, q to quit): ", len(snap.Question.Options)))
				if !ok {
					return nil
				}
				option, valid := pickOption(snap.Question, line)
				if !valid {
					fmt.Fprintf(s.out, "Pick a number between 1 and %d.\n", len(snap.Question.Options))
					continue
				}
				var fb domain.Feedback
				if fb, err = s.ctrl.Answer(ctx, option.ID); err == nil {
					renderFeedback(s.out, *snap.Question, fb)
				}
			default:
				if _, ok := s.prompt("Press Enter for the next question or q to quit: "); !ok {
					return nil
				}
				err = s.ctrl.Advance(ctx)
			}

		case domain.StateFinished:
			renderResults(s.out, snap)
			if link, linkErr := s.ctrl.ShareLink(s.origin); linkErr == nil {
				score := snap.Score
				if snap.Results != nil {
					score = app.ResultsScore(*snap.Results)
				}
				renderShare(s.out, link, score)
			}
			line, ok := s.prompt("Press r to play again or q to quit: ")
			if !ok || !strings.EqualFold(line, "r") {
				return nil
			}
			err = s.ctrl.Replay(ctx)
		}

		if err != nil {
			renderError(s.out, err)
			if errors.Is(err, domain.ErrNoIdentity) {
				return err
			}
		}
	}
}

// prompt reads one trimmed line. ok is false on q or end of input.
func (s *gameScreen) prompt(text string) (string, bool) {
	fmt.Fprint(s.out, text)
	if !s.in.Scan() {
		fmt.Fprintln(s.out)
		return "", false
	}
	line := strings.TrimSpace(s.in.Text())
	if strings.EqualFold(line, "q") {
		return "", false
	}
	return line, true
}

// pickOption maps a 1-based choice to the displayed option.
func pickOption(q *domain.Question, line string) (domain.Option, bool) {
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(q.Options) {
		return domain.Option{}, false
	}
	return q.Options[n-1], true
}
