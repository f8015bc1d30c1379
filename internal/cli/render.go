package cli

import (
	"errors"
	"fmt"
	"io"

	"globetrotter/internal/app"
	"globetrotter/internal/domain"

	"github.com/skip2/go-qrcode"
)

func renderQuestion(out io.Writer, snap domain.Snapshot) {
	q := snap.Question
	fmt.Fprintf(out, "\nScore: %d/%d\n", snap.Score.Correct, snap.Score.Total)
	fmt.Fprintln(out, "Where am I?")
	for _, clue := range q.Clues {
		fmt.Fprintf(out, "  * %s\n", clue)
	}
	for i, option := range q.Options {
		fmt.Fprintf(out, "  %d) %s\n", i+1, option.Text)
	}
}

func renderFeedback(out io.Writer, q domain.Question, fb domain.Feedback) {
	if fb.Correct {
		fmt.Fprintln(out, "Correct!")
	} else {
		answer := fmt.Sprintf("option %d", fb.CorrectOptionID)
		for _, option := range q.Options {
			if option.ID == fb.CorrectOptionID {
				answer = option.Text
			}
		}
		fmt.Fprintf(out, "Not quite. The answer was %s.\n", answer)
	}
	if fb.CorrectCity != "" && fb.CorrectCountry != "" {
		fmt.Fprintf(out, "%s, %s\n", fb.CorrectCity, fb.CorrectCountry)
	}
	if msg := fb.Message(); msg != "" {
		fmt.Fprintln(out, msg)
	}
}

func renderResults(out io.Writer, snap domain.Snapshot) {
	fmt.Fprintln(out, "\nGame over!")
	if r := snap.Results; r != nil {
		title, subtitle := app.ResultsHeadline(*r)
		fmt.Fprintln(out, title)
		fmt.Fprintln(out, subtitle)
		fmt.Fprintf(out, "You got %d of %d right (%.0f%%).\n", r.TotalCorrect, r.TotalQuestions, r.ScorePercentage)
		return
	}
	fmt.Fprintf(out, "Score: %d/%d\n", snap.Score.Correct, snap.Score.Total)
}

func renderShare(out io.Writer, link string, score domain.Score) {
	message := app.ShareMessage(score)
	fmt.Fprintf(out, "Challenge a friend: %s\n", link)
	fmt.Fprintf(out, "%s\n", message)
	fmt.Fprintf(out, "WhatsApp: %s\n", app.WhatsAppURL(message, link))
}

// renderQR prints link as a QR code made of half-block characters.
func renderQR(out io.Writer, link string) error {
	code, err := qrcode.New(link, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("qr code: %w", err)
	}
	fmt.Fprint(out, code.ToSmallString(false))
	return nil
}

func renderChallenge(out io.Writer, challenge app.Challenge, link string) {
	c := challenge.Challenger
	fmt.Fprintf(out, "%s challenges you to Globetrotter!\n", c.Username)
	if s := challenge.Summary; s != nil {
		fmt.Fprintf(out, "Can you beat %d/%d?\n", s.TotalCorrect, s.TotalQuestions)
	} else {
		fmt.Fprintf(out, "Their score: %d/%d\n", c.CorrectCount, c.TotalCount)
	}
	fmt.Fprintf(out, "Link: %s\n", link)
}

func renderError(out io.Writer, err error) {
	switch {
	case errors.Is(err, domain.ErrThrottled):
		fmt.Fprintln(out, "Please wait a moment before starting another game.")
	case errors.Is(err, domain.ErrAlreadyInProgress), errors.Is(err, domain.ErrStartPending):
		fmt.Fprintln(out, "A game is already starting.")
	case errors.Is(err, domain.ErrNoIdentity):
		fmt.Fprintln(out, "Not logged in. Run `globetrotter login <username>` first.")
	case errors.Is(err, domain.ErrNetwork):
		fmt.Fprintf(out, "Could not reach the server: %v\n", err)
	default:
		fmt.Fprintf(out, "Error: %v\n", err)
	}
}
