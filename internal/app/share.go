package app

import (
	"fmt"
	"net/url"

	"globetrotter/internal/domain"
)

// ShareMessage is the text posted alongside a challenge link.
func ShareMessage(score domain.Score) string {
	return fmt.Sprintf("I scored %d/%d in the Globetrotter Challenge! Can you beat me?", score.Correct, score.Total)
}

// WhatsAppURL opens a WhatsApp share for the message and link.
func WhatsAppURL(message, link string) string {
	return "https://wa.me/?text=" + url.QueryEscape(message+" "+link)
}

// ResultsScore converts results into the score shown in share messages.
func ResultsScore(r domain.Results) domain.Score {
	return domain.Score{Correct: r.TotalCorrect, Total: r.TotalQuestions}
}

// ResultsHeadline is the title and subtitle of the results screen. Scores of
// 70% and above get the explorer tier.
func ResultsHeadline(r domain.Results) (title, subtitle string) {
	if r.ScorePercentage >= 70 {
		return "Congratulations, World Explorer!", "You really know your way around the globe!"
	}
	return "Nice Try, Adventurer!", "Keep exploring to improve your knowledge!"
}
