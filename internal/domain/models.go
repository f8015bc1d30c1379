package domain

import "time"

// GameState is the coarse game-flow tag shown by every screen.
type GameState string

const (
	StateInitial  GameState = "initial"
	StatePlaying  GameState = "playing"
	StateFinished GameState = "finished"
)

// GameID identifies one play-through. The backend treats it as opaque.
type GameID string

// Identity is the current player and their server-side counters.
type Identity struct {
	Username     string `json:"username" yaml:"username"`
	CorrectCount int    `json:"correct_count" yaml:"correct_count"`
	TotalCount   int    `json:"total_count" yaml:"total_count"`
}

// HasScore reports whether either counter is non-zero.
func (i Identity) HasScore() bool {
	return i.CorrectCount > 0 || i.TotalCount > 0
}

// PersistedIdentity is an identity plus the time it was saved.
type PersistedIdentity struct {
	Identity Identity
	SavedAt  time.Time
}

// Option is one answer choice.
type Option struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Question is a single game turn. Options are ordered by ascending ID.
type Question struct {
	ID      string   `json:"questionId"`
	Clues   []string `json:"clues"`
	Options []Option `json:"options"`
}

// Feedback is the backend's verdict on a submitted answer.
type Feedback struct {
	Correct         bool   `json:"correct"`
	CorrectOptionID int    `json:"correctOptionId"`
	FunFact         string `json:"funFact,omitempty"`
	Trivia          string `json:"trivia,omitempty"`
	CorrectCity     string `json:"correctCity,omitempty"`
	CorrectCountry  string `json:"correctCountry,omitempty"`
}

// Message returns the text shown under the verdict.
func (f Feedback) Message() string {
	if f.Correct {
		return f.FunFact
	}
	return f.Trivia
}

// Results summarizes a finished game.
type Results struct {
	Username        string  `json:"username,omitempty"`
	TotalCorrect    int     `json:"totalCorrect"`
	TotalQuestions  int     `json:"totalQuestions"`
	TotalAnswered   int     `json:"totalAnswered,omitempty"`
	ScorePercentage float64 `json:"scorePercentage"`
	ImageURL        string  `json:"imageUrl,omitempty"`
}

// Percentage derives the score percentage from the counters.
func Percentage(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// Score is the locally tracked, optimistic score for the current game.
type Score struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Snapshot is a read-only copy of the session state used by screens.
type Snapshot struct {
	Identity *Identity `json:"user"`
	Score    Score     `json:"score"`
	GameID   GameID    `json:"gameId,omitempty"`
	State    GameState `json:"gameState"`
	Question *Question `json:"currentQuestion"`
	Feedback *Feedback `json:"feedback"`
	Results  *Results  `json:"results"`
}

// LedgerEntry records a finished game for later sharing.
type LedgerEntry struct {
	Username        string
	GameID          GameID
	TotalCorrect    int
	TotalQuestions  int
	ScorePercentage float64
	FinishedAt      time.Time
}
