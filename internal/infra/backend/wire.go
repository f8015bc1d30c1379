package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"globetrotter/internal/domain"
)

// flexID accepts ids encoded as JSON numbers or strings. Numeric ids are sent
// back as numbers since the backend binds them as integers.
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = flexID(n.String())
	return nil
}

func (id flexID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

type nextQuestionResponse struct {
	QuestionID     flexID            `json:"question_id"`
	Question       string            `json:"question"`
	Clues          []string          `json:"clues"`
	OptionsDisplay map[string]string `json:"options_display"`
	HasNext        *bool             `json:"has_next"`
	GameFinished   bool              `json:"game_finished"`
}

func (r nextQuestionResponse) finished() bool {
	return r.GameFinished || (r.HasNext != nil && !*r.HasNext)
}

// question converts the id→text option mapping into a list ordered by ascending id.
func (r nextQuestionResponse) question() (domain.Question, error) {
	if r.QuestionID == "" {
		return domain.Question{}, fmt.Errorf("%w: missing question_id", domain.ErrInvalidShape)
	}
	if len(r.OptionsDisplay) == 0 {
		return domain.Question{}, fmt.Errorf("%w: missing options_display", domain.ErrInvalidShape)
	}

	options := make([]domain.Option, 0, len(r.OptionsDisplay))
	for key, text := range r.OptionsDisplay {
		id, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return domain.Question{}, fmt.Errorf("%w: option id %q is not an integer", domain.ErrInvalidShape, key)
		}
		options = append(options, domain.Option{ID: id, Text: text})
	}
	sort.Slice(options, func(i, j int) bool { return options[i].ID < options[j].ID })

	clues := make([]string, 0, len(r.Clues)+1)
	for _, clue := range r.Clues {
		if strings.TrimSpace(clue) != "" {
			clues = append(clues, clue)
		}
	}
	if len(clues) == 0 && strings.TrimSpace(r.Question) != "" {
		clues = append(clues, r.Question)
	}
	if len(clues) == 0 {
		return domain.Question{}, fmt.Errorf("%w: no clues", domain.ErrInvalidShape)
	}

	return domain.Question{
		ID:      string(r.QuestionID),
		Clues:   clues,
		Options: options,
	}, nil
}

type submitAnswerRequest struct {
	GameID              flexID `json:"game_id"`
	QuestionID          flexID `json:"question_id"`
	SelectedDestination int    `json:"selected_destination"`
}

type submitAnswerResponse struct {
	Correct         bool   `json:"correct"`
	CorrectOptionID int    `json:"correct_option_id"`
	FunFact         string `json:"fun_fact"`
	Trivia          string `json:"trivia"`
	CorrectCity     string `json:"correct_city"`
	CorrectCountry  string `json:"correct_country"`
}

func (r submitAnswerResponse) feedback() domain.Feedback {
	return domain.Feedback{
		Correct:         r.Correct,
		CorrectOptionID: r.CorrectOptionID,
		FunFact:         r.FunFact,
		Trivia:          r.Trivia,
		CorrectCity:     r.CorrectCity,
		CorrectCountry:  r.CorrectCountry,
	}
}

type resultsResponse struct {
	Username        string   `json:"username"`
	TotalCorrect    int      `json:"total_correct"`
	TotalQuestions  int      `json:"total_questions"`
	TotalAnswered   int      `json:"total_answered"`
	ScorePercentage *float64 `json:"score_percentage"`
	ImageURL        string   `json:"image_url"`
}

func (r resultsResponse) results() domain.Results {
	pct := domain.Percentage(r.TotalCorrect, r.TotalQuestions)
	if r.ScorePercentage != nil {
		pct = *r.ScorePercentage
	}
	return domain.Results{
		Username:        r.Username,
		TotalCorrect:    r.TotalCorrect,
		TotalQuestions:  r.TotalQuestions,
		TotalAnswered:   r.TotalAnswered,
		ScorePercentage: pct,
		ImageURL:        r.ImageURL,
	}
}
