package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"globetrotter/internal/domain"

	"golang.org/x/sync/singleflight"
)

const apiPrefix = "/api"

// Client talks to the Globetrotter REST backend and normalizes its responses.
type Client struct {
	baseURL string
	http    *http.Client
	guard   *startGuard
	users   singleflight.Group
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	return NewClientWithClock(baseURL, httpClient, time.Now)
}

// NewClientWithClock allows tests to drive the game-start throttle deterministically.
func NewClientWithClock(baseURL string, httpClient *http.Client, now func() time.Time) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		guard:   newStartGuard(now, time.Second),
	}
}

// CreateUser registers a username (or returns the existing user).
func (c *Client) CreateUser(ctx context.Context, username string) (domain.Identity, error) {
	var user domain.Identity
	if err := c.do(ctx, http.MethodPost, "/users", map[string]string{"username": username}, &user); err != nil {
		return domain.Identity{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetUser looks a username up. Concurrent lookups for one username share a
// request; the shared request outlives any single caller's cancellation.
func (c *Client) GetUser(ctx context.Context, username string) (domain.Identity, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.users.DoChan(username, func() (interface{}, error) {
		var user domain.Identity
		if err := c.do(shared, http.MethodGet, "/users/"+url.PathEscape(username), nil, &user); err != nil {
			return domain.Identity{}, err
		}
		return user, nil
	})

	select {
	case <-ctx.Done():
		return domain.Identity{}, fmt.Errorf("get user %q: %w", username, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.Identity{}, fmt.Errorf("get user %q: %w", username, res.Err)
		}
		return res.Val.(domain.Identity), nil
	}
}

// ResetScore zeroes the user's counters server side. A failed reset is logged and
// replaced by a locally synthesized zero-score identity.
func (c *Client) ResetScore(ctx context.Context, username string) domain.Identity {
	var user domain.Identity
	path := "/users/" + url.PathEscape(username) + "/reset-score"
	if err := c.do(ctx, http.MethodPost, path, nil, &user); err != nil {
		log.Printf("reset score for %s failed: %v", username, err)
		return domain.Identity{Username: username}
	}
	if user.Username == "" {
		user.Username = username
	}
	return user
}

// StartGame creates a game session. At most one call is admitted per second and
// only one may be in flight.
func (c *Client) StartGame(ctx context.Context, username string) (domain.GameID, error) {
	release, err := c.guard.acquire()
	if err != nil {
		return "", err
	}
	defer release()

	var resp struct {
		GameID flexID `json:"game_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/game/play", map[string]string{"username": username}, &resp); err != nil {
		return "", fmt.Errorf("start game: %w", err)
	}
	return domain.GameID(resp.GameID), nil
}

// NextQuestion fetches the next turn. finished is true when the backend reports
// no further questions; the returned Question is then empty.
func (c *Client) NextQuestion(ctx context.Context, gameID domain.GameID) (domain.Question, bool, error) {
	var resp nextQuestionResponse
	if err := c.do(ctx, http.MethodGet, gamePath(gameID, "next-question"), nil, &resp); err != nil {
		return domain.Question{}, false, fmt.Errorf("next question: %w", err)
	}
	if resp.finished() {
		return domain.Question{}, true, nil
	}
	q, err := resp.question()
	if err != nil {
		return domain.Question{}, false, err
	}
	return q, false, nil
}

// SubmitAnswer sends the chosen option. Membership of optionID is not checked here.
func (c *Client) SubmitAnswer(ctx context.Context, gameID domain.GameID, questionID string, optionID int) (domain.Feedback, error) {
	req := submitAnswerRequest{
		GameID:              flexID(gameID),
		QuestionID:          flexID(questionID),
		SelectedDestination: optionID,
	}
	var resp submitAnswerResponse
	if err := c.do(ctx, http.MethodPost, gamePath(gameID, "submit-answer"), req, &resp); err != nil {
		return domain.Feedback{}, fmt.Errorf("submit answer: %w", err)
	}
	return resp.feedback(), nil
}

// Results fetches the final score of a game.
func (c *Client) Results(ctx context.Context, gameID domain.GameID) (domain.Results, error) {
	var resp resultsResponse
	if err := c.do(ctx, http.MethodGet, gamePath(gameID, "result"), nil, &resp); err != nil {
		return domain.Results{}, fmt.Errorf("game results: %w", err)
	}
	return resp.results(), nil
}

// Summary is the lighter variant used for challenge previews.
func (c *Client) Summary(ctx context.Context, gameID domain.GameID) (domain.Results, error) {
	var resp resultsResponse
	if err := c.do(ctx, http.MethodGet, gamePath(gameID, "summary"), nil, &resp); err != nil {
		return domain.Results{}, fmt.Errorf("game summary: %w", err)
	}
	return resp.results(), nil
}

func gamePath(gameID domain.GameID, action string) string {
	return "/game/" + url.PathEscape(string(gameID)) + "/" + action
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", domain.ErrNetwork, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// StatusError is a non-2xx backend response.
type StatusError struct {
	Code    int
	Message string
}

func newStatusError(code int, body []byte) *StatusError {
	var payload struct {
		Error string `json:"error"`
	}
	msg := http.StatusText(code)
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &StatusError{Code: code, Message: msg}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusConflict:
		return domain.ErrValidation
	default:
		return domain.ErrBackend
	}
}

// IsStatus reports whether err carries the given backend status code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
