package app_test

import (
	"context"
	"sync"

	"globetrotter/internal/domain"
)

// fakeAPI is a scriptable in-process backend.
type fakeAPI struct {
	mu sync.Mutex

	users     map[string]domain.Identity
	questions []domain.Question
	served    int
	feedback  domain.Feedback
	results   domain.Results

	resultsErr error
	summaryErr error

	startFn  func(ctx context.Context, username string) (domain.GameID, error)
	nextFn   func(ctx context.Context, gameID domain.GameID) (domain.Question, bool, error)
	submitFn func(ctx context.Context, optionID int) (domain.Feedback, error)

	resetCalls  int
	startCalls  int
	submitCalls int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		users: map[string]domain.Identity{},
		questions: []domain.Question{
			sampleQuestion("q1"),
			sampleQuestion("q2"),
		},
		feedback: domain.Feedback{Correct: true, CorrectOptionID: 1, FunFact: "Paris has 37 bridges"},
		results:  domain.Results{TotalCorrect: 2, TotalQuestions: 2, ScorePercentage: 100},
	}
}

func sampleQuestion(id string) domain.Question {
	return domain.Question{
		ID:    id,
		Clues: []string{"City of light"},
		Options: []domain.Option{
			{ID: 1, Text: "Paris"},
			{ID: 3, Text: "Tokyo"},
		},
	}
}

func (f *fakeAPI) CreateUser(_ context.Context, username string) (domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	u := domain.Identity{Username: username}
	f.users[username] = u
	return u, nil
}

func (f *fakeAPI) GetUser(_ context.Context, username string) (domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return domain.Identity{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeAPI) ResetScore(_ context.Context, username string) domain.Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetCalls++
	u := domain.Identity{Username: username}
	f.users[username] = u
	return u
}

func (f *fakeAPI) StartGame(ctx context.Context, username string) (domain.GameID, error) {
	f.mu.Lock()
	f.startCalls++
	fn := f.startFn
	f.served = 0
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, username)
	}
	return "42", nil
}

func (f *fakeAPI) NextQuestion(ctx context.Context, gameID domain.GameID) (domain.Question, bool, error) {
	f.mu.Lock()
	fn := f.nextFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, gameID)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.served >= len(f.questions) {
		return domain.Question{}, true, nil
	}
	q := f.questions[f.served]
	f.served++
	return q, false, nil
}

func (f *fakeAPI) SubmitAnswer(ctx context.Context, _ domain.GameID, _ string, optionID int) (domain.Feedback, error) {
	f.mu.Lock()
	f.submitCalls++
	fn := f.submitFn
	fb := f.feedback
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, optionID)
	}
	return fb, nil
}

func (f *fakeAPI) Results(_ context.Context, _ domain.GameID) (domain.Results, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resultsErr != nil {
		return domain.Results{}, f.resultsErr
	}
	return f.results, nil
}

func (f *fakeAPI) Summary(_ context.Context, _ domain.GameID) (domain.Results, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.summaryErr != nil {
		return domain.Results{}, f.summaryErr
	}
	return f.results, nil
}

func (f *fakeAPI) counts() (reset, start, submit int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resetCalls, f.startCalls, f.submitCalls
}
