package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"globetrotter/internal/domain"
)

// IdentityRepository persists the player identity between runs (memory, Redis, file).
type IdentityRepository interface {
	Save(ctx context.Context, identity domain.PersistedIdentity) error
	Load(ctx context.Context) (domain.PersistedIdentity, bool, error)
	Clear(ctx context.Context) error
}

// Store is the single mutable container for session state. Only the identity is
// persisted; everything else lives for one play-through.
//
// Mutations that apply network results take the generation observed before the
// call and fail with ErrStaleSession if a game was begun or reset meanwhile.
type Store struct {
	repo      IdentityRepository
	retention time.Duration
	now       func() time.Time

	mu         sync.RWMutex
	identity   *domain.Identity
	score      domain.Score
	gameID     domain.GameID
	state      domain.GameState
	question   *domain.Question
	feedback   *domain.Feedback
	results    *domain.Results
	generation uint64
}

func NewStore(repo IdentityRepository, retention time.Duration) *Store {
	return NewStoreWithClock(repo, retention, time.Now)
}

// NewStoreWithClock is used by tests for deterministic expiry.
func NewStoreWithClock(repo IdentityRepository, retention time.Duration, now func() time.Time) *Store {
	return &Store{
		repo:      repo,
		retention: retention,
		now:       now,
		state:     domain.StateInitial,
	}
}

// Load restores a persisted identity younger than the retention window and
// clears anything older.
func (s *Store) Load(ctx context.Context) error {
	persisted, ok, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load identity: %w", err)
	}
	if !ok || s.now().Sub(persisted.SavedAt) > s.retention {
		s.mu.Lock()
		s.identity = nil
		s.mu.Unlock()
		return s.repo.Clear(ctx)
	}

	identity := persisted.Identity
	s.mu.Lock()
	s.identity = &identity
	s.mu.Unlock()
	return nil
}

// SetIdentity replaces the current identity and persists it with a fresh timestamp.
func (s *Store) SetIdentity(ctx context.Context, identity domain.Identity) error {
	s.mu.Lock()
	s.identity = &identity
	s.mu.Unlock()
	return s.persist(ctx, identity)
}

// ClearIdentity forgets the player locally and in persistence.
func (s *Store) ClearIdentity(ctx context.Context) error {
	s.mu.Lock()
	s.identity = nil
	s.mu.Unlock()
	return s.repo.Clear(ctx)
}

func (s *Store) persist(ctx context.Context, identity domain.Identity) error {
	return s.repo.Save(ctx, domain.PersistedIdentity{Identity: identity, SavedAt: s.now()})
}

func (s *Store) Identity() (domain.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return domain.Identity{}, false
	}
	return *s.identity, true
}

// UpdateScore always counts the answer and counts it as correct only when it was.
func (s *Store) UpdateScore(correct bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateScoreLocked(correct)
}

func (s *Store) updateScoreLocked(correct bool) {
	if correct {
		s.score.Correct++
	}
	s.score.Total++
}

func (s *Store) ResetScore() {
	s.mu.Lock()
	s.score = domain.Score{}
	s.mu.Unlock()
}

// ResetGame returns to the initial state, dropping the game, question, results and score.
func (s *Store) ResetGame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetGameLocked()
}

func (s *Store) resetGameLocked() {
	s.gameID = ""
	s.state = domain.StateInitial
	s.question = nil
	s.feedback = nil
	s.results = nil
	s.score = domain.Score{}
	s.generation++
}

func (s *Store) Score() domain.Score {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.score
}

func (s *Store) State() domain.GameState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) GameID() domain.GameID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gameID
}

// Generation identifies the current game; it changes whenever a game begins or is reset.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// BeginGame moves to playing with a fresh game id and returns the new generation.
func (s *Store) BeginGame(gen uint64, gameID domain.GameID) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return 0, domain.ErrStaleSession
	}
	s.generation++
	s.gameID = gameID
	s.state = domain.StatePlaying
	s.question = nil
	s.feedback = nil
	s.results = nil
	return s.generation, nil
}

// AbortGame resets to initial if gen is still current.
func (s *Store) AbortGame(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.generation {
		s.resetGameLocked()
	}
}

// ApplyQuestion replaces the current question and drops the previous feedback.
func (s *Store) ApplyQuestion(gen uint64, q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return domain.ErrStaleSession
	}
	s.question = &q
	s.feedback = nil
	return nil
}

// ClearQuestion leaves the game in an empty but recoverable state.
func (s *Store) ClearQuestion(gen uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return domain.ErrStaleSession
	}
	s.question = nil
	s.feedback = nil
	return nil
}

// ApplyFeedback stores the verdict, bumps the local score and optimistically
// bumps the identity counters, persisting the identity.
func (s *Store) ApplyFeedback(ctx context.Context, gen uint64, fb domain.Feedback) error {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return domain.ErrStaleSession
	}
	s.feedback = &fb
	s.updateScoreLocked(fb.Correct)

	var identity *domain.Identity
	if s.identity != nil {
		updated := *s.identity
		updated.TotalCount++
		if fb.Correct {
			updated.CorrectCount++
		}
		s.identity = &updated
		identity = &updated
	}
	s.mu.Unlock()

	if identity != nil {
		if err := s.persist(ctx, *identity); err != nil {
			log.Printf("persist identity after answer: %v", err)
		}
	}
	return nil
}

// Finish marks the game finished. results may be nil when they could not be loaded.
func (s *Store) Finish(gen uint64, results *domain.Results) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return domain.ErrStaleSession
	}
	s.state = domain.StateFinished
	s.question = nil
	s.feedback = nil
	if results != nil {
		r := *results
		s.results = &r
	} else {
		s.results = nil
	}
	return nil
}

// Snapshot returns a deep copy of the session for rendering.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := domain.Snapshot{
		Score:  s.score,
		GameID: s.gameID,
		State:  s.state,
	}
	if s.identity != nil {
		id := *s.identity
		snap.Identity = &id
	}
	if s.question != nil {
		q := *s.question
		q.Clues = append([]string(nil), s.question.Clues...)
		q.Options = append([]domain.Option(nil), s.question.Options...)
		snap.Question = &q
	}
	if s.feedback != nil {
		fb := *s.feedback
		snap.Feedback = &fb
	}
	if s.results != nil {
		r := *s.results
		snap.Results = &r
	}
	return snap
}
