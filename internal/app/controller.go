package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"globetrotter/internal/domain"
)

// GameAPI is the backend surface the controller drives.
type GameAPI interface {
	ChallengeAPI
	CreateUser(ctx context.Context, username string) (domain.Identity, error)
	ResetScore(ctx context.Context, username string) domain.Identity
	StartGame(ctx context.Context, username string) (domain.GameID, error)
	NextQuestion(ctx context.Context, gameID domain.GameID) (domain.Question, bool, error)
	SubmitAnswer(ctx context.Context, gameID domain.GameID, questionID string, optionID int) (domain.Feedback, error)
	Results(ctx context.Context, gameID domain.GameID) (domain.Results, error)
}

// ResultLedger keeps finished games so their challenge links can be shared later.
type ResultLedger interface {
	Record(ctx context.Context, entry domain.LedgerEntry) error
	List(ctx context.Context, username string, limit int) ([]domain.LedgerEntry, error)
}

// Controller drives the initial → playing → finished game flow.
//
// Start, Advance and Answer each allow one outstanding call; overlapping calls
// are rejected, never queued. The flags are only held between state checks and
// are never locked across a network call.
type Controller struct {
	api    GameAPI
	store  *Store
	ledger ResultLedger
	now    func() time.Time

	mu        sync.Mutex
	armed     bool
	starting  bool
	advancing bool
	answering bool
}

// NewController wires the flow controller. ledger may be nil.
func NewController(api GameAPI, store *Store, ledger ResultLedger) *Controller {
	return &Controller{
		api:    api,
		store:  store,
		ledger: ledger,
		now:    time.Now,
		armed:  true,
	}
}

func (c *Controller) Snapshot() domain.Snapshot {
	return c.store.Snapshot()
}

// Login creates (or fetches) the user and makes it the current identity.
func (c *Controller) Login(ctx context.Context, username string) (domain.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.Identity{}, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	identity, err := c.api.CreateUser(ctx, username)
	if err != nil {
		return domain.Identity{}, err
	}
	if identity.Username == "" {
		identity.Username = username
	}
	if err := c.store.SetIdentity(ctx, identity); err != nil {
		log.Printf("persist identity: %v", err)
	}
	c.Home()
	return identity, nil
}

// AcceptChallenge signs in the challenged player.
func (c *Controller) AcceptChallenge(ctx context.Context, playerName string) (domain.Identity, error) {
	if strings.TrimSpace(playerName) == "" {
		return domain.Identity{}, fmt.Errorf("%w: please enter your name to start the challenge", domain.ErrValidation)
	}
	return c.Login(ctx, playerName)
}

// Logout forgets the current player.
func (c *Controller) Logout(ctx context.Context) error {
	c.Home()
	return c.store.ClearIdentity(ctx)
}

// RefreshIdentity refetches the identity; the server's counters always win.
func (c *Controller) RefreshIdentity(ctx context.Context) (domain.Identity, error) {
	current, ok := c.store.Identity()
	if !ok {
		return domain.Identity{}, domain.ErrNoIdentity
	}
	identity, err := c.api.GetUser(ctx, current.Username)
	if err != nil {
		return domain.Identity{}, err
	}
	if err := c.store.SetIdentity(ctx, identity); err != nil {
		log.Printf("persist identity: %v", err)
	}
	return identity, nil
}

// Home abandons any game and re-arms the start sequence.
func (c *Controller) Home() {
	c.store.ResetGame()
	c.mu.Lock()
	c.armed = true
	c.mu.Unlock()
}

// Start runs the start sequence once per entry into the initial state.
func (c *Controller) Start(ctx context.Context) error {
	identity, ok := c.store.Identity()
	if !ok {
		return domain.ErrNoIdentity
	}

	c.mu.Lock()
	if c.starting {
		c.mu.Unlock()
		return domain.ErrStartPending
	}
	if !c.armed || c.store.State() != domain.StateInitial {
		c.mu.Unlock()
		return domain.ErrInvalidTransition
	}
	c.starting = true
	c.armed = false
	gen := c.store.Generation()
	c.mu.Unlock()

	err := c.start(ctx, identity, gen)

	c.mu.Lock()
	c.starting = false
	if err != nil {
		c.armed = true
	}
	c.mu.Unlock()
	return err
}

func (c *Controller) start(ctx context.Context, identity domain.Identity, gen uint64) error {
	if identity.HasScore() {
		reset := c.api.ResetScore(ctx, identity.Username)
		if err := c.store.SetIdentity(ctx, reset); err != nil {
			log.Printf("persist identity: %v", err)
		}
	}
	c.store.ResetScore()

	gameID, err := c.api.StartGame(ctx, identity.Username)
	if err != nil {
		return err
	}
	if gameID == "" {
		return fmt.Errorf("%w: empty game_id", domain.ErrInvalidShape)
	}

	gen, err = c.store.BeginGame(gen, gameID)
	if err != nil {
		return err
	}
	if err := c.advance(ctx, gen); err != nil {
		c.store.AbortGame(gen)
		return err
	}
	return nil
}

// Advance requests the next question, finishing the game when there is none.
func (c *Controller) Advance(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.starting:
		c.mu.Unlock()
		return domain.ErrStartPending
	case c.advancing:
		c.mu.Unlock()
		return domain.ErrAdvancePending
	case c.store.State() != domain.StatePlaying:
		c.mu.Unlock()
		return domain.ErrInvalidTransition
	}
	c.advancing = true
	gen := c.store.Generation()
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.advancing = false
		c.mu.Unlock()
	}()
	return c.advance(ctx, gen)
}

func (c *Controller) advance(ctx context.Context, gen uint64) error {
	gameID := c.store.GameID()
	q, finished, err := c.api.NextQuestion(ctx, gameID)
	if err != nil {
		if clearErr := c.store.ClearQuestion(gen); clearErr != nil {
			return clearErr
		}
		return err
	}
	if finished {
		return c.finish(ctx, gen, gameID)
	}
	return c.store.ApplyQuestion(gen, q)
}

func (c *Controller) finish(ctx context.Context, gen uint64, gameID domain.GameID) error {
	var results *domain.Results
	if res, err := c.api.Results(ctx, gameID); err != nil {
		log.Printf("load results for game %s: %v", gameID, err)
	} else {
		results = &res
	}

	if err := c.store.Finish(gen, results); err != nil {
		return err
	}
	if results != nil {
		c.record(ctx, gameID, *results)
	}
	return nil
}

func (c *Controller) record(ctx context.Context, gameID domain.GameID, results domain.Results) {
	if c.ledger == nil {
		return
	}
	identity, ok := c.store.Identity()
	if !ok {
		return
	}
	entry := domain.LedgerEntry{
		Username:        identity.Username,
		GameID:          gameID,
		TotalCorrect:    results.TotalCorrect,
		TotalQuestions:  results.TotalQuestions,
		ScorePercentage: results.ScorePercentage,
		FinishedAt:      c.now(),
	}
	if err := c.ledger.Record(ctx, entry); err != nil {
		log.Printf("record game %s: %v", gameID, err)
	}
}

// Answer submits optionID for the current question. After an incorrect answer,
// choosing the revealed correct option returns the existing feedback.
func (c *Controller) Answer(ctx context.Context, optionID int) (domain.Feedback, error) {
	c.mu.Lock()
	if c.answering {
		c.mu.Unlock()
		return domain.Feedback{}, domain.ErrAnswerPending
	}
	snap := c.store.Snapshot()
	if snap.State != domain.StatePlaying {
		c.mu.Unlock()
		return domain.Feedback{}, domain.ErrInvalidTransition
	}
	if snap.Question == nil {
		c.mu.Unlock()
		return domain.Feedback{}, domain.ErrNoQuestion
	}
	if fb := snap.Feedback; fb != nil {
		c.mu.Unlock()
		if !fb.Correct && fb.CorrectOptionID == optionID {
			return *fb, nil
		}
		return domain.Feedback{}, domain.ErrAlreadyAnswered
	}
	c.answering = true
	gen := c.store.Generation()
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.answering = false
		c.mu.Unlock()
	}()

	fb, err := c.api.SubmitAnswer(ctx, snap.GameID, snap.Question.ID, optionID)
	if err != nil {
		return domain.Feedback{}, err
	}
	if err := c.store.ApplyFeedback(ctx, gen, fb); err != nil {
		return domain.Feedback{}, err
	}
	return fb, nil
}

// Replay leaves a finished game: the server score, local score, game id,
// question and results are reset and the start sequence is re-armed.
func (c *Controller) Replay(ctx context.Context) error {
	c.mu.Lock()
	if c.starting {
		c.mu.Unlock()
		return domain.ErrStartPending
	}
	if c.store.State() != domain.StateFinished {
		c.mu.Unlock()
		return domain.ErrInvalidTransition
	}
	c.mu.Unlock()

	if identity, ok := c.store.Identity(); ok {
		reset := c.api.ResetScore(ctx, identity.Username)
		if err := c.store.SetIdentity(ctx, reset); err != nil {
			log.Printf("persist identity: %v", err)
		}
	}
	c.Home()
	return nil
}

// ShareLink is the challenge link for the current (or last finished) game.
func (c *Controller) ShareLink(origin string) (string, error) {
	snap := c.store.Snapshot()
	if snap.Identity == nil {
		return "", domain.ErrNoIdentity
	}
	if snap.GameID == "" {
		return "", domain.ErrNoGame
	}
	return ChallengeLink(origin, snap.Identity.Username, snap.GameID), nil
}

// History lists the current player's finished games, newest first.
func (c *Controller) History(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	identity, ok := c.store.Identity()
	if !ok {
		return nil, domain.ErrNoIdentity
	}
	if c.ledger == nil {
		return nil, nil
	}
	return c.ledger.List(ctx, identity.Username, limit)
}
