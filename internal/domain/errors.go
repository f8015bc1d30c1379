package domain

import "errors"

var (
	// ErrThrottled is returned when a game start is attempted too soon after the previous one.
	ErrThrottled = errors.New("please wait before starting a new game")
	// ErrAlreadyInProgress is returned while a previous game start has not resolved.
	ErrAlreadyInProgress = errors.New("game start already in progress")
	// ErrNotFound indicates the backend does not know the requested user or game.
	ErrNotFound = errors.New("not found")
	// ErrInvalidShape indicates a malformed question payload.
	ErrInvalidShape = errors.New("invalid question data received")
	// ErrNetwork wraps transport-level failures talking to the backend.
	ErrNetwork = errors.New("network failure")
	// ErrValidation is returned for empty usernames and rejected submissions.
	ErrValidation = errors.New("validation failed")
	// ErrBackend covers any other non-2xx backend response.
	ErrBackend = errors.New("backend error")

	ErrNoIdentity        = errors.New("no player identity")
	ErrInvalidTransition = errors.New("invalid game state transition")
	ErrStartPending      = errors.New("game start pending")
	ErrAdvancePending    = errors.New("next question already requested")
	ErrAnswerPending     = errors.New("answer already being submitted")
	ErrAlreadyAnswered   = errors.New("question already answered")
	ErrNoQuestion        = errors.New("no current question")
	ErrNoGame            = errors.New("no game to share")
	// ErrStaleSession is returned when a network result arrives for a game that is no longer current.
	ErrStaleSession = errors.New("stale game session")
)
