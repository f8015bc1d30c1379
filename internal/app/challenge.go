package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"globetrotter/internal/domain"

	"golang.org/x/sync/errgroup"
)

// ChallengeAPI is what resolving a challenge link needs from the backend.
type ChallengeAPI interface {
	GetUser(ctx context.Context, username string) (domain.Identity, error)
	Summary(ctx context.Context, gameID domain.GameID) (domain.Results, error)
}

// Challenge is a resolved challenge link. Summary is nil when no game id was
// given or the summary could not be loaded.
type Challenge struct {
	Challenger domain.Identity `json:"challenger"`
	GameID     domain.GameID   `json:"gameId,omitempty"`
	Summary    *domain.Results `json:"summary,omitempty"`
}

// ChallengeLink builds {origin}/challenge/{username}/{gameID}.
func ChallengeLink(origin, username string, gameID domain.GameID) string {
	link := strings.TrimRight(origin, "/") + "/challenge/" + url.PathEscape(username)
	if gameID != "" {
		link += "/" + url.PathEscape(string(gameID))
	}
	return link
}

// ParseChallengeLink extracts the username and optional game id from a link
// or from a bare "/challenge/..." path.
func ParseChallengeLink(raw string) (string, domain.GameID, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	segments := strings.Split(strings.Trim(u.EscapedPath(), "/"), "/")
	idx := -1
	for i, seg := range segments {
		if seg == "challenge" {
			idx = i
			break
		}
	}
	if idx < 0 || idx+1 >= len(segments) || idx+3 < len(segments) {
		return "", "", fmt.Errorf("%w: not a challenge link: %q", domain.ErrValidation, raw)
	}

	username, err := url.PathUnescape(segments[idx+1])
	if err != nil || username == "" {
		return "", "", fmt.Errorf("%w: bad username in %q", domain.ErrValidation, raw)
	}
	var gameID domain.GameID
	if idx+2 < len(segments) {
		id, err := url.PathUnescape(segments[idx+2])
		if err != nil {
			return "", "", fmt.Errorf("%w: bad game id in %q", domain.ErrValidation, raw)
		}
		gameID = domain.GameID(id)
	}
	return username, gameID, nil
}

// ResolveChallenge looks up the challenger and, when gameID is set, the game
// summary. Only the user lookup can fail the resolution.
func ResolveChallenge(ctx context.Context, api ChallengeAPI, username string, gameID domain.GameID) (Challenge, error) {
	challenge := Challenge{GameID: gameID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		user, err := api.GetUser(gctx, username)
		if err != nil {
			return err
		}
		challenge.Challenger = user
		return nil
	})
	if gameID != "" {
		g.Go(func() error {
			summary, err := api.Summary(gctx, gameID)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					log.Printf("challenge summary for game %s: %v", gameID, err)
				}
				return nil
			}
			challenge.Summary = &summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Challenge{}, err
	}
	return challenge, nil
}
