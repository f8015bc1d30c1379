package app_test

import (
	"context"
	"errors"
	"testing"

	"globetrotter/internal/app"
	"globetrotter/internal/domain"
)

func TestChallengeLinkRoundTrip(t *testing.T) {
	link := app.ChallengeLink("https://globetrotter.example/", "ann lee", "42")
	if link != "https://globetrotter.example/challenge/ann%20lee/42" {
		t.Fatalf("unexpected link %q", link)
	}

	username, gameID, err := app.ParseChallengeLink(link)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if username != "ann lee" || gameID != "42" {
		t.Fatalf("unexpected parse result %q %q", username, gameID)
	}
}

func TestParseChallengeLinkVariants(t *testing.T) {
	cases := []struct {
		raw      string
		username string
		gameID   domain.GameID
		wantErr  bool
	}{
		{raw: "/challenge/bob", username: "bob"},
		{raw: "http://localhost:3000/challenge/bob/7/", username: "bob", gameID: "7"},
		{raw: "https://x.example/app/challenge/carol/abc", username: "carol", gameID: "abc"},
		{raw: "https://x.example/game/42", wantErr: true},
		{raw: "/challenge/", wantErr: true},
		{raw: "/challenge/bob/7/extra", wantErr: true},
	}
	for _, tc := range cases {
		username, gameID, err := app.ParseChallengeLink(tc.raw)
		if tc.wantErr {
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("%s: expected ErrValidation, got %v", tc.raw, err)
			}
			continue
		}
		if err != nil || username != tc.username || gameID != tc.gameID {
			t.Fatalf("%s: got %q %q err=%v", tc.raw, username, gameID, err)
		}
	}
}

func TestResolveChallengeSwallowsSummaryFailure(t *testing.T) {
	api := newFakeAPI()
	api.users["ann"] = domain.Identity{Username: "ann", CorrectCount: 4, TotalCount: 5}
	api.summaryErr = domain.ErrNotFound

	challenge, err := app.ResolveChallenge(context.Background(), api, "ann", "42")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if challenge.Challenger.CorrectCount != 4 || challenge.Summary != nil {
		t.Fatalf("unexpected challenge %+v", challenge)
	}
}

func TestResolveChallengeIncludesSummary(t *testing.T) {
	api := newFakeAPI()
	api.users["ann"] = domain.Identity{Username: "ann"}

	challenge, err := app.ResolveChallenge(context.Background(), api, "ann", "42")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if challenge.Summary == nil || challenge.Summary.TotalQuestions != 2 {
		t.Fatalf("expected summary, got %+v", challenge.Summary)
	}

	noGame, err := app.ResolveChallenge(context.Background(), api, "ann", "")
	if err != nil || noGame.Summary != nil {
		t.Fatalf("expected no summary without game id, got %+v err=%v", noGame, err)
	}
}

func TestResolveChallengeUnknownUser(t *testing.T) {
	_, err := app.ResolveChallenge(context.Background(), newFakeAPI(), "ghost", "42")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestShareMessage(t *testing.T) {
	msg := app.ShareMessage(app.ResultsScore(domain.Results{TotalCorrect: 3, TotalQuestions: 5}))
	if msg != "I scored 3/5 in the Globetrotter Challenge! Can you beat me?" {
		t.Fatalf("unexpected message %q", msg)
	}
	wa := app.WhatsAppURL(msg, "https://x.example/challenge/ann/1")
	if wa[:len("https://wa.me/?text=")] != "https://wa.me/?text=" {
		t.Fatalf("unexpected whatsapp url %q", wa)
	}
}

func TestResultsHeadlineTiers(t *testing.T) {
	cases := []struct {
		percentage float64
		want       string
	}{
		{100, "Congratulations, World Explorer!"},
		{70, "Congratulations, World Explorer!"},
		{69.9, "Nice Try, Adventurer!"},
		{0, "Nice Try, Adventurer!"},
	}
	for _, tc := range cases {
		title, subtitle := app.ResultsHeadline(domain.Results{ScorePercentage: tc.percentage})
		if title != tc.want || subtitle == "" {
			t.Fatalf("%.1f%%: got %q / %q, want %q", tc.percentage, title, subtitle, tc.want)
		}
	}
}
