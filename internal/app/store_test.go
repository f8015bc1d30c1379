package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"globetrotter/internal/app"
	"globetrotter/internal/domain"
	"globetrotter/internal/infra/memory"
)

func TestStoreLoadHonoursRetention(t *testing.T) {
	ctx := context.Background()
	savedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ann := domain.Identity{Username: "ann", CorrectCount: 2, TotalCount: 5}

	cases := []struct {
		name    string
		elapsed time.Duration
		restore bool
	}{
		{"just inside window", 2*time.Hour - time.Millisecond, true},
		{"exactly at window", 2 * time.Hour, true},
		{"just past window", 2*time.Hour + time.Millisecond, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := memory.NewIdentityStore()
			_ = repo.Save(ctx, domain.PersistedIdentity{Identity: ann, SavedAt: savedAt})

			now := savedAt.Add(tc.elapsed)
			store := app.NewStoreWithClock(repo, 2*time.Hour, func() time.Time { return now })
			if err := store.Load(ctx); err != nil {
				t.Fatalf("load: %v", err)
			}

			got, ok := store.Identity()
			if ok != tc.restore {
				t.Fatalf("expected restore=%v, got %v", tc.restore, ok)
			}
			if tc.restore && got != ann {
				t.Fatalf("expected %+v, got %+v", ann, got)
			}
			_, persisted, _ := repo.Load(ctx)
			if persisted != tc.restore {
				t.Fatalf("expected persisted=%v after load, got %v", tc.restore, persisted)
			}
		})
	}
}

func TestStoreSetIdentityPersistsFreshTimestamp(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := memory.NewIdentityStore()
	store := app.NewStoreWithClock(repo, 2*time.Hour, func() time.Time { return now })

	if err := store.SetIdentity(ctx, domain.Identity{Username: "ann"}); err != nil {
		t.Fatalf("set identity: %v", err)
	}
	persisted, ok, _ := repo.Load(ctx)
	if !ok || persisted.Identity.Username != "ann" || !persisted.SavedAt.Equal(now) {
		t.Fatalf("unexpected persisted identity %+v ok=%v", persisted, ok)
	}
}

func TestStoreUpdateScore(t *testing.T) {
	store := app.NewStore(memory.NewIdentityStore(), time.Hour)
	store.UpdateScore(true)
	store.UpdateScore(false)
	store.UpdateScore(true)

	if got := store.Score(); got != (domain.Score{Correct: 2, Total: 3}) {
		t.Fatalf("unexpected score %+v", got)
	}
	store.ResetScore()
	if got := store.Score(); got != (domain.Score{}) {
		t.Fatalf("expected zero score, got %+v", got)
	}
}

func TestStoreResetGameClearsSession(t *testing.T) {
	store := app.NewStore(memory.NewIdentityStore(), time.Hour)
	gen, err := store.BeginGame(store.Generation(), "42")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	_ = store.ApplyQuestion(gen, sampleQuestion("q1"))
	store.UpdateScore(true)
	_ = store.Finish(gen, &domain.Results{TotalCorrect: 1, TotalQuestions: 1})

	store.ResetGame()
	snap := store.Snapshot()
	if snap.State != domain.StateInitial || snap.GameID != "" || snap.Question != nil || snap.Results != nil || snap.Score != (domain.Score{}) {
		t.Fatalf("expected cleared session, got %+v", snap)
	}
}

func TestStoreRejectsStaleGeneration(t *testing.T) {
	store := app.NewStore(memory.NewIdentityStore(), time.Hour)
	gen, _ := store.BeginGame(store.Generation(), "42")
	store.ResetGame()

	if err := store.ApplyQuestion(gen, sampleQuestion("q1")); !errors.Is(err, domain.ErrStaleSession) {
		t.Fatalf("expected stale session, got %v", err)
	}
	if err := store.Finish(gen, nil); !errors.Is(err, domain.ErrStaleSession) {
		t.Fatalf("expected stale session, got %v", err)
	}
	if store.Snapshot().Question != nil {
		t.Fatalf("stale question must not be applied")
	}
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	store := app.NewStore(memory.NewIdentityStore(), time.Hour)
	gen, _ := store.BeginGame(store.Generation(), "42")
	_ = store.ApplyQuestion(gen, sampleQuestion("q1"))

	snap := store.Snapshot()
	snap.Question.Options[0].Text = "mutated"
	if store.Snapshot().Question.Options[0].Text != "Paris" {
		t.Fatalf("snapshot must not alias store state")
	}
}
