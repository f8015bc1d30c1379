package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"globetrotter/internal/app"
	"globetrotter/internal/infra/backend"
	"globetrotter/internal/infra/memory"
)

// newFakeBackend serves a one-question game for user "ann".
func newFakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	served := 0

	mux := http.NewServeMux()
	reply := func(w http.ResponseWriter, status int, body any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
	mux.HandleFunc("/api/users", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		reply(w, http.StatusCreated, map[string]any{"username": req.Username, "correct_count": 0, "total_count": 0})
	})
	mux.HandleFunc("/api/users/ann", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"username": "ann", "correct_count": 4, "total_count": 5})
	})
	mux.HandleFunc("/api/users/ghost", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusNotFound, map[string]string{"error": "User not found"})
	})
	mux.HandleFunc("/api/game/play", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		served = 0
		mu.Unlock()
		reply(w, http.StatusCreated, map[string]any{"game_id": 42})
	})
	mux.HandleFunc("/api/game/42/next-question", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if served > 0 {
			reply(w, http.StatusOK, map[string]any{"has_next": false})
			return
		}
		served++
		reply(w, http.StatusOK, map[string]any{
			"game_id":         42,
			"question_id":     7,
			"question":        "This city has a famous iron tower.",
			"options_display": map[string]string{"3": "Tokyo", "1": "Paris"},
			"has_next":        true,
		})
	})
	mux.HandleFunc("/api/game/42/submit-answer", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"correct": true, "correct_option_id": 1, "fun_fact": "The tower grows in summer."})
	})
	mux.HandleFunc("/api/game/42/result", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"game_id": 42, "total_correct": 1, "total_questions": 1})
	})
	mux.HandleFunc("/api/game/42/summary", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"game_id": 42, "username": "ann", "total_correct": 4, "total_questions": 5})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestRouter(t *testing.T, origin string) http.Handler {
	t.Helper()
	fake := newFakeBackend(t)
	client := backend.NewClient(fake.URL, fake.Client())
	identities := memory.NewIdentityStores()
	ledger := memory.NewLedger()

	var mu sync.Mutex
	controllers := map[string]*app.Controller{}
	factory := func(_ context.Context, clientID string) (*app.Controller, error) {
		mu.Lock()
		defer mu.Unlock()
		if ctrl, ok := controllers[clientID]; ok {
			return ctrl, nil
		}
		store := app.NewStore(identities.For(clientID), 2*time.Hour)
		ctrl := app.NewController(client, store, ledger)
		controllers[clientID] = ctrl
		return ctrl, nil
	}
	return NewRouter(NewWSHandler(factory, origin), NewChallengeHandler(client, origin))
}
