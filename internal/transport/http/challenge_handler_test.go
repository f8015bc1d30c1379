package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestChallengePageRendersOpenGraph(t *testing.T) {
	router := newTestRouter(t, "https://globetrotter.example")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/challenge/ann/42", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`og:title" content="ann challenges you to Globetrotter!"`,
		`og:url" content="https://globetrotter.example/challenge/ann/42"`,
		"Can you beat 4/5?",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected page to contain %q:\n%s", want, body)
		}
	}
}

func TestChallengePageNotFound(t *testing.T) {
	router := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/challenge/ghost/42", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Go Home") {
		t.Fatalf("expected not-found page with a way home")
	}
}

func TestChallengeJSON(t *testing.T) {
	router := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/challenge/ann", nil)
	req.Host = "play.example"
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got struct {
		Challenger struct {
			Username     string `json:"username"`
			CorrectCount int    `json:"correct_count"`
		} `json:"challenger"`
		Summary *json.RawMessage `json:"summary"`
		Link    string           `json:"link"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Challenger.Username != "ann" || got.Challenger.CorrectCount != 4 || got.Summary != nil {
		t.Fatalf("unexpected challenge %+v", got)
	}
	if got.Link != "http://play.example/challenge/ann" {
		t.Fatalf("unexpected link %q", got.Link)
	}
}

func TestChallengeQR(t *testing.T) {
	router := newTestRouter(t, "https://globetrotter.example")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/challenge/ann/42/qr", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("expected png, got %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	head, _ := io.ReadAll(io.LimitReader(rec.Body, 8))
	if !bytes.Equal(head, []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatalf("expected PNG signature, got %q", head)
	}
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t, "").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz response %d %q", rec.Code, rec.Body.String())
	}
}
