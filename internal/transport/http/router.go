package http

import (
	_ "embed"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

//go:embed web/index.html
var indexHTML []byte

// NewRouter wires the game screen, challenge pages and health check.
func NewRouter(ws *WSHandler, challenges *ChallengeHandler) http.Handler {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/ws", ws.ServeWS)

	r.HandleFunc("/challenge/{username}/{gameId}/qr", challenges.ServeQR).Methods(http.MethodGet)
	r.HandleFunc("/challenge/{username}", challenges.ServePage).Methods(http.MethodGet)
	r.HandleFunc("/challenge/{username}/{gameId}", challenges.ServePage).Methods(http.MethodGet)
	r.HandleFunc("/api/challenge/{username}", challenges.ServeJSON).Methods(http.MethodGet)
	r.HandleFunc("/api/challenge/{username}/{gameId}", challenges.ServeJSON).Methods(http.MethodGet)

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(indexHTML)
	}).Methods(http.MethodGet)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")

		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
