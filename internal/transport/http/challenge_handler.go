package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"globetrotter/internal/app"
	"globetrotter/internal/domain"

	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"
)

const (
	qrSize            = 320
	defaultPreviewImg = "https://images.unsplash.com/photo-1488646953014-85cb44e25828?auto=format&fit=crop&w=1350&q=80"
	notFoundMessage   = "Could not find the challenger. The link might be invalid."
)

// ChallengeHandler serves shared challenge links.
type ChallengeHandler struct {
	api    app.ChallengeAPI
	origin string
}

func NewChallengeHandler(api app.ChallengeAPI, origin string) *ChallengeHandler {
	return &ChallengeHandler{api: api, origin: origin}
}

type challengeView struct {
	app.Challenge
	Link        string
	Title       string
	Description string
	Image       string
	NotFound    bool
}

func (h *ChallengeHandler) resolve(r *http.Request) (challengeView, int) {
	vars := mux.Vars(r)
	username := vars["username"]
	gameID := domain.GameID(vars["gameId"])
	link := app.ChallengeLink(h.originFor(r), username, gameID)

	challenge, err := app.ResolveChallenge(r.Context(), h.api, username, gameID)
	if errors.Is(err, domain.ErrNotFound) {
		return challengeView{Link: link, NotFound: true, Title: "Challenge not found", Description: notFoundMessage}, http.StatusNotFound
	}
	if err != nil {
		log.Printf("resolve challenge %s/%s: %v", username, gameID, err)
		return challengeView{Link: link, Title: "Globetrotter", Description: "The challenge could not be loaded. Please try again."}, http.StatusBadGateway
	}

	view := challengeView{
		Challenge: challenge,
		Link:      link,
		Title:     challenge.Challenger.Username + " challenges you to Globetrotter!",
		Image:     defaultPreviewImg,
	}
	view.Description = "Guess famous destinations from cryptic clues."
	if s := challenge.Summary; s != nil {
		view.Description = fmt.Sprintf("Can you beat %d/%d?", s.TotalCorrect, s.TotalQuestions)
		if s.ImageURL != "" {
			view.Image = s.ImageURL
		}
	}
	return view, http.StatusOK
}

// ServePage renders the challenge landing page with Open Graph tags.
func (h *ChallengeHandler) ServePage(w http.ResponseWriter, r *http.Request) {
	view, status := h.resolve(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := challengePage.Execute(w, view); err != nil {
		log.Printf("render challenge page: %v", err)
	}
}

// ServeJSON returns the resolved challenge for API consumers.
func (h *ChallengeHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	view, status := h.resolve(r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status != http.StatusOK {
		_ = json.NewEncoder(w).Encode(map[string]string{"error": view.Description})
		return
	}
	_ = json.NewEncoder(w).Encode(struct {
		app.Challenge
		Link string `json:"link"`
	}{view.Challenge, view.Link})
}

// ServeQR renders the challenge link as a PNG QR code.
func (h *ChallengeHandler) ServeQR(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	link := app.ChallengeLink(h.originFor(r), vars["username"], domain.GameID(vars["gameId"]))

	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (h *ChallengeHandler) originFor(r *http.Request) string {
	return requestOrigin(r, h.origin)
}

// requestOrigin returns configured, or the origin the request was addressed to.
func requestOrigin(r *http.Request, configured string) string {
	if configured != "" {
		return configured
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

var challengePage = template.Must(template.New("challenge").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Description}}">
<meta property="og:url" content="{{.Link}}">
{{if .Image}}<meta property="og:image" content="{{.Image}}">{{end}}
<meta name="twitter:card" content="summary_large_image">
</head>
<body>
<h1>{{.Title}}</h1>
{{if .NotFound}}
<p>{{.Description}}</p>
<p><a href="/">Go Home</a></p>
{{else}}
<p>{{.Description}}</p>
{{with .Challenge.Summary}}<p>Score: {{.TotalCorrect}}/{{.TotalQuestions}}</p>{{end}}
<p><a href="/?challenger={{.Challenge.Challenger.Username}}">Accept Challenge</a></p>
{{end}}
</body>
</html>
`))
