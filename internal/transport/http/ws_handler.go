package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"globetrotter/internal/app"
	"globetrotter/internal/domain"

	"github.com/gorilla/websocket"
)

// ControllerFactory returns the game controller for one browser client.
type ControllerFactory func(ctx context.Context, clientID string) (*app.Controller, error)

type WSHandler struct {
	controllers ControllerFactory
	origin      string
	upgrader    websocket.Upgrader
}

func NewWSHandler(controllers ControllerFactory, origin string) *WSHandler {
	return &WSHandler{
		controllers: controllers,
		origin:      origin,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type loginPayload struct {
	Username string `json:"username"`
}

type answerPayload struct {
	OptionID int `json:"optionId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type statePayload struct {
	domain.Snapshot
	ShareLink string `json:"shareLink,omitempty"`
	Headline  string `json:"headline,omitempty"`
	Subtitle  string `json:"subtitle,omitempty"`
}

// ServeWS upgrades the request and drives one game controller from the socket.
// Each inbound action runs on its own goroutine, so overlapping actions hit the
// controller's guards instead of queueing behind each other.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client")
	if clientID == "" {
		http.Error(w, "missing client", http.StatusBadRequest)
		return
	}

	ctrl, err := h.controllers(r.Context(), clientID)
	if err != nil {
		log.Printf("controller for %s: %v", clientID, err)
		http.Error(w, "session unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	var inflight sync.WaitGroup

	origin := requestOrigin(r, h.origin)
	send <- stateMessage(ctrl, origin)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		inflight.Add(1)
		go func(msg inboundMessage) {
			defer inflight.Done()
			for _, out := range dispatch(ctx, ctrl, origin, msg) {
				select {
				case send <- out:
				case <-writerDone:
					return
				}
			}
		}(inbound)
	}

	cancel()
	inflight.Wait()
	close(send)
	<-writerDone
}

func dispatch(ctx context.Context, ctrl *app.Controller, origin string, msg inboundMessage) []outboundMessage[any] {
	var err error
	var extra []outboundMessage[any]

	switch msg.Type {
	case "login", "accept":
		var payload loginPayload
		if err = json.Unmarshal(msg.Payload, &payload); err != nil {
			return []outboundMessage[any]{errorMessage("validation", "invalid login payload")}
		}
		if msg.Type == "accept" {
			_, err = ctrl.AcceptChallenge(ctx, payload.Username)
		} else {
			_, err = ctrl.Login(ctx, payload.Username)
		}
	case "start":
		err = ctrl.Start(ctx)
	case "answer":
		var payload answerPayload
		if err = json.Unmarshal(msg.Payload, &payload); err != nil {
			return []outboundMessage[any]{errorMessage("validation", "invalid answer payload")}
		}
		var fb domain.Feedback
		if fb, err = ctrl.Answer(ctx, payload.OptionID); err == nil {
			extra = append(extra, outboundMessage[any]{Type: "feedback", Payload: fb})
		}
	case "next":
		err = ctrl.Advance(ctx)
	case "replay":
		err = ctrl.Replay(ctx)
	case "home":
		ctrl.Home()
	case "refresh":
		_, err = ctrl.RefreshIdentity(ctx)
	default:
		return []outboundMessage[any]{errorMessage("unsupported", "unsupported message type")}
	}

	out := extra
	if err != nil {
		out = append(out, errorMessage(errorCode(err), err.Error()))
	}
	return append(out, stateMessage(ctrl, origin))
}

func stateMessage(ctrl *app.Controller, origin string) outboundMessage[any] {
	snap := ctrl.Snapshot()
	payload := statePayload{Snapshot: snap}
	if snap.State == domain.StateFinished {
		if link, err := ctrl.ShareLink(origin); err == nil {
			payload.ShareLink = link
		}
		if snap.Results != nil {
			payload.Headline, payload.Subtitle = app.ResultsHeadline(*snap.Results)
		}
	}
	return outboundMessage[any]{Type: "state", Payload: payload}
}

func errorMessage(code, message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Code: code, Message: message}}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrThrottled):
		return "throttled"
	case errors.Is(err, domain.ErrAlreadyInProgress):
		return "already_in_progress"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidShape):
		return "invalid_shape"
	case errors.Is(err, domain.ErrNetwork):
		return "network"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrStaleSession):
		return "stale"
	case errors.Is(err, domain.ErrStartPending),
		errors.Is(err, domain.ErrAdvancePending),
		errors.Is(err, domain.ErrAnswerPending):
		return "pending"
	case errors.Is(err, domain.ErrAlreadyAnswered):
		return "already_answered"
	case errors.Is(err, domain.ErrNoIdentity):
		return "no_identity"
	default:
		return "error"
	}
}
