package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"fintrex-quiz/internal/app"
	"fintrex-quiz/internal/domain"
	"fintrex-quiz/internal/quiz"
)

// PlayHandler runs interactive quiz sessions over a websocket. One
// connection serves one player; the handler owns the 1-second ticking task
// for the countdown and stops it the moment the session leaves InProgress
// or the connection goes away.
type PlayHandler struct {
	sessions  *app.SessionService
	threshold int
	upgrader  websocket.Upgrader
}

func NewPlayHandler(sessions *app.SessionService, threshold int) *PlayHandler {
	return &PlayHandler{
		sessions:  sessions,
		threshold: threshold,
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

type optionPayload struct {
	Option string `json:"option"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type questionView struct {
	Number   int      `json:"number"`
	Total    int      `json:"total"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
	Selected string   `json:"selected,omitempty"`
}

type sessionView struct {
	Phase     domain.Phase  `json:"phase"`
	Score     int           `json:"score"`
	Remaining int           `json:"remaining"`
	Question  *questionView `json:"question,omitempty"`
}

type answerResultView struct {
	Correct bool `json:"correct"`
	Score   int  `json:"score"`
}

type finishedView struct {
	Phase   domain.Phase    `json:"phase"`
	Score   int             `json:"score"`
	Total   int             `json:"total"`
	Won     bool            `json:"won"`
	Answers []domain.Answer `json:"answers"`
}

type tickView struct {
	Remaining int `json:"remaining"`
}

// ServePlay upgrades the request and drives the player's session.
func (h *PlayHandler) ServePlay(w http.ResponseWriter, r *http.Request) {
	nic := r.URL.Query().Get("nic")
	if !domain.ValidNIC(nic) {
		http.Error(w, "missing or invalid nic", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	sess, err := h.sessions.Resume(ctx, nic)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	send := make(chan outboundMessage, 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug().Err(err).Msg("ws write error")
				return
			}
		}
	}()

	tickStop := make(chan struct{})
	tickDone := make(chan struct{})
	close(tickDone) // no ticker running yet
	stopTicker := func() {
		select {
		case <-tickDone:
		default:
			close(tickStop)
			<-tickDone
		}
	}
	startTicker := func() {
		stopTicker()
		tickStop = make(chan struct{})
		tickDone = make(chan struct{})
		go h.tickLoop(ctx, nic, send, tickStop, tickDone)
	}

	// Initial snapshot: a terminal blob goes straight to the review screen.
	if sess.Phase.Terminal() {
		send <- outboundMessage{Type: "finished", Payload: h.finishedView(sess)}
	} else {
		send <- outboundMessage{Type: "session", Payload: h.sessionView(sess, time.Now())}
		if sess.Phase == domain.PhaseInProgress {
			startTicker()
		}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if !h.handleMessage(ctx, nic, inbound, send, startTicker, stopTicker) {
			break
		}
	}

	stopTicker()
	close(send)
	<-writerDone
}

// handleMessage dispatches one inbound frame; false means hang up.
func (h *PlayHandler) handleMessage(ctx context.Context, nic string, inbound inboundMessage, send chan<- outboundMessage, startTicker, stopTicker func()) bool {
	switch inbound.Type {
	case "start":
		sess, err := h.sessions.Start(ctx, nic, time.Now())
		if err != nil {
			send <- outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}}
			return true
		}
		send <- outboundMessage{Type: "session", Payload: h.sessionView(sess, time.Now())}
		startTicker()

	case "select":
		var payload optionPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid select payload"}}
			return true
		}
		if _, err := h.sessions.Select(ctx, nic, payload.Option); err != nil {
			send <- outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}}
		}

	case "answer":
		var payload optionPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
			return true
		}
		sess, correct, err := h.sessions.Submit(ctx, nic, payload.Option, time.Now())
		if err != nil {
			send <- outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}}
			return true
		}
		send <- outboundMessage{Type: "answerResult", Payload: answerResultView{Correct: correct, Score: sess.Score}}
		if sess.Phase == domain.PhaseCompleted {
			stopTicker()
			send <- outboundMessage{Type: "finished", Payload: h.finishedView(sess)}
		} else {
			send <- outboundMessage{Type: "session", Payload: h.sessionView(sess, time.Now())}
		}

	case "logout":
		stopTicker()
		if err := h.sessions.Logout(ctx, nic); err != nil {
			log.Warn().Err(err).Str("nic", nic).Msg("logout")
		}
		return false

	default:
		send <- outboundMessage{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
	}
	return true
}

// tickLoop drives the countdown once per second until expiry, terminal
// phase, or cancellation.
func (h *PlayHandler) tickLoop(ctx context.Context, nic string, send chan<- outboundMessage, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			sess, remaining, fired, err := h.sessions.Tick(ctx, nic, time.Now())
			if err != nil {
				return
			}
			if fired {
				select {
				case send <- outboundMessage{Type: "finished", Payload: h.finishedView(sess)}:
				case <-stop:
				}
				return
			}
			if sess.Phase != domain.PhaseInProgress {
				return
			}
			select {
			case send <- outboundMessage{Type: "tick", Payload: tickView{Remaining: remaining}}:
			case <-stop:
				return
			}
		}
	}
}

func (h *PlayHandler) sessionView(sess quiz.Session, now time.Time) sessionView {
	view := sessionView{
		Phase: sess.Phase,
		Score: sess.Score,
	}
	if sess.Phase == domain.PhaseInProgress {
		view.Remaining = sess.Remaining(now)
		if q, ok := sess.Current(); ok {
			view.Question = &questionView{
				Number:   sess.CurrentIndex + 1,
				Total:    len(sess.Questions),
				Text:     q.Text,
				Options:  q.Options,
				Selected: sess.Selected,
			}
		}
	}
	return view
}

func (h *PlayHandler) finishedView(sess quiz.Session) finishedView {
	return finishedView{
		Phase:   sess.Phase,
		Score:   sess.Score,
		Total:   len(sess.Questions),
		Won:     sess.Score >= h.threshold,
		Answers: sess.Answers,
	}
}
