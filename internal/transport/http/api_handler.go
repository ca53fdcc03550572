package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"fintrex-quiz/internal/app"
	"fintrex-quiz/internal/domain"
)

// APIHandler exposes the player-record REST surface.
type APIHandler struct {
	players *app.PlayerService
}

func NewAPIHandler(players *app.PlayerService) *APIHandler {
	return &APIHandler{players: players}
}

// Register mounts the REST routes on the mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/authenticate", h.authenticate)
	mux.HandleFunc("/api/result", h.result)
	mux.HandleFunc("/api/winners", h.winners)
	mux.HandleFunc("/api/losers", h.losers)
	mux.HandleFunc("/health", h.health)
}

type authRequest struct {
	NIC    string `json:"nic"`
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
}

type resultRequest struct {
	NIC   string `json:"nic"`
	Score *int   `json:"score"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (h *APIHandler) authenticate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	player, err := h.players.Authenticate(r.Context(), req.NIC, req.Name, req.Mobile)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]domain.Player{"user": player})
}

func (h *APIHandler) result(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req resultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Score == nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	player, err := h.players.RecordResult(r.Context(), req.NIC, *req.Score)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (h *APIHandler) winners(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	players, err := h.players.Winners(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (h *APIHandler) losers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	players, err := h.players.Losers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (h *APIHandler) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK - Fintrex Quiz backend is alive"))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// writeDomainError maps the error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidNIC),
		errors.Is(err, domain.ErrInvalidMobile),
		errors.Is(err, domain.ErrInvalidScore):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrIdentityConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrAlreadyPlayed),
		errors.Is(err, domain.ErrAlreadyRecorded):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "server error")
	}
}
