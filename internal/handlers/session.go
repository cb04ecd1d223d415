package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/companion-engine/internal/engine"
	"github.com/jwebster45206/companion-engine/internal/storage"
	"github.com/jwebster45206/companion-engine/pkg/chat"
	"github.com/jwebster45206/companion-engine/pkg/session"
)

// CreateSessionRequest starts a new game in a save slot.
type CreateSessionRequest struct {
	Slot          string `json:"slot"`
	WorldID       string `json:"world_id"`
	CompanionName string `json:"companion_name,omitempty"`
}

// SessionResponse wraps a session document for the API.
type SessionResponse struct {
	Session *session.Session   `json:"session,omitempty"`
	Intro   *chat.TurnResponse `json:"intro,omitempty"`
	Slots   []string           `json:"slots,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// SessionHandler handles session lifecycle requests: create a new game,
// load a save, list and delete slots.
type SessionHandler struct {
	engine  *engine.Engine
	storage storage.Storage
	logger  *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(eng *engine.Engine, store storage.Storage, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		engine:  eng,
		storage: store,
		logger:  logger,
	}
}

// ServeHTTP routes session requests by method: POST creates, GET loads
// or lists, DELETE clears a slot.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.get(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
	}
}

func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Slot == "" || req.WorldID == "" {
		h.writeError(w, http.StatusBadRequest, "Fields 'slot' and 'world_id' are required.")
		return
	}

	s, intro, err := h.engine.NewGame(r.Context(), req.Slot, req.WorldID, req.CompanionName)
	if err != nil {
		h.logger.Error("Failed to create session", "error", err, "slot", req.Slot, "world_id", req.WorldID)
		h.writeError(w, http.StatusInternalServerError, "Failed to create session.")
		return
	}

	h.logger.Info("Session created", "slot", req.Slot, "world_id", req.WorldID, "companion", s.Game.CompanionName)

	w.WriteHeader(http.StatusCreated)
	h.write(w, SessionResponse{Session: s, Intro: intro})
}

func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request) {
	slot := r.URL.Query().Get("slot")
	if slot == "" {
		slots, err := h.storage.ListSaves(r.Context())
		if err != nil {
			h.logger.Error("Failed to list saves", "error", err)
			h.writeError(w, http.StatusInternalServerError, "Failed to list saves.")
			return
		}
		h.write(w, SessionResponse{Slots: slots})
		return
	}

	s, err := h.storage.LoadSession(r.Context(), slot)
	if err != nil {
		h.logger.Error("Failed to load session", "error", err, "slot", slot)
		h.writeError(w, http.StatusInternalServerError, "Failed to load session.")
		return
	}
	if s == nil {
		h.writeError(w, http.StatusNotFound, "No session in that slot.")
		return
	}
	h.write(w, SessionResponse{Session: s})
}

func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request) {
	slot := r.URL.Query().Get("slot")
	if slot == "" {
		h.writeError(w, http.StatusBadRequest, "Query parameter 'slot' is required.")
		return
	}
	if err := h.storage.DeleteSession(r.Context(), slot); err != nil {
		h.logger.Error("Failed to delete session", "error", err, "slot", slot)
		h.writeError(w, http.StatusInternalServerError, "Failed to delete session.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) write(w http.ResponseWriter, resp SessionResponse) {
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Error encoding session response", "error", err)
	}
}

func (h *SessionHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	h.write(w, SessionResponse{Error: msg})
}
