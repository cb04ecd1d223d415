package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/companion-engine/internal/engine"
	"github.com/jwebster45206/companion-engine/pkg/chat"
)

// TurnHandler handles turn requests
type TurnHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

// NewTurnHandler creates a new turn handler
func NewTurnHandler(eng *engine.Engine, logger *slog.Logger) *TurnHandler {
	return &TurnHandler{
		engine: eng,
		logger: logger,
	}
}

// ServeHTTP handles HTTP requests for turns
func (h *TurnHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var request chat.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'slot' and 'message' fields.")
		return
	}

	if request.Slot == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Save slot is required.")
		return
	}
	if err := request.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info("Turn requested",
		"slot", request.Slot,
		"remote_addr", r.RemoteAddr)

	response, err := h.engine.ProcessTurn(r.Context(), request)
	if err != nil {
		if errors.Is(err, engine.ErrNoSession) {
			writeError(w, h.logger, http.StatusNotFound, "No session in that slot.")
			return
		}
		h.logger.Error("Turn processing failed", "error", err, "slot", request.Slot)
		writeError(w, h.logger, http.StatusInternalServerError, "Turn processing failed.")
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Error encoding turn response", "error", err)
	}
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(chat.TurnResponse{Error: msg}); err != nil {
		logger.Error("Error encoding error response", "error", err)
	}
}
