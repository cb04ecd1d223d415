package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/companion-engine/internal/storage"
	"github.com/jwebster45206/companion-engine/pkg/world"
)

// WorldsResponse lists available world cartridges or returns one.
type WorldsResponse struct {
	Worlds []string     `json:"worlds,omitempty"`
	World  *world.World `json:"world,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// WorldsHandler serves world cartridge metadata
type WorldsHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewWorldsHandler creates a new worlds handler
func NewWorldsHandler(store storage.Storage, logger *slog.Logger) *WorldsHandler {
	return &WorldsHandler{
		storage: store,
		logger:  logger,
	}
}

// ServeHTTP handles GET /v1/worlds and GET /v1/worlds/{id}
func (h *WorldsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/worlds"), "/")
	if id == "" {
		ids, err := h.storage.ListWorlds(r.Context())
		if err != nil {
			h.logger.Error("Failed to list worlds", "error", err)
			h.writeError(w, http.StatusInternalServerError, "Failed to list worlds.")
			return
		}
		h.write(w, WorldsResponse{Worlds: ids})
		return
	}

	wld, err := h.storage.GetWorld(r.Context(), id)
	if err != nil {
		h.logger.Warn("World not found", "error", err, "world_id", id)
		h.writeError(w, http.StatusNotFound, "World not found.")
		return
	}
	h.write(w, WorldsResponse{World: wld})
}

func (h *WorldsHandler) write(w http.ResponseWriter, resp WorldsResponse) {
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Error encoding worlds response", "error", err)
	}
}

func (h *WorldsHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	h.write(w, WorldsResponse{Error: msg})
}
