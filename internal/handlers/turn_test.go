package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/companion-engine/internal/engine"
	"github.com/jwebster45206/companion-engine/internal/services"
	"github.com/jwebster45206/companion-engine/internal/storage"
	"github.com/jwebster45206/companion-engine/pkg/chat"
	"github.com/jwebster45206/companion-engine/pkg/memory"
	"github.com/jwebster45206/companion-engine/pkg/session"
	"github.com/jwebster45206/companion-engine/pkg/world"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testWorld() *world.World {
	return &world.World{
		Meta: world.Meta{ID: "test_world", Name: "Test World"},
		Companions: map[string]world.Companion{
			"Luna": {
				BasePrompt:    "1girl, silver hair",
				Wardrobe:      map[string]string{"default": "white dress"},
				DefaultOutfit: "default",
			},
		},
	}
}

func setupTurnHandler(t *testing.T) (*TurnHandler, *storage.MockStorage) {
	t.Helper()

	store := storage.NewMockStorage()
	store.AddWorld(testWorld())

	llm := services.NewMockLLM()
	mem := memory.NewManager(12, 4, llm, testLogger())
	eng := engine.New(store, llm, mem, nil, nil, nil, testLogger())

	return NewTurnHandler(eng, testLogger()), store
}

func TestTurnHandler_MethodNotAllowed(t *testing.T) {
	handler, _ := setupTurnHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/turn", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestTurnHandler_InvalidBody(t *testing.T) {
	handler, _ := setupTurnHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/turn", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTurnHandler_MissingSlot(t *testing.T) {
	handler, _ := setupTurnHandler(t)

	body, _ := json.Marshal(chat.TurnRequest{Message: "hello"})
	req := httptest.NewRequest(http.MethodPost, "/v1/turn", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTurnHandler_UnknownSlot(t *testing.T) {
	handler, _ := setupTurnHandler(t)

	body, _ := json.Marshal(chat.TurnRequest{Slot: "ghost", Message: "hello"})
	req := httptest.NewRequest(http.MethodPost, "/v1/turn", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTurnHandler_Success(t *testing.T) {
	handler, store := setupTurnHandler(t)

	s := session.New(testWorld(), "Luna")
	require.NoError(t, store.SaveSession(context.Background(), "slot1", s))

	body, _ := json.Marshal(chat.TurnRequest{Slot: "slot1", Message: "hello"})
	req := httptest.NewRequest(http.MethodPost, "/v1/turn", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp chat.TurnResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Narrative)
	assert.Empty(t, resp.Error)
	assert.False(t, resp.Voided)
}
