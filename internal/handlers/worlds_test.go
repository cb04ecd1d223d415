package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/companion-engine/internal/storage"
)

func TestWorldsHandler_List(t *testing.T) {
	store := storage.NewMockStorage()
	store.AddWorld(testWorld())
	handler := NewWorldsHandler(store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/worlds", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp WorldsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"test_world"}, resp.Worlds)
}

func TestWorldsHandler_GetByID(t *testing.T) {
	store := storage.NewMockStorage()
	store.AddWorld(testWorld())
	handler := NewWorldsHandler(store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/worlds/test_world", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp WorldsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.World)
	assert.Equal(t, "Test World", resp.World.Meta.Name)
}

func TestWorldsHandler_NotFound(t *testing.T) {
	store := storage.NewMockStorage()
	handler := NewWorldsHandler(store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/worlds/ghost", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorldsHandler_MethodNotAllowed(t *testing.T) {
	store := storage.NewMockStorage()
	handler := NewWorldsHandler(store, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/worlds", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
