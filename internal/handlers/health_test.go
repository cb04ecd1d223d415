package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jwebster45206/companion-engine/internal/storage"
)

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		setupStorage   func() *storage.MockStorage
		expectedStatus int
		expectedHealth string
	}{
		{
			name: "healthy",
			setupStorage: func() *storage.MockStorage {
				return storage.NewMockStorage()
			},
			expectedStatus: http.StatusOK,
			expectedHealth: "healthy",
		},
		{
			name: "unhealthy storage",
			setupStorage: func() *storage.MockStorage {
				m := storage.NewMockStorage()
				m.SetPingError(errors.New("connection failed"))
				return m
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.setupStorage(), testLogger())

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var resp HealthResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to parse response: %v", err)
			}
			if resp.Status != tt.expectedHealth {
				t.Errorf("Expected health %q, got %q", tt.expectedHealth, resp.Status)
			}
		})
	}
}
