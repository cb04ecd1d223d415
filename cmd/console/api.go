package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jwebster45206/companion-engine/internal/handlers"
	"github.com/jwebster45206/companion-engine/pkg/chat"
	"github.com/jwebster45206/companion-engine/pkg/session"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func listWorlds(client *http.Client, baseURL string) ([]string, error) {
	resp, err := client.Get(baseURL + "/v1/worlds")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	var worldsResp handlers.WorldsResponse
	if err := decodeResponse(resp, &worldsResp); err != nil {
		return nil, err
	}
	if worldsResp.Error != "" {
		return nil, fmt.Errorf("failed to list worlds: %s", worldsResp.Error)
	}
	return worldsResp.Worlds, nil
}

func createSession(client *http.Client, baseURL string, slot string, worldID string) (*session.Session, *chat.TurnResponse, error) {
	reqBody, err := json.Marshal(handlers.CreateSessionRequest{
		Slot:    slot,
		WorldID: worldID,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/sessions", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	var sessionResp handlers.SessionResponse
	if err := decodeResponse(resp, &sessionResp); err != nil {
		return nil, nil, err
	}
	if sessionResp.Error != "" {
		return nil, nil, fmt.Errorf("failed to create session: %s", sessionResp.Error)
	}
	return sessionResp.Session, sessionResp.Intro, nil
}

func loadSession(client *http.Client, baseURL string, slot string) (*session.Session, error) {
	resp, err := client.Get(baseURL + "/v1/sessions?slot=" + slot)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	var sessionResp handlers.SessionResponse
	if err := decodeResponse(resp, &sessionResp); err != nil {
		return nil, err
	}
	if sessionResp.Error != "" {
		return nil, fmt.Errorf("failed to load session: %s", sessionResp.Error)
	}
	return sessionResp.Session, nil
}

func sendTurn(client *http.Client, baseURL string, slot string, message string) (*chat.TurnResponse, error) {
	reqBody, err := json.Marshal(chat.TurnRequest{
		Slot:    slot,
		Message: message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/turn", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	var turnResp chat.TurnResponse
	if err := decodeResponse(resp, &turnResp); err != nil {
		return nil, err
	}
	if turnResp.Error != "" {
		return nil, fmt.Errorf("turn failed: %s", turnResp.Error)
	}
	return &turnResp, nil
}

func decodeResponse(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
