package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SpeechService defines the interface for narration audio synthesis
type SpeechService interface {
	// Synthesize converts narration text to audio bytes with the given voice.
	Synthesize(ctx context.Context, text string, voiceID string) ([]byte, error)
}

// TTSService implements SpeechService against a simple HTTP TTS endpoint.
type TTSService struct {
	baseURL    string
	httpClient *http.Client
}

// TTSRequest is the synthesis request body.
type TTSRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id,omitempty"`
}

// NewTTSService creates a new TTS service against baseURL.
func NewTTSService(baseURL string, timeout time.Duration) *TTSService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &TTSService{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Synthesize converts narration text to audio bytes.
func (t *TTSService) Synthesize(ctx context.Context, text string, voiceID string) ([]byte, error) {
	body, err := json.Marshal(TTSRequest{Text: text, VoiceID: voiceID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tts request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create tts request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts returned status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tts response: %w", err)
	}
	return audio, nil
}
