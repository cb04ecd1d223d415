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

	"github.com/jwebster45206/companion-engine/pkg/chat"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	DefaultGeminiTemperature = 0.9
	DefaultGeminiMaxTokens   = 2048
	summaryMaxTokens         = 256

	summaryInstruction = "Summarize the following roleplay exchange in 2-3 sentences. " +
		"Keep character names, locations, and any decisions or discoveries. " +
		"Write in past tense, third person."
)

// GeminiService implements LLMService against the Gemini REST API.
type GeminiService struct {
	apiKey     string
	modelName  string
	httpClient *http.Client
}

// GeminiPart is a single content part in a Gemini request or response.
type GeminiPart struct {
	Text string `json:"text"`
}

// GeminiContent is one turn of conversation content.
type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

// GeminiGenerationConfig tunes a generateContent call.
type GeminiGenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// GeminiRequest is the generateContent request body.
type GeminiRequest struct {
	SystemInstruction *GeminiContent          `json:"system_instruction,omitempty"`
	Contents          []GeminiContent         `json:"contents"`
	GenerationConfig  *GeminiGenerationConfig `json:"generationConfig,omitempty"`
}

// GeminiResponse is the generateContent response body.
type GeminiResponse struct {
	Candidates []struct {
		Content      GeminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// NewGeminiService creates a new Gemini service
func NewGeminiService(apiKey string, modelName string, timeout time.Duration) *GeminiService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiService{
		apiKey:    apiKey,
		modelName: modelName,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Chat generates the game-master reply for the conversation.
func (g *GeminiService) Chat(ctx context.Context, systemInstruction string, messages []chat.Message) (string, error) {
	return g.generate(ctx, systemInstruction, messages, &GeminiGenerationConfig{
		Temperature:     DefaultGeminiTemperature,
		MaxOutputTokens: DefaultGeminiMaxTokens,
	})
}

// Summarize compresses old turns into a short summary.
func (g *GeminiService) Summarize(ctx context.Context, messages []chat.Message) (string, error) {
	out, err := g.generate(ctx, summaryInstruction, messages, &GeminiGenerationConfig{
		Temperature:     0.2,
		MaxOutputTokens: summaryMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *GeminiService) generate(ctx context.Context, systemInstruction string, messages []chat.Message, genCfg *GeminiGenerationConfig) (string, error) {
	req := GeminiRequest{
		Contents:         toGeminiContents(messages),
		GenerationConfig: genCfg,
	}
	if systemInstruction != "" {
		req.SystemInstruction = &GeminiContent{
			Parts: []GeminiPart{{Text: systemInstruction}},
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", geminiBaseURL, g.modelName, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}

	var geminiResp GeminiResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return "", fmt.Errorf("failed to parse gemini response: %w", err)
	}
	if geminiResp.Error != nil {
		return "", fmt.Errorf("gemini API error (%s): %s", geminiResp.Error.Status, geminiResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API returned status %d", resp.StatusCode)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range geminiResp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

// toGeminiContents maps conversation messages to the wire format.
// System messages are folded into user turns; Gemini only accepts
// "user" and "model" roles inside contents.
func toGeminiContents(messages []chat.Message) []GeminiContent {
	contents := make([]GeminiContent, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		if role != chat.RoleModel {
			role = chat.RoleUser
		}
		contents = append(contents, GeminiContent{
			Role:  role,
			Parts: []GeminiPart{{Text: m.Content}},
		})
	}
	return contents
}
