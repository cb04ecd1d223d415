package services

import (
	"context"

	"github.com/jwebster45206/companion-engine/pkg/chat"
)

// LLMService defines the interface for interacting with the LLM API
type LLMService interface {
	// Chat generates the game-master reply for the conversation so far.
	// systemInstruction carries the assembled turn context.
	Chat(ctx context.Context, systemInstruction string, messages []chat.Message) (string, error)

	// Summarize compresses a span of old turns into a short summary.
	// It satisfies memory.Summarizer.
	Summarize(ctx context.Context, messages []chat.Message) (string, error)
}
