package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/companion-engine/pkg/chat"
)

// MockLLM is a mock implementation of LLMService for testing
type MockLLM struct {
	ChatFunc      func(ctx context.Context, systemInstruction string, messages []chat.Message) (string, error)
	SummarizeFunc func(ctx context.Context, messages []chat.Message) (string, error)

	// Track calls for testing
	ChatCalls      []ChatCall
	SummarizeCalls [][]chat.Message

	mu sync.Mutex // protects all fields above
}

type ChatCall struct {
	SystemInstruction string
	Messages          []chat.Message
}

// NewMockLLM creates a new mock LLM service
func NewMockLLM() *MockLLM {
	return &MockLLM{
		ChatCalls:      make([]ChatCall, 0),
		SummarizeCalls: make([][]chat.Message, 0),
	}
}

// Chat mocks game-master reply generation
func (m *MockLLM) Chat(ctx context.Context, systemInstruction string, messages []chat.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ChatCalls = append(m.ChatCalls, ChatCall{SystemInstruction: systemInstruction, Messages: messages})

	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, systemInstruction, messages)
	}
	return "The story continues.", nil
}

// Summarize mocks history summarization
func (m *MockLLM) Summarize(ctx context.Context, messages []chat.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SummarizeCalls = append(m.SummarizeCalls, messages)

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, messages)
	}
	return "Earlier, the pair talked and moved on.", nil
}
