package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/companion-engine/pkg/composer"
)

// MockImage is a mock implementation of ImageService for testing
type MockImage struct {
	GenerateFunc func(ctx context.Context, prompt composer.Prompt) ([]byte, error)

	// Track calls for testing
	GenerateCalls []composer.Prompt

	mu sync.Mutex
}

// NewMockImage creates a new mock image service
func NewMockImage() *MockImage {
	return &MockImage{
		GenerateCalls: make([]composer.Prompt, 0),
	}
}

// Generate mocks image rendering
func (m *MockImage) Generate(ctx context.Context, prompt composer.Prompt) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateCalls = append(m.GenerateCalls, prompt)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return []byte("png"), nil
}

// Calls returns a snapshot of the recorded prompts.
func (m *MockImage) Calls() []composer.Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]composer.Prompt, len(m.GenerateCalls))
	copy(out, m.GenerateCalls)
	return out
}
