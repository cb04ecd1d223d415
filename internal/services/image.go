package services

import (
	"context"

	"github.com/jwebster45206/companion-engine/pkg/composer"
)

// ImageService defines the interface for the image generation backend
type ImageService interface {
	// Generate renders the prompt pair and returns PNG bytes.
	Generate(ctx context.Context, prompt composer.Prompt) ([]byte, error)
}
