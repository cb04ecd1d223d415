package storage

import (
	"context"

	"github.com/jwebster45206/companion-engine/pkg/session"
	"github.com/jwebster45206/companion-engine/pkg/world"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the service connection
	Close() error
}

// Storage defines the interface for session persistence and world
// cartridge loading. Sessions live in named save slots; worlds are
// static resources.
type Storage interface {
	HealthChecker
	Closer

	// SaveSession writes a session to the named slot, overwriting any
	// previous save there.
	SaveSession(ctx context.Context, slot string, s *session.Session) error

	// LoadSession retrieves the session in a slot.
	// Returns nil if the slot is empty.
	LoadSession(ctx context.Context, slot string) (*session.Session, error)

	// DeleteSession clears a save slot.
	DeleteSession(ctx context.Context, slot string) error

	// ListSaves returns the occupied slot names, sorted.
	ListSaves(ctx context.Context) ([]string, error)

	// GetWorld loads a world cartridge by ID.
	GetWorld(ctx context.Context, id string) (*world.World, error)

	// ListWorlds returns the available world IDs, sorted.
	ListWorlds(ctx context.Context) ([]string, error)
}
