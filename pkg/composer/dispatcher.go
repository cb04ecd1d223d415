package composer

import (
	"log/slog"

	"github.com/jwebster45206/companion-engine/pkg/scene"
	"github.com/jwebster45206/companion-engine/pkg/session"
	"github.com/jwebster45206/companion-engine/pkg/world"
)

// Dispatcher classifies a scene and routes it to the matching composer.
// Missing composers fall back to the single-subject composer at
// construction time, so Dispatch itself has no failure path.
type Dispatcher struct {
	single Composer
	multi  Composer
	npc    Composer
	logger *slog.Logger
}

// NewDispatcher wires the variant composers. single must be non-nil;
// nil multi or npc fall back to single.
func NewDispatcher(single, multi, npc Composer, logger *slog.Logger) *Dispatcher {
	if single == nil {
		single = NewSingle()
	}
	if multi == nil {
		multi = single
	}
	if npc == nil {
		npc = single
	}
	return &Dispatcher{single: single, multi: multi, npc: npc, logger: logger}
}

// Dispatch classifies the visual content and composes the prompt pair.
// The session is read-only throughout; the scene context carries the
// effective subjects instead.
func (d *Dispatcher) Dispatch(visual string, tags []string, s *session.Session, w *world.World) Prompt {
	sc := scene.Classify(visual, tags, s, w)

	if d.logger != nil {
		d.logger.Debug("Scene classified",
			"kind", sc.Kind,
			"subjects", sc.Subjects,
			"npc_type", sc.NPCType)
	}

	switch sc.Kind {
	case scene.KindMulti:
		return d.multi.Compose(sc, s, w)
	case scene.KindNPC:
		return d.npc.Compose(sc, s, w)
	default:
		return d.single.Compose(sc, s, w)
	}
}
