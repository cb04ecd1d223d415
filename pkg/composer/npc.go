package composer

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/companion-engine/pkg/scene"
	"github.com/jwebster45206/companion-engine/pkg/session"
	"github.com/jwebster45206/companion-engine/pkg/world"
)

// NPC composes scenes focused on a generic, unnamed character matched by
// a hint keyword. The keyword leads the prompt so the generator knows
// what kind of figure to draw; gender routing picks the base template.
type NPC struct{}

func NewNPC() *NPC { return &NPC{} }

func (c *NPC) Compose(sc scene.Context, s *session.Session, w *world.World) Prompt {
	base := w.NPCLogic.MaleBase
	if base == "" {
		base = defaultNPCMaleBase
	}
	if w.NPCLogic.IsFemaleHint(sc.NPCType) {
		base = w.NPCLogic.FemaleBase
		if base == "" {
			base = defaultNPCFemaleBase
		}
	}

	parts := []string{
		qualityPrefix,
		sc.NPCType,
		base,
	}
	if sc.Visual != "" {
		parts = append(parts, fmt.Sprintf("(%s:1.1)", strings.TrimSpace(sc.Visual)))
	}
	parts = append(parts, strings.Join(cleanTags(sc.Tags, bannedSoloTags), ", "))
	parts = append(parts, locationFragment(s, sc.Visual))

	return Prompt{
		Positive: joinParts(parts, ", "),
		Negative: baseNegative,
	}
}
