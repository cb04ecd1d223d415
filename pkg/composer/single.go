package composer

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/companion-engine/pkg/scene"
	"github.com/jwebster45206/companion-engine/pkg/session"
	"github.com/jwebster45206/companion-engine/pkg/world"
)

// Single composes the portrait framing for one on-screen character. It
// works for the active companion and for any roster character the
// camera has drifted to.
type Single struct{}

func NewSingle() *Single { return &Single{} }

func (c *Single) Compose(sc scene.Context, s *session.Session, w *world.World) Prompt {
	subject := s.Game.CompanionName
	if len(sc.Subjects) > 0 {
		subject = sc.Subjects[0]
	}

	base := ""
	if comp, ok := w.Companions[subject]; ok {
		base = comp.BasePrompt
	}
	if base == "" {
		base = defaultNPCFemaleBase
	}

	parts := []string{
		qualityPrefix,
		base,
		resolveOutfit(subject, sc, s, w, 1.3, true),
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
