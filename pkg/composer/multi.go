package composer

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/companion-engine/pkg/scene"
	"github.com/jwebster45206/companion-engine/pkg/session"
	"github.com/jwebster45206/companion-engine/pkg/world"
)

// Multi composes group scenes. Each subject gets its own BREAK-separated
// block so the generator binds outfits and features to the right person,
// then shared framing fragments close the prompt.
type Multi struct{}

func NewMulti() *Multi { return &Multi{} }

func (c *Multi) Compose(sc scene.Context, s *session.Session, w *world.World) Prompt {
	subjects := sc.Subjects
	if len(subjects) < 2 {
		// Should not happen via the dispatcher; degrade to a pair with
		// the active companion rather than emitting a broken count tag.
		subjects = append([]string{s.Game.CompanionName}, subjects...)
	}

	parts := []string{
		qualityPrefix,
		fmt.Sprintf("%dgirls", len(subjects)),
	}

	for _, subject := range subjects {
		base := ""
		if comp, ok := w.Companions[subject]; ok {
			base = comp.BasePrompt
		}
		if base == "" {
			base = defaultNPCFemaleBase
		}
		block := joinParts([]string{
			stripCountTags(base),
			resolveOutfit(subject, sc, s, w, 1.2, false),
		}, ", ")
		parts = append(parts, "BREAK "+block)
	}

	parts = append(parts, interactionBoost)
	if sc.Visual != "" {
		parts = append(parts, fmt.Sprintf("(%s:1.1)", strings.TrimSpace(sc.Visual)))
	}
	parts = append(parts, strings.Join(cleanTags(sc.Tags, bannedMultiTags), ", "))
	parts = append(parts, locationFragment(s, sc.Visual))

	return Prompt{
		Positive: joinParts(parts, ", "),
		Negative: multiNegative,
	}
}

// stripCountTags removes per-character count markers from a base prompt;
// the group count tag owns that information in a multi scene.
func stripCountTags(base string) string {
	fragments := strings.Split(base, ",")
	kept := make([]string, 0, len(fragments))
	for _, f := range fragments {
		lower := strings.ToLower(strings.TrimSpace(f))
		if lower == "1girl" || lower == "1boy" || lower == "solo" {
			continue
		}
		kept = append(kept, strings.TrimSpace(f))
	}
	return strings.Join(kept, ", ")
}
