package composer

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/companion-engine/pkg/scene"
	"github.com/jwebster45206/companion-engine/pkg/session"
	"github.com/jwebster45206/companion-engine/pkg/world"
)

// nudeKeywords trigger the nudity override in an outfit description or
// the visual scene text.
var nudeKeywords = []string{"naked", "nude", "undressed", "nothing"}

// barefootKeywords in the visual text mean footwear nouns must be
// stripped from the outfit, or the generator draws contradictory feet.
var barefootKeywords = []string{"barefoot", "bare feet", "bare foot", "no shoes"}

// footwearNouns are removed from outfit descriptions on a barefoot scene.
var footwearNouns = []string{"boots", "boot", "shoes", "shoe", "heels", "sandals", "sneakers", "stockings", "socks", "footwear"}

// outfitKeyFor picks the wardrobe key for a character: the session's
// current outfit for the active companion, the tracked NPC outfit when
// one is saved, or the character's configured default.
func outfitKeyFor(name string, s *session.Session, w *world.World) string {
	if name == s.Game.CompanionName && s.Game.CurrentOutfit != "" {
		return s.Game.CurrentOutfit
	}
	if st, ok := s.Game.NPCStates[name]; ok && st.CurrentOutfit != "" {
		return st.CurrentOutfit
	}
	return w.DefaultOutfitFor(name)
}

// resolveOutfit builds the weighted outfit fragment for one character.
// It never fails: a missing character or wardrobe entry degrades to a
// generic description. checkVisual widens the nudity scan to the scene
// text (single-subject framing); multi keeps it per-wardrobe to avoid
// undressing every subject at once.
func resolveOutfit(name string, sc scene.Context, s *session.Session, w *world.World, weight float64, checkVisual bool) string {
	key := outfitKeyFor(name, s, w)

	// The key itself can declare nudity ("nothing", "naked") without any
	// wardrobe entry backing it.
	if containsAny(strings.ToLower(key), nudeKeywords) {
		return fmt.Sprintf("(nude:%.1f)", weight)
	}

	desc := ""
	if c, ok := w.Companions[name]; ok {
		desc = c.Wardrobe[key]
		if desc == "" {
			desc = c.Wardrobe["default"]
		}
	}
	if desc == "" {
		desc = key
	}
	if desc == "" {
		desc = "clothing"
	}

	clean := strings.ToLower(desc)
	clean = strings.ReplaceAll(clean, "wearing ", "")
	clean = strings.ReplaceAll(clean, "(", "")
	clean = strings.ReplaceAll(clean, ")", "")
	clean = strings.TrimSpace(clean)

	visual := strings.ToLower(sc.Visual)
	if containsAny(visual, barefootKeywords) {
		clean = stripWords(clean, footwearNouns)
	}

	if containsAny(clean, nudeKeywords) || (checkVisual && containsAny(visual, nudeKeywords)) {
		return fmt.Sprintf("(nude:%.1f)", weight)
	}
	return fmt.Sprintf("(wearing %s:%.1f)", clean, weight)
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// stripWords removes keyword tokens from a comma-separated description,
// dropping fragments that become empty.
func stripWords(text string, words []string) string {
	parts := strings.Split(text, ",")
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		p := part
		for _, word := range words {
			p = removeWord(p, word)
		}
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// removeWord drops whole-word occurrences of word from text.
func removeWord(text, word string) string {
	fields := strings.Fields(text)
	kept := fields[:0]
	for _, f := range fields {
		if !strings.EqualFold(f, word) {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// cleanTags drops tags already implied by the base descriptors so the
// final prompt doesn't repeat quality or subject-count tokens.
func cleanTags(tags []string, banned []string) []string {
	kept := make([]string, 0, len(tags))
	for _, t := range tags {
		lower := strings.ToLower(strings.TrimSpace(t))
		if lower == "" {
			continue
		}
		skip := false
		for _, b := range banned {
			if lower == b {
				skip = true
				break
			}
		}
		if !skip {
			kept = append(kept, strings.TrimSpace(t))
		}
	}
	return kept
}

// locationFragment grounds the image in the session location unless the
// visual text already names it.
func locationFragment(s *session.Session, visual string) string {
	loc := s.Game.Location
	if loc == "" {
		return ""
	}
	if visual != "" && strings.Contains(strings.ToLower(visual), strings.ToLower(loc)) {
		return ""
	}
	return "background is " + loc
}

// joinParts assembles prompt fragments with a separator, trimming empty
// fragments and stray commas.
func joinParts(parts []string, sep string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), ",")
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
