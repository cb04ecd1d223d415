// Package scene classifies the visual content of a turn: which
// characters the camera is on, if any. Classification reads only the
// visual description and tags, never the narrative prose, because the
// narration routinely mentions characters who are off-screen.
package scene

import (
	"strings"

	"github.com/jwebster45206/companion-engine/pkg/session"
	"github.com/jwebster45206/companion-engine/pkg/world"
)

// Kind is the classification outcome for a scene.
type Kind string

const (
	KindSingle Kind = "SINGLE"
	KindMulti  Kind = "MULTI"
	KindNPC    Kind = "NPC"
)

// Context is the immutable per-scene value handed to a composer. It
// carries the effective subject(s) so composers never need to read (or
// worse, mutate) companion_name on the live session.
type Context struct {
	Kind     Kind
	Subjects []string // roster names for SINGLE/MULTI, ordered by appearance
	NPCType  string   // matched hint keyword for NPC scenes, e.g. "guard"
	Visual   string
	Tags     []string
}

// CameraText is the lower-cased search string a scene is classified
// against: visual description plus tags, narrative excluded.
func CameraText(visual string, tags []string) string {
	return strings.ToLower(visual + " " + strings.Join(tags, " "))
}

// Classify decides which characters are on-screen. Roster-name matches
// always take priority over generic NPC hints; among multiple names,
// first appearance in the camera text decides the order. With no name
// and no hint the camera is assumed to be on the active companion.
func Classify(visual string, tags []string, s *session.Session, w *world.World) Context {
	camera := CameraText(visual, tags)
	sc := Context{Visual: visual, Tags: tags}

	found := findRosterNames(camera, w)
	switch {
	case len(found) >= 2:
		sc.Kind = KindMulti
		sc.Subjects = found
		return sc
	case len(found) == 1:
		sc.Kind = KindSingle
		sc.Subjects = found
		return sc
	}

	if hint := findNPCHint(camera, w); hint != "" {
		sc.Kind = KindNPC
		sc.NPCType = hint
		return sc
	}

	sc.Kind = KindSingle
	sc.Subjects = []string{s.Game.CompanionName}
	return sc
}

// findRosterNames returns roster characters whose names appear in the
// camera text, ordered by first occurrence and deduplicated.
func findRosterNames(camera string, w *world.World) []string {
	type hit struct {
		name string
		pos  int
	}
	var hits []hit
	for _, name := range w.Roster() {
		if pos := strings.Index(camera, strings.ToLower(name)); pos >= 0 {
			hits = append(hits, hit{name: name, pos: pos})
		}
	}
	// Order by appearance in the text, not roster order.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].pos < hits[j-1].pos; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	names := make([]string, 0, len(hits))
	seen := make(map[string]bool, len(hits))
	for _, h := range hits {
		if !seen[h.name] {
			seen[h.name] = true
			names = append(names, h.name)
		}
	}
	return names
}

// findNPCHint scans the configured generic NPC keywords, requiring a
// whole-word match so "organ" never matches "orc".
func findNPCHint(camera string, w *world.World) string {
	padded := " " + camera + " "
	hints := append(append([]string{}, w.NPCLogic.MaleHints...), w.NPCLogic.FemaleHints...)
	for _, keyword := range hints {
		kw := strings.ToLower(keyword)
		if kw == "" {
			continue
		}
		if strings.Contains(padded, " "+kw+" ") || strings.HasPrefix(camera, kw) {
			return kw
		}
	}
	return ""
}
