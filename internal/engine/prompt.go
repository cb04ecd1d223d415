package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jwebster45206/companion-engine/pkg/session"
	"github.com/jwebster45206/companion-engine/pkg/world"
)

// ErrNoSession means the save slot is empty.
var ErrNoSession = errors.New("no session in slot")

// introUserMessage kicks off a fresh game; it is never appended to
// history, only the model's opening narration is.
const introUserMessage = "Begin the story. Introduce yourself and the opening scene."

const replyFormat = `RESPONSE FORMAT:
Write your narrative reply as prose. Then append a fenced json block:

` + "```json" + `
{
  "visual": "short visual description of the current scene",
  "tags": ["tag1", "tag2"],
  "updates": {
    "location": "...", "current_outfit": "...", "gold": 0, "hp": 0,
    "time_of_day": "...", "add_item": "...", "remove_item": "...",
    "flags": {}, "affinity_change": {"Name": 1}, "stat_changes": {},
    "npc_updates": {"Name": {"outfit": "...", "location": "..."}},
    "new_fact": "..."
  }
}
` + "```" + `

Include only the update keys that actually changed this turn. The
"visual" field describes only what the camera would see right now;
never mention characters who are off-screen.`

// buildSystemInstruction assembles the per-turn context block. Order is
// stable: world, active companion, other characters, game state, memory,
// format rules.
func buildSystemInstruction(s *session.Session, w *world.World, memoryBlock string, intro bool) string {
	var sb strings.Builder

	sb.WriteString("You are the game master of an interactive story.\n\n")
	fmt.Fprintf(&sb, "WORLD: %s (%s)\n%s\n", w.Meta.Name, w.Meta.Genre, w.Meta.Lore)
	if len(w.Meta.KeyEvents) > 0 {
		sb.WriteString("KEY EVENTS:\n")
		for _, ev := range w.Meta.KeyEvents {
			sb.WriteString("- " + ev + "\n")
		}
	}
	sb.WriteString("\n")

	name := s.Game.CompanionName
	fmt.Fprintf(&sb, "ACTIVE COMPANION: %s\n", name)
	if c, ok := w.Companions[name]; ok {
		fmt.Fprintf(&sb, "%s\n", c.PersonalityAt(s.Game.Affinity[name]))
	}
	sb.WriteString("\n")

	others := otherCharacters(s, w)
	if others != "" {
		sb.WriteString("OTHER CHARACTERS:\n" + others + "\n")
	}

	sb.WriteString("CURRENT STATE:\n" + gameStateJSON(s) + "\n\n")

	if memoryBlock != "" {
		sb.WriteString(memoryBlock)
	}

	if intro {
		sb.WriteString("This is the very first scene. Open the story, set the location, and greet the player in character.\n\n")
	}

	sb.WriteString(replyFormat)
	return sb.String()
}

// otherCharacters renders the tracked non-active roster members with
// their affinity-tier personalities and last known state.
func otherCharacters(s *session.Session, w *world.World) string {
	var sb strings.Builder
	for _, name := range w.Roster() {
		if name == s.Game.CompanionName {
			continue
		}
		c := w.Companions[name]
		fmt.Fprintf(&sb, "- %s: %s", name, c.PersonalityAt(s.Game.Affinity[name]))
		if st, ok := s.Game.NPCStates[name]; ok && st.Location != "" {
			fmt.Fprintf(&sb, " (last seen: %s)", st.Location)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// gameStateJSON renders the mutable state for the model. Indented so
// the model reads it reliably; keys match the update schema.
func gameStateJSON(s *session.Session) string {
	state := map[string]any{
		"location":       s.Game.Location,
		"companion_name": s.Game.CompanionName,
		"current_outfit": s.Game.CurrentOutfit,
		"inventory":      s.Game.Inventory,
		"gold":           s.Game.Gold,
		"hp":             s.Game.HP,
		"time_of_day":    s.Game.TimeOfDay,
		"affinity":       s.Game.Affinity,
		"turn_count":     s.Meta.TurnCount,
	}
	if len(s.Game.Stats) > 0 {
		state["stats"] = s.Game.Stats
	}
	if len(s.Game.Flags) > 0 {
		state["flags"] = s.Game.Flags
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
