package session

import (
	"encoding/json"

	"github.com/jwebster45206/companion-engine/pkg/world"
)

// Update is the partial-update document extracted from a game-master
// reply. Every field is optional; unknown keys in the source JSON are
// ignored by contract, so the model's output schema can grow without
// breaking older engines.
type Update struct {
	Location       *string                `json:"location,omitempty"`
	CurrentOutfit  *string                `json:"current_outfit,omitempty"`
	Gold           *int                   `json:"gold,omitempty"`
	HP             *int                   `json:"hp,omitempty"`
	TimeOfDay      *string                `json:"time_of_day,omitempty"`
	AddItem        string                 `json:"add_item,omitempty"`
	RemoveItem     string                 `json:"remove_item,omitempty"`
	NPCUpdates     map[string]NPCUpdate   `json:"npc_updates,omitempty"`
	Flags          map[string]any         `json:"flags,omitempty"`
	AffinityChange map[string]json.Number `json:"affinity_change,omitempty"`
	StatChanges    map[string]json.Number `json:"stat_changes,omitempty"`
	NewFact        string                 `json:"new_fact,omitempty"`
}

// NPCUpdate is a per-NPC partial update.
type NPCUpdate struct {
	Outfit   *string `json:"outfit,omitempty"`
	Location *string `json:"location,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (u *Update) IsEmpty() bool {
	return u == nil || (u.Location == nil &&
		u.CurrentOutfit == nil &&
		u.Gold == nil &&
		u.HP == nil &&
		u.TimeOfDay == nil &&
		u.AddItem == "" &&
		u.RemoveItem == "" &&
		len(u.NPCUpdates) == 0 &&
		len(u.Flags) == 0 &&
		len(u.AffinityChange) == 0 &&
		len(u.StatChanges) == 0 &&
		u.NewFact == "")
}

// ParseUpdate decodes a raw updates payload. A nil or malformed payload
// yields nil (narrative-only turn), never an error.
func ParseUpdate(raw json.RawMessage) *Update {
	if len(raw) == 0 {
		return nil
	}
	var u Update
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil
	}
	return &u
}

// Apply merges the update into the session. Affinity deltas apply only
// to known roster characters and clamp to [0,100]; stat deltas apply
// only to existing stats and floor at 0; inventory keeps set semantics.
// A non-empty update advances the turn counter by one.
func (s *Session) Apply(u *Update, w *world.World) {
	if u.IsEmpty() {
		return
	}

	if u.Location != nil && *u.Location != "" {
		s.Game.Location = *u.Location
	}
	if u.CurrentOutfit != nil && *u.CurrentOutfit != "" {
		s.Game.CurrentOutfit = *u.CurrentOutfit
	}
	if u.Gold != nil {
		s.Game.Gold = *u.Gold
	}
	if u.HP != nil {
		s.Game.HP = *u.HP
	}
	if u.TimeOfDay != nil && *u.TimeOfDay != "" {
		s.Game.TimeOfDay = *u.TimeOfDay
	}

	if u.AddItem != "" && !s.HasItem(u.AddItem) {
		s.Game.Inventory = append(s.Game.Inventory, u.AddItem)
	}
	if u.RemoveItem != "" {
		for i, it := range s.Game.Inventory {
			if it == u.RemoveItem {
				s.Game.Inventory = append(s.Game.Inventory[:i], s.Game.Inventory[i+1:]...)
				break
			}
		}
	}

	for name, nu := range u.NPCUpdates {
		st := s.Game.NPCStates[name]
		if nu.Outfit != nil && *nu.Outfit != "" {
			st.CurrentOutfit = *nu.Outfit
		}
		if nu.Location != nil && *nu.Location != "" {
			st.Location = *nu.Location
		}
		s.Game.NPCStates[name] = st
	}

	for k, v := range u.Flags {
		s.Game.Flags[k] = v
	}

	for name, delta := range u.AffinityChange {
		d, err := delta.Int64()
		if err != nil {
			continue
		}
		if _, known := s.Game.Affinity[name]; !known {
			if w == nil || !w.HasCompanion(name) {
				continue
			}
		}
		s.Game.Affinity[name] = clamp(s.Game.Affinity[name]+int(d), 0, 100)
	}

	for stat, delta := range u.StatChanges {
		d, err := delta.Int64()
		if err != nil {
			continue
		}
		cur, exists := s.Game.Stats[stat]
		if !exists {
			continue
		}
		v := cur + int(d)
		if v < 0 {
			v = 0
		}
		s.Game.Stats[stat] = v
	}

	s.Meta.TurnCount++
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
