package session

import (
	"encoding/json"
	"testing"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestParseUpdate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantNil bool
	}{
		{"empty payload", "", true},
		{"malformed json", `{"gold": `, true},
		{"valid update", `{"gold": 5, "location": "Tavern"}`, false},
		{"unknown keys ignored", `{"gold": 5, "mystery_key": true}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := ParseUpdate(json.RawMessage(tt.raw))
			if (u == nil) != tt.wantNil {
				t.Errorf("ParseUpdate(%q) nil = %v, want %v", tt.raw, u == nil, tt.wantNil)
			}
		})
	}
}

func TestApply_ScalarOverwrites(t *testing.T) {
	w := testWorld()
	s := New(w, "Luna")

	s.Apply(&Update{
		Location:      strPtr("Harbor"),
		CurrentOutfit: strPtr("armor"),
		Gold:          intPtr(42),
		HP:            intPtr(7),
		TimeOfDay:     strPtr(TimeNight),
	}, w)

	if s.Game.Location != "Harbor" || s.Game.CurrentOutfit != "armor" ||
		s.Game.Gold != 42 || s.Game.HP != 7 || s.Game.TimeOfDay != TimeNight {
		t.Errorf("Expected scalar overwrites, got %+v", s.Game)
	}
}

func TestApply_InventorySetSemantics(t *testing.T) {
	w := testWorld()
	s := New(w, "Luna")

	s.Apply(&Update{AddItem: "rope"}, w)
	s.Apply(&Update{AddItem: "rope"}, w)
	if len(s.Game.Inventory) != 1 {
		t.Errorf("Expected duplicate add to be a no-op, inventory = %v", s.Game.Inventory)
	}

	s.Apply(&Update{RemoveItem: "lantern"}, w)
	if len(s.Game.Inventory) != 1 {
		t.Errorf("Expected removal of absent item to be a no-op, inventory = %v", s.Game.Inventory)
	}

	s.Apply(&Update{RemoveItem: "rope"}, w)
	if len(s.Game.Inventory) != 0 {
		t.Errorf("Expected rope removed, inventory = %v", s.Game.Inventory)
	}
}

func TestApply_AffinityClampAndUnknown(t *testing.T) {
	w := testWorld()
	s := New(w, "Luna")

	s.Apply(&Update{AffinityChange: map[string]json.Number{"Luna": "150"}}, w)
	if s.Game.Affinity["Luna"] != 100 {
		t.Errorf("Expected affinity clamped to 100, got %d", s.Game.Affinity["Luna"])
	}

	s.Apply(&Update{AffinityChange: map[string]json.Number{"Luna": "-999"}}, w)
	if s.Game.Affinity["Luna"] != 0 {
		t.Errorf("Expected affinity clamped to 0, got %d", s.Game.Affinity["Luna"])
	}

	s.Apply(&Update{AffinityChange: map[string]json.Number{"Stranger": "10"}}, w)
	if _, ok := s.Game.Affinity["Stranger"]; ok {
		t.Error("Expected unknown character affinity to be ignored")
	}

	s.Apply(&Update{AffinityChange: map[string]json.Number{"Luna": "not-a-number"}}, w)
	if s.Game.Affinity["Luna"] != 0 {
		t.Error("Expected non-numeric delta to be ignored")
	}
}

func TestApply_StatsFloorAndExistingOnly(t *testing.T) {
	w := testWorld()
	s := New(w, "Luna")
	s.Game.Stats["strength"] = 3

	s.Apply(&Update{StatChanges: map[string]json.Number{"strength": "-10"}}, w)
	if s.Game.Stats["strength"] != 0 {
		t.Errorf("Expected strength floored at 0, got %d", s.Game.Stats["strength"])
	}

	s.Apply(&Update{StatChanges: map[string]json.Number{"luck": "5"}}, w)
	if _, ok := s.Game.Stats["luck"]; ok {
		t.Error("Expected unknown stat to be ignored")
	}
}

func TestApply_NPCUpsertAndFlags(t *testing.T) {
	w := testWorld()
	s := New(w, "Luna")

	outfit := "cloak"
	loc := "Docks"
	s.Apply(&Update{
		NPCUpdates: map[string]NPCUpdate{
			"Aria":   {Outfit: &outfit, Location: &loc},
			"Shadow": {Location: &loc},
		},
		Flags: map[string]any{"bridge_open": true},
	}, w)

	if st := s.Game.NPCStates["Aria"]; st.CurrentOutfit != "cloak" || st.Location != "Docks" {
		t.Errorf("Expected Aria state updated, got %+v", st)
	}
	// Untracked names are created rather than dropped.
	if st := s.Game.NPCStates["Shadow"]; st.Location != "Docks" {
		t.Errorf("Expected Shadow state upserted, got %+v", st)
	}
	if v, ok := s.Game.Flags["bridge_open"]; !ok || v != true {
		t.Errorf("Expected flag merged, got %v", s.Game.Flags)
	}
}

func TestApply_TurnCounter(t *testing.T) {
	w := testWorld()
	s := New(w, "Luna")
	start := s.Meta.TurnCount

	s.Apply(nil, w)
	s.Apply(&Update{}, w)
	if s.Meta.TurnCount != start {
		t.Errorf("Expected empty updates not to advance the counter, got %d", s.Meta.TurnCount)
	}

	s.Apply(&Update{AddItem: "rope"}, w)
	if s.Meta.TurnCount != start+1 {
		t.Errorf("Expected non-empty update to advance the counter once, got %d", s.Meta.TurnCount)
	}
}

// Full-turn scenario: a fresh session takes one rich update and every
// rule fires together.
func TestApply_FullTurn(t *testing.T) {
	w := testWorld()
	s := New(w, "Luna")

	raw := json.RawMessage(`{
		"location": "Moonlit Shrine",
		"current_outfit": "armor",
		"gold": 12,
		"add_item": "silver key",
		"affinity_change": {"Luna": 8, "Aria": -3},
		"flags": {"shrine_visited": true},
		"new_fact": "Luna fears thunderstorms."
	}`)
	u := ParseUpdate(raw)
	if u == nil {
		t.Fatal("Expected update to parse")
	}
	s.Apply(u, w)

	if s.Game.Location != "Moonlit Shrine" {
		t.Errorf("location = %q", s.Game.Location)
	}
	if s.Game.CurrentOutfit != "armor" {
		t.Errorf("current_outfit = %q", s.Game.CurrentOutfit)
	}
	if s.Game.Gold != 12 {
		t.Errorf("gold = %d", s.Game.Gold)
	}
	if !s.HasItem("silver key") {
		t.Error("Expected silver key in inventory")
	}
	if s.Game.Affinity["Luna"] != 8 {
		t.Errorf("Luna affinity = %d, want 8", s.Game.Affinity["Luna"])
	}
	if s.Game.Affinity["Aria"] != 0 {
		t.Errorf("Aria affinity = %d, want 0 (clamped)", s.Game.Affinity["Aria"])
	}
	if s.Meta.TurnCount != 2 {
		t.Errorf("turn_count = %d, want 2", s.Meta.TurnCount)
	}
	if u.NewFact != "Luna fears thunderstorms." {
		t.Errorf("new_fact = %q", u.NewFact)
	}
}
