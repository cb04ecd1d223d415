package world

import (
	"testing"
)

func testWorld() *World {
	return &World{
		Meta: Meta{ID: "test_world", Name: "Test World", Genre: "fantasy"},
		Companions: map[string]Companion{
			"Luna": {
				BasePrompt:    "1girl, silver hair, violet eyes",
				Wardrobe:      map[string]string{"default": "white summer dress", "armor": "polished steel armor"},
				DefaultOutfit: "default",
				Tiers: []Tier{
					{Threshold: 0, Description: "Distant and wary."},
					{Threshold: 30, Description: "Warming up to you."},
					{Threshold: 70, Description: "Openly affectionate."},
				},
			},
			"Aria": {
				BasePrompt: "1girl, red hair, green eyes",
				Wardrobe:   map[string]string{"default": "leather travel gear"},
			},
		},
		NPCLogic: NPCLogic{
			MaleHints:   []string{"guard", "merchant", "old man"},
			FemaleHints: []string{"waitress", "barmaid"},
		},
	}
}

func TestRoster_SortedOrder(t *testing.T) {
	w := testWorld()
	roster := w.Roster()
	if len(roster) != 2 {
		t.Fatalf("Expected 2 roster entries, got %d", len(roster))
	}
	if roster[0] != "Aria" || roster[1] != "Luna" {
		t.Errorf("Expected sorted roster [Aria Luna], got %v", roster)
	}
}

func TestPersonalityAt(t *testing.T) {
	c := testWorld().Companions["Luna"]

	tests := []struct {
		name   string
		points int
		want   string
	}{
		{"at zero", 0, "Distant and wary."},
		{"below second tier", 29, "Distant and wary."},
		{"exactly second tier", 30, "Warming up to you."},
		{"between tiers", 50, "Warming up to you."},
		{"top tier", 100, "Openly affectionate."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.PersonalityAt(tt.points); got != tt.want {
				t.Errorf("PersonalityAt(%d) = %q, want %q", tt.points, got, tt.want)
			}
		})
	}
}

func TestPersonalityAt_NoTiers(t *testing.T) {
	c := Companion{}
	if got := c.PersonalityAt(50); got != "Standard personality." {
		t.Errorf("Expected standard fallback, got %q", got)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"luna", "Luna"},
		{"LUNA", "Luna"},
		{"old man", "Old Man"},
		{"Luna", "Luna"},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsFemaleHint(t *testing.T) {
	nl := testWorld().NPCLogic
	if !nl.IsFemaleHint("waitress") {
		t.Error("Expected waitress to be a female hint")
	}
	if nl.IsFemaleHint("guard") {
		t.Error("Expected guard not to be a female hint")
	}
}

func TestDefaultOutfitFor_Unknown(t *testing.T) {
	w := testWorld()
	if got := w.DefaultOutfitFor("Nobody"); got != "default" {
		t.Errorf("Expected default key for unknown character, got %q", got)
	}
	if got := w.DefaultOutfitFor("Aria"); got != "default" {
		t.Errorf("Expected default key when unset, got %q", got)
	}
}

func TestValidate(t *testing.T) {
	w := testWorld()
	if err := w.Validate(); err != nil {
		t.Errorf("Expected valid world, got %v", err)
	}

	w.Meta.ID = ""
	if err := w.Validate(); err == nil {
		t.Error("Expected error for missing id")
	}

	w = testWorld()
	luna := w.Companions["Luna"]
	luna.DefaultOutfit = "missing"
	w.Companions["Luna"] = luna
	if err := w.Validate(); err == nil {
		t.Error("Expected error for dangling default outfit")
	}

	w = testWorld()
	w.Companions = nil
	if err := w.Validate(); err == nil {
		t.Error("Expected error for empty roster")
	}
}
