package world

import (
	"fmt"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Meta describes a world cartridge.
type Meta struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	Genre     string   `yaml:"genre" json:"genre"`
	Lore      string   `yaml:"world_lore" json:"world_lore"`
	KeyEvents []string `yaml:"key_events" json:"key_events,omitempty"`
}

// Tier is one affinity threshold with its personality description.
type Tier struct {
	Threshold   int    `yaml:"threshold" json:"threshold"`
	Description string `yaml:"description" json:"description"`
}

// Companion is a main character definition: the image style descriptor,
// the wardrobe table, and the affinity-driven personality tiers.
type Companion struct {
	BasePrompt    string            `yaml:"base_prompt" json:"base_prompt"`
	Wardrobe      map[string]string `yaml:"wardrobe" json:"wardrobe"`
	DefaultOutfit string            `yaml:"default_outfit" json:"default_outfit"`
	Tiers         []Tier            `yaml:"personality_tiers" json:"personality_tiers,omitempty"`
	VoiceID       string            `yaml:"voice_id" json:"voice_id,omitempty"`
}

// NPCLogic configures generic NPC detection and rendering.
type NPCLogic struct {
	MaleHints   []string `yaml:"male_hints" json:"male_hints"`
	FemaleHints []string `yaml:"female_hints" json:"female_hints"`
	MaleBase    string   `yaml:"male_base" json:"male_base,omitempty"`
	FemaleBase  string   `yaml:"female_base" json:"female_base,omitempty"`
}

// World is a loaded cartridge: metadata, the companion roster, and
// generic NPC logic.
type World struct {
	Meta       Meta                 `yaml:"meta" json:"meta"`
	Companions map[string]Companion `yaml:"companions" json:"companions"`
	NPCLogic   NPCLogic             `yaml:"npc_logic" json:"npc_logic"`
}

// Roster returns companion names in deterministic (sorted) order.
func (w *World) Roster() []string {
	names := make([]string, 0, len(w.Companions))
	for name := range w.Companions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasCompanion reports whether name is a roster character.
func (w *World) HasCompanion(name string) bool {
	_, ok := w.Companions[name]
	return ok
}

// DefaultOutfitFor returns the configured default outfit key for a
// character, or "default" for unknown characters.
func (w *World) DefaultOutfitFor(name string) string {
	c, ok := w.Companions[name]
	if !ok || c.DefaultOutfit == "" {
		return "default"
	}
	return c.DefaultOutfit
}

// PersonalityAt selects the personality description for the given
// affinity score: among tiers with threshold <= points, the one with the
// highest threshold wins. No qualifying tier yields the standard text.
func (c Companion) PersonalityAt(points int) string {
	selected := "Standard personality."
	best := -1
	for _, tier := range c.Tiers {
		if points >= tier.Threshold && tier.Threshold > best {
			best = tier.Threshold
			selected = tier.Description
		}
	}
	return selected
}

// IsFemaleHint reports whether the keyword is in the female hint list.
func (nl NPCLogic) IsFemaleHint(keyword string) bool {
	title := NormalizeName(keyword)
	for _, h := range nl.FemaleHints {
		if NormalizeName(h) == title {
			return true
		}
	}
	return false
}

var nameCaser = cases.Title(language.English)

// NormalizeName canonicalizes a character name to title case so that
// player input like "luna" matches the roster key "Luna".
func NormalizeName(name string) string {
	return nameCaser.String(name)
}

// Validate checks that a cartridge is playable.
func (w *World) Validate() error {
	if w.Meta.ID == "" {
		return fmt.Errorf("world is missing meta.id")
	}
	if len(w.Companions) == 0 {
		return fmt.Errorf("world %q has no companions", w.Meta.ID)
	}
	for name, c := range w.Companions {
		if len(c.Wardrobe) == 0 {
			return fmt.Errorf("companion %q has an empty wardrobe", name)
		}
		if c.DefaultOutfit != "" {
			if _, ok := c.Wardrobe[c.DefaultOutfit]; !ok {
				return fmt.Errorf("companion %q default outfit %q is not in the wardrobe", name, c.DefaultOutfit)
			}
		}
	}
	return nil
}
