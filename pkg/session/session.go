package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/companion-engine/pkg/chat"
	"github.com/jwebster45206/companion-engine/pkg/world"
)

// Time-of-day positions in the narrative cycle.
const (
	TimeMorning   = "Morning"
	TimeAfternoon = "Afternoon"
	TimeEvening   = "Evening"
	TimeNight     = "Night"
)

// Meta carries session bookkeeping. TurnCount advances once per
// completed turn, including the intro turn.
type Meta struct {
	WorldID   string    `json:"world_id"`
	CreatedAt time.Time `json:"created_at"`
	TurnCount int       `json:"turn_count"`
}

// NPCState is the tracked state of a named non-active character.
type NPCState struct {
	CurrentOutfit string `json:"current_outfit,omitempty"`
	Location      string `json:"location,omitempty"`
}

// Game is the mutable play state inside a session.
type Game struct {
	Location      string              `json:"location"`
	CompanionName string              `json:"companion_name"`
	CurrentOutfit string              `json:"current_outfit"`
	Inventory     []string            `json:"inventory"`
	Gold          int                 `json:"gold"`
	HP            int                 `json:"hp"`
	Stats         map[string]int      `json:"stats"`
	Affinity      map[string]int      `json:"affinity"`
	NPCStates     map[string]NPCState `json:"npc_states"`
	Flags         map[string]any      `json:"flags"`
	TimeOfDay     string              `json:"time_of_day"`
}

// Session is the root aggregate for one active game. It is the only
// mutable shared state in the engine and has a single writer per game.
type Session struct {
	ID            uuid.UUID      `json:"id"`
	Meta          Meta           `json:"meta"`
	Game          Game           `json:"game"`
	History       []chat.Message `json:"history"`
	SummaryLog    []string       `json:"summary_log"`
	KnowledgeBase []string       `json:"knowledge_base"`
	UpdatedAt     time.Time      `json:"updated_at,omitempty"`
}

// New creates a fresh session for the given world. An unknown companion
// name falls back to the first roster character rather than failing;
// the permissive default keeps a mistyped name from blocking a new game.
func New(w *world.World, companionName string) *Session {
	companionName = world.NormalizeName(companionName)
	if !w.HasCompanion(companionName) {
		if roster := w.Roster(); len(roster) > 0 {
			companionName = roster[0]
		}
	}

	affinity := make(map[string]int, len(w.Companions))
	npcStates := make(map[string]NPCState, len(w.Companions))
	for _, name := range w.Roster() {
		affinity[name] = 0
		npcStates[name] = NPCState{CurrentOutfit: w.DefaultOutfitFor(name)}
	}

	return &Session{
		ID: uuid.New(),
		Meta: Meta{
			WorldID:   w.Meta.ID,
			CreatedAt: time.Now().UTC(),
			TurnCount: 1,
		},
		Game: Game{
			Location:      "Start",
			CompanionName: companionName,
			CurrentOutfit: w.DefaultOutfitFor(companionName),
			Inventory:     make([]string, 0),
			Stats:         make(map[string]int),
			Affinity:      affinity,
			NPCStates:     npcStates,
			Flags:         make(map[string]any),
			TimeOfDay:     TimeMorning,
		},
		History:       make([]chat.Message, 0),
		SummaryLog:    make([]string, 0),
		KnowledgeBase: make([]string, 0),
	}
}

// Normalize fills fields that older save documents may lack, so loads
// never fail on schema growth.
func (s *Session) Normalize() {
	if s.Game.Inventory == nil {
		s.Game.Inventory = make([]string, 0)
	}
	if s.Game.Stats == nil {
		s.Game.Stats = make(map[string]int)
	}
	if s.Game.Affinity == nil {
		s.Game.Affinity = make(map[string]int)
	}
	if s.Game.NPCStates == nil {
		s.Game.NPCStates = make(map[string]NPCState)
	}
	if s.Game.Flags == nil {
		s.Game.Flags = make(map[string]any)
	}
	if s.Game.TimeOfDay == "" {
		s.Game.TimeOfDay = TimeMorning
	}
	if s.History == nil {
		s.History = make([]chat.Message, 0)
	}
	if s.SummaryLog == nil {
		s.SummaryLog = make([]string, 0)
	}
	if s.KnowledgeBase == nil {
		s.KnowledgeBase = make([]string, 0)
	}
}

// HasItem reports whether the inventory contains the item.
func (s *Session) HasItem(item string) bool {
	for _, it := range s.Game.Inventory {
		if it == item {
			return true
		}
	}
	return false
}

// LastModelMessage returns the most recent model narration, or "".
func (s *Session) LastModelMessage() string {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == chat.RoleModel {
			return s.History[i].Content
		}
	}
	return ""
}
