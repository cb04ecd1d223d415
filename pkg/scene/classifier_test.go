package scene

import (
	"testing"

	"github.com/jwebster45206/companion-engine/pkg/session"
	"github.com/jwebster45206/companion-engine/pkg/world"
)

func testWorld() *world.World {
	return &world.World{
		Meta: world.Meta{ID: "test_world"},
		Companions: map[string]world.Companion{
			"Luna": {Wardrobe: map[string]string{"default": "white dress"}},
			"Aria": {Wardrobe: map[string]string{"default": "leather gear"}},
		},
		NPCLogic: world.NPCLogic{
			MaleHints:   []string{"guard", "merchant", "orc"},
			FemaleHints: []string{"waitress"},
		},
	}
}

func testSession(w *world.World) *session.Session {
	return session.New(w, "Luna")
}

func TestClassify(t *testing.T) {
	w := testWorld()
	s := testSession(w)

	tests := []struct {
		name     string
		visual   string
		tags     []string
		wantKind Kind
		subjects []string
		npcType  string
	}{
		{
			name:     "single roster name",
			visual:   "Luna leans against the bar",
			wantKind: KindSingle,
			subjects: []string{"Luna"},
		},
		{
			name:     "two names ordered by appearance",
			visual:   "Aria laughs while Luna rolls her eyes",
			wantKind: KindMulti,
			subjects: []string{"Aria", "Luna"},
		},
		{
			name:     "name in tags counts",
			visual:   "a quiet moment",
			tags:     []string{"luna", "close-up"},
			wantKind: KindSingle,
			subjects: []string{"Luna"},
		},
		{
			name:     "npc hint match",
			visual:   "a burly guard blocks the gate",
			wantKind: KindNPC,
			npcType:  "guard",
		},
		{
			name:     "names beat hints",
			visual:   "the guard salutes as Luna passes",
			wantKind: KindSingle,
			subjects: []string{"Luna"},
		},
		{
			name:     "whole word hint only",
			visual:   "the organ music swells in the chapel",
			wantKind: KindSingle,
			subjects: []string{"Luna"},
		},
		{
			name:     "no match falls back to companion",
			visual:   "rain streaks down the window",
			wantKind: KindSingle,
			subjects: []string{"Luna"},
		},
		{
			name:     "hint at start of text",
			visual:   "merchant counting coins at his stall",
			wantKind: KindNPC,
			npcType:  "merchant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := Classify(tt.visual, tt.tags, s, w)
			if sc.Kind != tt.wantKind {
				t.Fatalf("Kind = %v, want %v", sc.Kind, tt.wantKind)
			}
			if tt.wantKind == KindNPC {
				if sc.NPCType != tt.npcType {
					t.Errorf("NPCType = %q, want %q", sc.NPCType, tt.npcType)
				}
				return
			}
			if len(sc.Subjects) != len(tt.subjects) {
				t.Fatalf("Subjects = %v, want %v", sc.Subjects, tt.subjects)
			}
			for i := range tt.subjects {
				if sc.Subjects[i] != tt.subjects[i] {
					t.Errorf("Subjects = %v, want %v", sc.Subjects, tt.subjects)
					break
				}
			}
		})
	}
}

func TestClassify_DuplicateMentionsDeduped(t *testing.T) {
	w := testWorld()
	s := testSession(w)

	sc := Classify("Luna smiles. Luna waves.", nil, s, w)
	if sc.Kind != KindSingle || len(sc.Subjects) != 1 {
		t.Errorf("Expected one deduped subject, got kind=%v subjects=%v", sc.Kind, sc.Subjects)
	}
}

func TestCameraText(t *testing.T) {
	got := CameraText("Luna Smiles", []string{"Tavern", "NIGHT"})
	want := "luna smiles tavern night"
	if got != want {
		t.Errorf("CameraText = %q, want %q", got, want)
	}
}
