package chat

import (
	"strings"
	"testing"
)

func TestParseReply_FencedPayload(t *testing.T) {
	raw := "She smiles at you.\n\n```json\n{\"visual_en\": \"smiling girl in a tavern\", \"tags_en\": [\"smile\", \"tavern\"], \"updates\": {\"gold\": 5}}\n```"

	parsed := ParseReply(raw)

	if parsed.Narrative != "She smiles at you." {
		t.Errorf("Expected clean narrative, got %q", parsed.Narrative)
	}
	if parsed.Visual != "smiling girl in a tavern" {
		t.Errorf("Expected visual to be extracted, got %q", parsed.Visual)
	}
	if len(parsed.Tags) != 2 || parsed.Tags[0] != "smile" {
		t.Errorf("Expected tags [smile tavern], got %v", parsed.Tags)
	}
	if parsed.RawUpdates == nil {
		t.Error("Expected raw updates to be present")
	}
}

func TestParseReply_BarePayload(t *testing.T) {
	raw := `The market is busy today. {"visual_en": "crowded market", "tags_en": ["crowd"], "updates": {"location": "Market"}}`

	parsed := ParseReply(raw)

	if parsed.Narrative != "The market is busy today." {
		t.Errorf("Expected payload stripped from narrative, got %q", parsed.Narrative)
	}
	if parsed.Visual != "crowded market" {
		t.Errorf("Expected visual from bare payload, got %q", parsed.Visual)
	}
	if parsed.RawUpdates == nil {
		t.Error("Expected raw updates from bare payload")
	}
}

func TestParseReply_NoPayload(t *testing.T) {
	raw := "Just prose, nothing structured here."

	parsed := ParseReply(raw)

	if parsed.Narrative != raw {
		t.Errorf("Expected narrative unchanged, got %q", parsed.Narrative)
	}
	if parsed.Visual != "" || len(parsed.Tags) != 0 || parsed.RawUpdates != nil {
		t.Error("Expected empty structured fields for prose-only reply")
	}
}

func TestParseReply_TruncatedPayloadRepaired(t *testing.T) {
	// Missing the final closing brace: one repair attempt should save it.
	raw := `She nods. {"visual_en": "nodding girl", "tags_en": ["nod"], "updates": {"gold": 3}`

	parsed := ParseReply(raw)

	if parsed.Visual != "nodding girl" {
		t.Errorf("Expected repaired payload to parse, got visual %q", parsed.Visual)
	}
}

func TestParseReply_UnrepairablePayload(t *testing.T) {
	raw := `Something happened. {"visual_en": "broken json, "tags_en": [`

	parsed := ParseReply(raw)

	// Falls back to narrative-only; the broken payload stays in the text
	// rather than being silently eaten.
	if parsed.Visual != "" || parsed.RawUpdates != nil {
		t.Error("Expected structured fields to stay empty on unrepairable payload")
	}
	if !strings.Contains(parsed.Narrative, "Something happened.") {
		t.Errorf("Expected narrative retained, got %q", parsed.Narrative)
	}
}

func TestParseReply_StrayFenceMarkersStripped(t *testing.T) {
	raw := "Here you go.\n```json\n{\"visual_en\": \"scene\", \"tags_en\": [], \"updates\": {}}\n```\nMore prose."

	parsed := ParseReply(raw)

	if strings.Contains(parsed.Narrative, "```") {
		t.Errorf("Expected fence markers stripped, got %q", parsed.Narrative)
	}
	if !strings.Contains(parsed.Narrative, "More prose.") {
		t.Errorf("Expected trailing prose kept, got %q", parsed.Narrative)
	}
}

func TestTurnRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     TurnRequest
		wantErr bool
	}{
		{"normal message", TurnRequest{Slot: "a", Message: "hello"}, false},
		{"empty message", TurnRequest{Slot: "a"}, true},
		{"intro without message", TurnRequest{Slot: "a", Intro: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
