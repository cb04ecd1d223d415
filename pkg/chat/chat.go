package chat

import "fmt"

const (
	// RoleUser marks a message written by the player.
	RoleUser = "user"
	// RoleModel marks a message written by the game master model.
	RoleModel = "model"
	// RoleSystem marks instruction messages that are never shown to the player.
	RoleSystem = "system"
)

// Message is a single entry in the conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TurnRequest is one player input submitted to the turn pipeline.
type TurnRequest struct {
	Slot    string `json:"slot,omitempty"`
	Message string `json:"message"`
	Intro   bool   `json:"intro,omitempty"`
}

func (tr *TurnRequest) Validate() error {
	if !tr.Intro && tr.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	return nil
}

// TurnResponse is what the turn pipeline hands back to the caller.
// Visual and Tags drive image generation; they are empty when the
// model reply carried no structured payload.
type TurnResponse struct {
	Narrative string   `json:"narrative"`
	Visual    string   `json:"visual_en,omitempty"`
	Tags      []string `json:"tags_en,omitempty"`
	Voided    bool     `json:"voided,omitempty"`
	Error     string   `json:"error,omitempty"`
}
