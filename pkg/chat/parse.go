package chat

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ParsedReply is the decomposed form of a raw game-master reply.
// RawUpdates is left undecoded so callers can bind it to their own
// update schema; it is nil when no payload was found.
type ParsedReply struct {
	Narrative  string
	Visual     string
	Tags       []string
	RawUpdates json.RawMessage
}

// replyPayload is the structured block the model embeds in its reply.
type replyPayload struct {
	VisualEN string          `json:"visual_en"`
	TagsEN   []string        `json:"tags_en"`
	Updates  json.RawMessage `json:"updates"`
}

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// ParseReply splits a raw model reply into narrative text and the
// structured payload. The payload may arrive as a fenced code block or a
// bare brace-delimited object anywhere in the text; whichever block is
// found is stripped from the narrative. A truncated payload gets one
// repair attempt (closing the object) before the reply falls back to
// narrative-only with empty structured fields.
func ParseReply(raw string) ParsedReply {
	result := ParsedReply{Narrative: strings.TrimSpace(raw)}

	jsonStr, full := extractPayload(raw)
	if jsonStr == "" {
		return result
	}

	var payload replyPayload
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		repaired := jsonStr + "}"
		if err := json.Unmarshal([]byte(repaired), &payload); err != nil {
			return result
		}
	}

	narrative := strings.Replace(raw, full, "", 1)
	narrative = strings.ReplaceAll(narrative, "```json", "")
	narrative = strings.ReplaceAll(narrative, "```", "")

	result.Narrative = strings.TrimSpace(narrative)
	result.Visual = payload.VisualEN
	result.Tags = payload.TagsEN
	result.RawUpdates = payload.Updates
	return result
}

// extractPayload returns the JSON object text and the full matched span
// (including any fence) so the span can be removed from the narrative.
func extractPayload(raw string) (jsonStr, full string) {
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		return m[1], m[0]
	}

	// Bare object: take the outermost brace span.
	start := strings.Index(raw, "{")
	if start < 0 {
		return "", ""
	}
	end := strings.LastIndex(raw, "}")
	if end < start {
		// Truncated object, no closing brace at all. Hand back what is
		// there; the caller's repair pass may still salvage it.
		return raw[start:], raw[start:]
	}
	return raw[start : end+1], raw[start : end+1]
}
