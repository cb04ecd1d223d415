// Package composer turns a classified scene plus game state into a
// generation-ready image prompt pair. Each scene kind has its own
// composer; the Dispatcher picks one. Composers read state and never
// write it, so image work can run off the turn path.
package composer

import (
	"github.com/jwebster45206/companion-engine/pkg/scene"
	"github.com/jwebster45206/companion-engine/pkg/session"
	"github.com/jwebster45206/companion-engine/pkg/world"
)

// Prompt is a positive/negative prompt pair ready for the image backend.
type Prompt struct {
	Positive string `json:"positive"`
	Negative string `json:"negative"`
}

// Composer builds the prompt pair for one scene framing.
type Composer interface {
	Compose(sc scene.Context, s *session.Session, w *world.World) Prompt
}

// qualityPrefix leads every positive prompt.
const qualityPrefix = "masterpiece, best quality, highly detailed"

// baseNegative is the shared negative prompt.
const baseNegative = "lowres, bad anatomy, bad hands, missing fingers, extra digits, fewer digits, cropped, worst quality, low quality, jpeg artifacts, signature, watermark, username, blurry, text"

// multiNegative extends the base with anti-clone terms; without them
// multi-subject renders collapse into copies of one face.
const multiNegative = baseNegative + ", clones, identical twins, same face, copy paste, duplicated person, mirrored"

// interactionBoost keeps multi-subject renders showing the characters
// engaging with each other instead of posing side by side.
const interactionBoost = "(looking at each other:1.2), interaction, dynamic poses"

// Fallback base descriptors for generic NPC renders when the world
// cartridge does not configure its own.
const (
	defaultNPCMaleBase   = "1boy, solo, mature male, detailed face, detailed eyes"
	defaultNPCFemaleBase = "1girl, solo, detailed face, detailed eyes"
)

// bannedSoloTags never survive into a single-subject prompt: the base
// descriptor already fixes the count and quality.
var bannedSoloTags = []string{"1girl", "2girls", "3girls", "1boy", "2boys", "solo", "masterpiece", "best quality"}

// bannedMultiTags additionally drop solo markers that contradict the
// group count tag.
var bannedMultiTags = []string{"1girl", "2girls", "3girls", "4girls", "1boy", "solo", "masterpiece", "best quality"}
