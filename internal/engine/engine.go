// Package engine runs the turn loop: it owns the only write path to a
// session and coordinates memory upkeep, the model call, state
// mutation, autosave and the out-of-band media work.
package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jwebster45206/companion-engine/internal/services"
	"github.com/jwebster45206/companion-engine/internal/storage"
	"github.com/jwebster45206/companion-engine/pkg/chat"
	"github.com/jwebster45206/companion-engine/pkg/composer"
	"github.com/jwebster45206/companion-engine/pkg/memory"
	"github.com/jwebster45206/companion-engine/pkg/session"
	"github.com/jwebster45206/companion-engine/pkg/world"
)

// VoidedTurnMessage is the in-fiction marker returned when the model
// call fails. The turn it replaces leaves no trace in state or history.
const VoidedTurnMessage = "The neural link flickers... (connection unstable)"

// Engine orchestrates turns. One Engine serves all save slots; writes
// to any single slot are serialized by a per-slot lock.
type Engine struct {
	storage    storage.Storage
	llm        services.LLMService
	memory     *memory.Manager
	dispatcher *composer.Dispatcher
	images     services.ImageService  // optional
	speech     services.SpeechService // optional
	logger     *slog.Logger

	// OnImage is invoked from a background goroutine when an image
	// finishes rendering. Optional.
	OnImage func(slot string, prompt composer.Prompt, png []byte)

	// OnAudio is invoked from a background goroutine when narration
	// audio is ready. Optional.
	OnAudio func(slot string, audio []byte)

	mu    sync.Mutex
	slots map[string]*sync.Mutex
	wg    sync.WaitGroup
}

// New creates an engine. images and speech may be nil to disable those
// side channels. A nil mem or dispatcher gets a default wired from llm.
func New(store storage.Storage, llm services.LLMService, mem *memory.Manager, dispatcher *composer.Dispatcher, images services.ImageService, speech services.SpeechService, logger *slog.Logger) *Engine {
	if mem == nil {
		mem = memory.NewManager(memory.DefaultHistoryLimit, memory.DefaultPruneCount, llm, logger)
	}
	if dispatcher == nil {
		dispatcher = composer.NewDispatcher(nil, composer.NewMulti(), composer.NewNPC(), logger)
	}
	return &Engine{
		storage:    store,
		llm:        llm,
		memory:     mem,
		dispatcher: dispatcher,
		images:     images,
		speech:     speech,
		logger:     logger,
		slots:      make(map[string]*sync.Mutex),
	}
}

// slotLock returns the mutex serializing writes to one save slot.
func (e *Engine) slotLock(slot string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.slots[slot]
	if !ok {
		l = &sync.Mutex{}
		e.slots[slot] = l
	}
	return l
}

// Wait blocks until background image and speech work has drained.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// NewGame creates a fresh session in the slot and runs the intro turn.
func (e *Engine) NewGame(ctx context.Context, slot string, worldID string, companionName string) (*session.Session, *chat.TurnResponse, error) {
	w, err := e.storage.GetWorld(ctx, worldID)
	if err != nil {
		return nil, nil, err
	}

	s := session.New(w, companionName)
	if err := e.storage.SaveSession(ctx, slot, s); err != nil {
		return nil, nil, err
	}

	resp, err := e.ProcessTurn(ctx, chat.TurnRequest{Slot: slot, Message: introUserMessage, Intro: true})
	if err != nil {
		return nil, nil, err
	}

	// Reload so the caller sees the post-intro state.
	s, err = e.storage.LoadSession(ctx, slot)
	if err != nil {
		return nil, nil, err
	}
	return s, resp, nil
}

// ProcessTurn runs one full turn against the session in req.Slot. A
// model failure voids the turn: the caller gets the marker response and
// the session is untouched. All other collaborator failures degrade and
// the turn still lands.
func (e *Engine) ProcessTurn(ctx context.Context, req chat.TurnRequest) (*chat.TurnResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lock := e.slotLock(req.Slot)
	lock.Lock()
	defer lock.Unlock()

	s, err := e.storage.LoadSession(ctx, req.Slot)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNoSession
	}

	w, err := e.storage.GetWorld(ctx, s.Meta.WorldID)
	if err != nil {
		return nil, err
	}

	if !req.Intro {
		e.memory.Upkeep(ctx, s)
	}

	instruction := buildSystemInstruction(s, w, e.memory.ContextBlock(s), req.Intro)
	messages := append(append([]chat.Message{}, s.History...), chat.Message{
		Role:    chat.RoleUser,
		Content: req.Message,
	})

	raw, err := e.llm.Chat(ctx, instruction, messages)
	if err != nil {
		e.logger.Error("Model call failed, voiding turn", "error", err, "slot", req.Slot)
		return &chat.TurnResponse{Narrative: VoidedTurnMessage, Voided: true}, nil
	}

	parsed := chat.ParseReply(raw)

	u := session.ParseUpdate(parsed.RawUpdates)
	s.Apply(u, w)
	if u != nil && u.NewFact != "" {
		e.memory.AddFact(s, u.NewFact)
	}

	if !req.Intro {
		s.History = append(s.History, chat.Message{Role: chat.RoleUser, Content: req.Message})
	}
	s.History = append(s.History, chat.Message{Role: chat.RoleModel, Content: parsed.Narrative})

	if err := e.storage.SaveSession(ctx, req.Slot, s); err != nil {
		e.logger.Error("Autosave failed, play continues in memory", "error", err, "slot", req.Slot)
	}

	e.dispatchMedia(req.Slot, parsed, s, w)

	return &chat.TurnResponse{
		Narrative: parsed.Narrative,
		Visual:    parsed.Visual,
		Tags:      parsed.Tags,
	}, nil
}

// dispatchMedia composes the image prompt on the turn path (cheap and
// pure) and pushes the slow backend calls to background goroutines.
func (e *Engine) dispatchMedia(slot string, parsed chat.ParsedReply, s *session.Session, w *world.World) {
	if e.images != nil && (parsed.Visual != "" || len(parsed.Tags) > 0) {
		prompt := e.dispatcher.Dispatch(parsed.Visual, parsed.Tags, s, w)
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			png, err := e.images.Generate(context.Background(), prompt)
			if err != nil {
				e.logger.Warn("Image generation failed", "error", err, "slot", slot)
				return
			}
			if e.OnImage != nil {
				e.OnImage(slot, prompt, png)
			}
		}()
	}

	if e.speech != nil && parsed.Narrative != "" {
		voiceID := ""
		if c, ok := w.Companions[s.Game.CompanionName]; ok {
			voiceID = c.VoiceID
		}
		narrative := parsed.Narrative
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			audio, err := e.speech.Synthesize(context.Background(), narrative, voiceID)
			if err != nil {
				e.logger.Warn("Speech synthesis failed", "error", err, "slot", slot)
				return
			}
			if e.OnAudio != nil {
				e.OnAudio(slot, audio)
			}
		}()
	}
}
