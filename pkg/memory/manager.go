// Package memory keeps the game-master's working context bounded.
// Old conversation turns are periodically compressed into episodic
// summaries, and permanent facts are retained in a knowledge base.
package memory

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jwebster45206/companion-engine/pkg/chat"
	"github.com/jwebster45206/companion-engine/pkg/session"
)

// Default window bounds. Both are tunables; see config.
const (
	DefaultHistoryLimit = 12
	DefaultPruneCount   = 4
)

// Summarizer compresses a span of conversation turns into a short
// summary. It may return an empty string to signal "nothing worth
// keeping", which skips the prune cycle.
type Summarizer interface {
	Summarize(ctx context.Context, messages []chat.Message) (string, error)
}

// Manager enforces the bounded conversation window on a session. It is
// the only component besides the engine with write access to history,
// summary_log and knowledge_base.
type Manager struct {
	historyLimit int
	pruneCount   int
	summarizer   Summarizer
	logger       *slog.Logger
}

func NewManager(historyLimit, pruneCount int, summarizer Summarizer, logger *slog.Logger) *Manager {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if pruneCount <= 0 || pruneCount >= historyLimit {
		pruneCount = DefaultPruneCount
	}
	return &Manager{
		historyLimit: historyLimit,
		pruneCount:   pruneCount,
		summarizer:   summarizer,
		logger:       logger,
	}
}

// Upkeep compresses the oldest turns when history exceeds the limit.
// The pruned turns are only dropped after a successful, non-empty
// summary; on summarizer failure or empty output the history is left
// over-limit and retried next turn. Call once per turn, before context
// assembly, and never on the intro turn.
func (m *Manager) Upkeep(ctx context.Context, s *session.Session) {
	if len(s.History) <= m.historyLimit {
		return
	}

	toPrune := s.History[:m.pruneCount]
	summary, err := m.summarizer.Summarize(ctx, toPrune)
	if err != nil {
		if m.logger != nil {
			m.logger.Error("History summarization failed, keeping full history", "error", err, "history_len", len(s.History))
		}
		return
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		if m.logger != nil {
			m.logger.Debug("Summarizer returned nothing, skipping prune cycle", "history_len", len(s.History))
		}
		return
	}

	s.SummaryLog = append(s.SummaryLog, summary)
	s.History = s.History[m.pruneCount:]

	if m.logger != nil {
		m.logger.Info("Compressed old turns into summary",
			"pruned", m.pruneCount,
			"history_len", len(s.History),
			"summaries", len(s.SummaryLog))
	}
}

// AddFact appends a permanent fact to the knowledge base. Empty facts
// and exact duplicates are ignored.
func (m *Manager) AddFact(s *session.Session, fact string) {
	if fact == "" {
		return
	}
	for _, existing := range s.KnowledgeBase {
		if existing == fact {
			return
		}
	}
	s.KnowledgeBase = append(s.KnowledgeBase, fact)
	if m.logger != nil {
		m.logger.Info("New fact learned", "fact", fact)
	}
}

// ContextBlock renders the memory sections for injection into the model
// call: permanent facts first, then episodic summaries. Empty sections
// are omitted entirely rather than emitted as bare headers.
func (m *Manager) ContextBlock(s *session.Session) string {
	var sb strings.Builder

	if len(s.KnowledgeBase) > 0 {
		sb.WriteString("KNOWLEDGE BASE (IMPORTANT FACTS):\n")
		for _, fact := range s.KnowledgeBase {
			sb.WriteString("- " + fact + "\n")
		}
		sb.WriteString("\n")
	}

	if len(s.SummaryLog) > 0 {
		sb.WriteString("PREVIOUS STORY SUMMARY:\n")
		for _, summary := range s.SummaryLog {
			sb.WriteString("- " + summary + "\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
