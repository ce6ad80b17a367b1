package agent

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/civitas-project/civitas/pkg/llm"
	"github.com/civitas-project/civitas/pkg/models"
)

// AuditRecord is the persisted transcript of one dispatch call.
type AuditRecord struct {
	Timestamp    time.Time                `json:"timestamp"`
	Ticket       TicketFacts              `json:"ticket"`
	Conversation []llm.Message            `json:"conversation"`
	Result       *models.DispatchDecision `json:"result"`
}

// AuditLogger writes dispatch transcripts to a directory: one timestamped
// file per call plus an overwritten latest.json. Strictly best-effort by
// contract: write failures are downgraded to warnings and never surface
// to the dispatch path, because the triage decision's correctness does
// not depend on audit durability.
type AuditLogger struct {
	dir string
	now func() time.Time
}

// NewAuditLogger creates a logger writing into dir. The directory is
// created lazily on first write.
func NewAuditLogger(dir string) *AuditLogger {
	return &AuditLogger{dir: dir, now: time.Now}
}

// Record implements Auditor.
func (l *AuditLogger) Record(facts TicketFacts, conversation []llm.Message, decision *models.DispatchDecision) {
	if err := l.write(facts, conversation, decision); err != nil {
		slog.Warn("Failed to write dispatch audit log", "dir", l.dir, "error", err)
	}
}

func (l *AuditLogger) write(facts TicketFacts, conversation []llm.Message, decision *models.DispatchDecision) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}

	now := l.now()
	record := AuditRecord{
		Timestamp:    now,
		Ticket:       facts,
		Conversation: conversation,
		Result:       decision,
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode audit record: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.json", now.Format("20060102_150405"), sanitizeSubject(facts.Subject))
	if err := os.WriteFile(filepath.Join(l.dir, filename), data, 0o644); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(l.dir, "latest.json"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write latest audit record: %w", err)
	}
	return nil
}

// sanitizeSubject turns a ticket subject into a safe filename fragment,
// truncated to 50 characters.
func sanitizeSubject(subject string) string {
	if len(subject) > 50 {
		subject = subject[:50]
	}
	var sb strings.Builder
	for _, r := range subject {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == ' ', r == '_', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "unknown"
	}
	return sb.String()
}
