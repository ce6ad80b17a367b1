package agent

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitas-project/civitas/pkg/llm"
	"github.com/civitas-project/civitas/pkg/models"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
}

func TestAuditLogger_WritesTimestampedAndLatest(t *testing.T) {
	dir := t.TempDir()
	logger := NewAuditLogger(dir)
	logger.now = fixedClock

	facts := validFacts()
	conversation := []llm.Message{llm.TextMessage(llm.RoleUser, "hello")}
	decision := &models.DispatchDecision{Status: "awaiting response", Priority: "low"}

	logger.Record(facts, conversation, decision)

	data, err := os.ReadFile(filepath.Join(dir, "20260314_092653_Pothole on Main St.json"))
	require.NoError(t, err)

	var record AuditRecord
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal(t, facts.Subject, record.Ticket.Subject)
	assert.Len(t, record.Conversation, 1)
	assert.Equal(t, "low", record.Result.Priority)

	latest, err := os.ReadFile(filepath.Join(dir, "latest.json"))
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(latest))
}

func TestAuditLogger_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "audit")
	logger := NewAuditLogger(dir)
	logger.now = fixedClock

	logger.Record(validFacts(), nil, nil)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAuditLogger_FailureDoesNotPanic(t *testing.T) {
	// Point the audit directory at an existing file so MkdirAll fails.
	base := t.TempDir()
	blocker := filepath.Join(base, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	logger := NewAuditLogger(blocker)
	assert.NotPanics(t, func() {
		logger.Record(validFacts(), nil, nil)
	})
}

func TestSanitizeSubject(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		want    string
	}{
		{"plain", "Pothole on Main St", "Pothole on Main St"},
		{"special characters", "Water main: 5th/Broadway!", "Water main_ 5th_Broadway_"},
		{"empty", "", "unknown"},
		{"only specials", "!!!", "___"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeSubject(tt.subject))
		})
	}
}

func TestSanitizeSubject_TruncatesLongSubjects(t *testing.T) {
	long := strings.Repeat("a", 80)
	got := sanitizeSubject(long)
	assert.Len(t, got, 50)
}
