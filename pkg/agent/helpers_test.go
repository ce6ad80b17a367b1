package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/civitas-project/civitas/pkg/llm"
	"github.com/civitas-project/civitas/pkg/models"
)

// validDecisionJSON is a complete decision payload used across tests.
const validDecisionJSON = `{
	"status": "awaiting response",
	"priority": "high",
	"user_assignees": ["8a4f43a1-5c1d-4a52-9e3a-1f2d3c4b5a69"],
	"crew_assignees": ["1b2c3d4e-5f60-4172-8394-a5b6c7d8e9f0"],
	"labels": ["9c8b7a6d-5e4f-4301-b2a1-c0d9e8f7a6b5"],
	"comment": {"comment_body": "Thanks for the report, a crew is on the way."},
	"justification": "Open water main is a safety hazard."
}`

// mockLLMClient replays scripted turns in order and captures every
// request it receives.
type mockLLMClient struct {
	turns     []*llm.ModelTurn
	err       error
	callCount int
	requests  []*llm.Request
}

func (m *mockLLMClient) CreateTurn(_ context.Context, req *llm.Request) (*llm.ModelTurn, error) {
	m.callCount++
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if m.callCount > len(m.turns) {
		return nil, fmt.Errorf("mock exhausted after %d turns", len(m.turns))
	}
	return m.turns[m.callCount-1], nil
}

func finalTurn(text string) *llm.ModelTurn {
	return &llm.ModelTurn{
		StopReason: llm.StopEndTurn,
		Content:    []llm.ContentBlock{{Type: llm.BlockText, Text: text}},
	}
}

func toolTurn(blocks ...llm.ContentBlock) *llm.ModelTurn {
	return &llm.ModelTurn{StopReason: llm.StopToolUse, Content: blocks}
}

func toolUseBlock(id, name string, input map[string]any) llm.ContentBlock {
	raw, _ := json.Marshal(input)
	return llm.ContentBlock{Type: llm.BlockToolUse, ID: id, Name: name, Input: raw}
}

// mockToolExecutor returns canned results by tool name and records every
// call it sees.
type mockToolExecutor struct {
	results map[string]ToolResult
	calls   []ToolCall
}

func (m *mockToolExecutor) Execute(_ context.Context, call ToolCall) ToolResult {
	m.calls = append(m.calls, call)
	result, ok := m.results[call.Name]
	if !ok {
		return ToolResult{CallID: call.ID, Content: `{"error": "no canned result"}`, IsError: true}
	}
	result.CallID = call.ID
	return result
}

// mockAuditor captures the most recent Record call.
type mockAuditor struct {
	recorded     bool
	facts        TicketFacts
	conversation []llm.Message
	decision     *models.DispatchDecision
}

func (m *mockAuditor) Record(facts TicketFacts, conversation []llm.Message, decision *models.DispatchDecision) {
	m.recorded = true
	m.facts = facts
	m.conversation = conversation
	m.decision = decision
}

func validFacts() TicketFacts {
	return TicketFacts{
		Subject:  "Pothole on Main St",
		Body:     "Large pothole near the intersection with 5th Ave.",
		Origin:   models.OriginWebForm,
		Location: &models.Location{Lat: 40.7128, Lng: -74.0060},
	}
}
