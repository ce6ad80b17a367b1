package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitas-project/civitas/pkg/llm"
	"github.com/civitas-project/civitas/pkg/models"
)

func TestDispatch_ImmediateFinalAnswer(t *testing.T) {
	client := &mockLLMClient{turns: []*llm.ModelTurn{finalTurn(validDecisionJSON)}}
	executor := &mockToolExecutor{}
	audit := &mockAuditor{}
	d := NewDispatcher(client, executor, audit, 20)

	decision, err := d.Dispatch(context.Background(), validFacts())
	require.NoError(t, err)
	require.NotNil(t, decision)
	assert.Equal(t, "awaiting response", decision.Status)
	assert.Equal(t, "high", decision.Priority)
	assert.Equal(t, 1, client.callCount)
	assert.Empty(t, executor.calls)

	// The audit transcript includes the final assistant turn.
	require.True(t, audit.recorded)
	require.Len(t, audit.conversation, 2)
	assert.Equal(t, llm.RoleUser, audit.conversation[0].Role)
	assert.Equal(t, llm.RoleAssistant, audit.conversation[1].Role)
	assert.Equal(t, decision, audit.decision)
}

func TestDispatch_ToolCallThenFinalAnswer(t *testing.T) {
	client := &mockLLMClient{turns: []*llm.ModelTurn{
		toolTurn(toolUseBlock("call-1", ToolGetLabels, map[string]any{"search": "pothole"})),
		finalTurn(validDecisionJSON),
	}}
	executor := &mockToolExecutor{results: map[string]ToolResult{
		ToolGetLabels: {Content: `[{"label_name": "Pothole"}]`},
	}}
	d := NewDispatcher(client, executor, nil, 20)

	decision, err := d.Dispatch(context.Background(), validFacts())
	require.NoError(t, err)
	require.NotNil(t, decision)
	assert.Equal(t, 2, client.callCount)

	// The tool ran exactly once with the decoded arguments.
	require.Len(t, executor.calls, 1)
	assert.Equal(t, ToolGetLabels, executor.calls[0].Name)
	assert.Equal(t, "pothole", executor.calls[0].Input["search"])

	// The second model call sees the assistant tool_use turn and the
	// correlated tool_result before anything else happens.
	second := client.requests[1]
	require.Len(t, second.Messages, 3)
	assert.Equal(t, llm.RoleAssistant, second.Messages[1].Role)
	require.Len(t, second.Messages[2].Content, 1)
	result := second.Messages[2].Content[0]
	assert.Equal(t, llm.BlockToolResult, result.Type)
	assert.Equal(t, "call-1", result.ToolUseID)
	assert.Equal(t, `[{"label_name": "Pothole"}]`, result.Content)
	assert.False(t, result.IsError)
}

func TestDispatch_MultipleToolCallsInOneTurn(t *testing.T) {
	client := &mockLLMClient{turns: []*llm.ModelTurn{
		toolTurn(
			toolUseBlock("call-1", ToolGetLabels, map[string]any{"search": "tree"}),
			toolUseBlock("call-2", ToolGetNearestCrews, map[string]any{
				"lat": 40.7, "lng": -74.0, "crew_type": "tree crew",
			}),
		),
		finalTurn(validDecisionJSON),
	}}
	executor := &mockToolExecutor{results: map[string]ToolResult{
		ToolGetLabels:       {Content: `[]`},
		ToolGetNearestCrews: {Content: `[{"team_name": "Tree Crew North"}]`},
	}}
	d := NewDispatcher(client, executor, nil, 20)

	_, err := d.Dispatch(context.Background(), validFacts())
	require.NoError(t, err)
	require.Len(t, executor.calls, 2)

	// Both results land in one user message, in call order.
	results := client.requests[1].Messages[2].Content
	require.Len(t, results, 2)
	assert.Equal(t, "call-1", results[0].ToolUseID)
	assert.Equal(t, "call-2", results[1].ToolUseID)
}

func TestDispatch_ToolErrorKeepsConversationAlive(t *testing.T) {
	client := &mockLLMClient{turns: []*llm.ModelTurn{
		toolTurn(toolUseBlock("call-1", "does_not_exist", nil)),
		finalTurn(validDecisionJSON),
	}}
	executor := NewDirectoryToolExecutor(nil)
	d := NewDispatcher(client, executor, nil, 20)

	decision, err := d.Dispatch(context.Background(), validFacts())
	require.NoError(t, err)
	require.NotNil(t, decision)

	result := client.requests[1].Messages[2].Content[0]
	assert.True(t, result.IsError)
	assert.JSONEq(t, `{"error": "Unknown tool: does_not_exist"}`, result.Content)
}

func TestDispatch_IterationBudgetExhausted(t *testing.T) {
	turns := make([]*llm.ModelTurn, 20)
	for i := range turns {
		turns[i] = toolTurn(toolUseBlock("call-x", ToolGetLabels, map[string]any{"search": "x"}))
	}
	client := &mockLLMClient{turns: turns}
	executor := &mockToolExecutor{results: map[string]ToolResult{ToolGetLabels: {Content: `[]`}}}
	d := NewDispatcher(client, executor, nil, 20)

	decision, err := d.Dispatch(context.Background(), validFacts())
	require.Error(t, err)
	assert.Nil(t, decision)
	assert.ErrorIs(t, err, ErrIterationBudget)
	assert.Equal(t, 20, client.callCount)
}

func TestDispatch_UnexpectedStopReason(t *testing.T) {
	client := &mockLLMClient{turns: []*llm.ModelTurn{
		{StopReason: "max_tokens", Content: []llm.ContentBlock{{Type: llm.BlockText, Text: "truncated"}}},
	}}
	d := NewDispatcher(client, &mockToolExecutor{}, nil, 20)

	_, err := d.Dispatch(context.Background(), validFacts())
	require.Error(t, err)
	var protoErr *ProtocolViolationError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, "max_tokens", protoErr.StopReason)
}

func TestDispatch_UnparseableFinalOutput(t *testing.T) {
	client := &mockLLMClient{turns: []*llm.ModelTurn{finalTurn("I could not decide.")}}
	audit := &mockAuditor{}
	d := NewDispatcher(client, &mockToolExecutor{}, audit, 20)

	decision, err := d.Dispatch(context.Background(), validFacts())
	require.Error(t, err)
	assert.Nil(t, decision)
	assert.True(t, IsOutputFormatError(err))
	assert.False(t, audit.recorded)
}

func TestDispatch_InputValidation(t *testing.T) {
	d := NewDispatcher(&mockLLMClient{}, &mockToolExecutor{}, nil, 20)

	tests := []struct {
		name  string
		facts TicketFacts
		field string
	}{
		{"empty subject", TicketFacts{Body: "b", Origin: models.OriginPhone}, "ticket_subject"},
		{"empty body", TicketFacts{Subject: "s", Origin: models.OriginPhone}, "ticket_body"},
		{"bad origin", TicketFacts{Subject: "s", Body: "b", Origin: "carrier pigeon"}, "origin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Dispatch(context.Background(), tt.facts)
			var inputErr *InputValidationError
			require.ErrorAs(t, err, &inputErr)
			assert.Equal(t, tt.field, inputErr.Field)
		})
	}
}

func TestDispatch_ModelFailurePropagates(t *testing.T) {
	client := &mockLLMClient{err: errors.New("connection refused")}
	d := NewDispatcher(client, &mockToolExecutor{}, nil, 20)

	_, err := d.Dispatch(context.Background(), validFacts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model invocation failed")
}

func TestDispatch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &mockLLMClient{turns: []*llm.ModelTurn{finalTurn(validDecisionJSON)}}
	d := NewDispatcher(client, &mockToolExecutor{}, nil, 20)

	_, err := d.Dispatch(ctx, validFacts())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, client.callCount)
}

func TestDispatch_TicketMessageFormat(t *testing.T) {
	client := &mockLLMClient{turns: []*llm.ModelTurn{finalTurn(validDecisionJSON)}}
	d := NewDispatcher(client, &mockToolExecutor{}, nil, 20)

	_, err := d.Dispatch(context.Background(), validFacts())
	require.NoError(t, err)

	opening := client.requests[0].Messages[0].Content[0].Text
	assert.Contains(t, opening, "**Ticket Subject**: Pothole on Main St")
	assert.Contains(t, opening, "**Ticket Body**: Large pothole")
	assert.Contains(t, opening, "**Origin**: web form")
	assert.Contains(t, opening, "**Reporter ID**: N/A")
	assert.NotEmpty(t, client.requests[0].System)
	assert.Len(t, client.requests[0].Tools, 3)
}

func TestDispatch_OmittedLocationRendersNA(t *testing.T) {
	client := &mockLLMClient{turns: []*llm.ModelTurn{finalTurn(validDecisionJSON)}}
	d := NewDispatcher(client, &mockToolExecutor{}, nil, 20)

	facts := validFacts()
	facts.Location = nil
	_, err := d.Dispatch(context.Background(), facts)
	require.NoError(t, err)

	opening := client.requests[0].Messages[0].Content[0].Text
	assert.Contains(t, opening, "**Location Coordinates**: N/A")
}

func TestNewDispatcher_DefaultIterationCap(t *testing.T) {
	d := NewDispatcher(&mockLLMClient{}, &mockToolExecutor{}, nil, 0)
	assert.Equal(t, 20, d.maxIterations)
}
