// Package agent implements the dispatcher agent: a bounded, tool-augmented
// model conversation that turns an unstructured ticket into a validated
// triage decision.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/civitas-project/civitas/pkg/llm"
	"github.com/civitas-project/civitas/pkg/models"
)

// TicketFacts is the minimal projection of a ticket needed for triage.
// Built once per dispatch call and read-only afterwards.
type TicketFacts struct {
	Subject    string              `json:"ticket_subject"`
	Body       string              `json:"ticket_body"`
	Origin     models.TicketOrigin `json:"origin"`
	Location   *models.Location    `json:"location_coordinates"`
	ReporterID string              `json:"reporter_id,omitempty"`
}

// FactsFromTicket projects a stored ticket into dispatch input.
func FactsFromTicket(t *models.Ticket) TicketFacts {
	facts := TicketFacts{
		Subject:  t.Subject,
		Body:     t.Body,
		Origin:   t.Origin,
		Location: t.Location,
	}
	if t.ReporterID != nil {
		facts.ReporterID = t.ReporterID.String()
	}
	return facts
}

// Auditor records the transcript of a completed dispatch. Implementations
// must be best-effort: they log failures themselves and never return them.
type Auditor interface {
	Record(facts TicketFacts, conversation []llm.Message, decision *models.DispatchDecision)
}

// Dispatcher drives the triage conversation to convergence.
// Stateless between calls; safe for concurrent use as long as the llm
// client and tool executor are.
type Dispatcher struct {
	client        llm.Client
	tools         ToolExecutor
	audit         Auditor
	maxIterations int
}

// NewDispatcher creates a dispatcher. audit may be nil to disable
// transcript logging; maxIterations <= 0 falls back to 20.
func NewDispatcher(client llm.Client, tools ToolExecutor, audit Auditor, maxIterations int) *Dispatcher {
	if maxIterations <= 0 {
		maxIterations = 20
	}
	return &Dispatcher{
		client:        client,
		tools:         tools,
		audit:         audit,
		maxIterations: maxIterations,
	}
}

// Dispatch runs the conversation loop for one ticket and returns the
// validated decision.
//
// The loop is strictly sequential: the model sees every prior tool result
// before it is invoked again. Tool failures are absorbed into the
// conversation as error-shaped results; everything else (protocol
// violations, unparseable output, the iteration cap) aborts the call with
// no partial decision.
func (d *Dispatcher) Dispatch(ctx context.Context, facts TicketFacts) (*models.DispatchDecision, error) {
	if err := validateFacts(facts); err != nil {
		return nil, err
	}

	tools := ToolDefinitions()
	messages := []llm.Message{llm.TextMessage(llm.RoleUser, buildTicketMessage(facts))}

	for iteration := 0; iteration < d.maxIterations; iteration++ {
		// Cancellation is only honored between iterations; a dispatch in
		// flight either converges or fails within the budget.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("dispatch cancelled: %w", err)
		}

		turn, err := d.client.CreateTurn(ctx, &llm.Request{
			System:   systemPrompt,
			Tools:    tools,
			Messages: messages,
		})
		if err != nil {
			return nil, fmt.Errorf("model invocation failed: %w", err)
		}

		switch turn.StopReason {
		case llm.StopEndTurn:
			decision, err := ParseDecision(turn.Text())
			if err != nil {
				return nil, err
			}

			messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: turn.Content})
			if d.audit != nil {
				d.audit.Record(facts, messages, decision)
			}
			return decision, nil

		case llm.StopToolUse:
			messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: turn.Content})
			messages = append(messages, llm.Message{
				Role:    llm.RoleUser,
				Content: d.executeTools(ctx, turn.ToolUses()),
			})

		default:
			return nil, &ProtocolViolationError{StopReason: string(turn.StopReason)}
		}
	}

	return nil, fmt.Errorf("%w (%d)", ErrIterationBudget, d.maxIterations)
}

// executeTools resolves every tool_use block of a model turn and collects
// the results into tool_result content blocks, preserving correlation ids.
// Calls are independent; one failing does not block the others.
func (d *Dispatcher) executeTools(ctx context.Context, calls []llm.ContentBlock) []llm.ContentBlock {
	results := make([]llm.ContentBlock, 0, len(calls))
	for _, block := range calls {
		call := ToolCall{ID: block.ID, Name: block.Name}
		if len(block.Input) > 0 {
			if err := json.Unmarshal(block.Input, &call.Input); err != nil {
				slog.Warn("Failed to decode tool call arguments",
					"tool", block.Name, "call_id", block.ID, "error", err)
			}
		}

		result := d.tools.Execute(ctx, call)
		results = append(results, llm.ContentBlock{
			Type:      llm.BlockToolResult,
			ToolUseID: result.CallID,
			Content:   result.Content,
			IsError:   result.IsError,
		})
	}
	return results
}

func validateFacts(facts TicketFacts) error {
	if facts.Subject == "" {
		return &InputValidationError{Field: "ticket_subject", Message: "must not be empty"}
	}
	if facts.Body == "" {
		return &InputValidationError{Field: "ticket_body", Message: "must not be empty"}
	}
	if !facts.Origin.IsValid() {
		return &InputValidationError{Field: "origin",
			Message: fmt.Sprintf("unknown value %q", string(facts.Origin))}
	}
	return nil
}
