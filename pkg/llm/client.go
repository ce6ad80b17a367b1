// Package llm provides the client for the model inference API used by the
// dispatcher agent. The wire format follows the Anthropic Messages API:
// conversations are lists of messages whose content is a sequence of typed
// blocks (text, tool_use, tool_result), and every response reports a stop
// reason that tells the caller whether the turn is final or requests tools.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// ErrMissingAPIKey indicates the model API credential is not configured.
// Surfaced before any conversation starts.
var ErrMissingAPIKey = errors.New("model API key is required: set ANTHROPIC_API_KEY")

// Roles for conversation messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// StopReason is the model's signal for how its turn ended.
type StopReason string

const (
	// StopEndTurn means the model produced a final answer.
	StopEndTurn StopReason = "end_turn"
	// StopToolUse means the model requests one or more tool calls.
	StopToolUse StopReason = "tool_use"
)

// Block types within message content.
const (
	BlockText       = "text"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
)

// ContentBlock is one typed element of a message's content. Which fields
// are set depends on Type; the zero values of the others are omitted on
// the wire.
type ContentBlock struct {
	Type string `json:"type"`

	// Text content (type "text").
	Text string `json:"text,omitempty"`

	// Tool call fields (type "tool_use"). ID correlates the call with its
	// eventual tool_result block.
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// Tool result fields (type "tool_result").
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
}

// Message is one turn of a conversation.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// TextMessage builds a single-text-block message.
func TextMessage(role, text string) Message {
	return Message{Role: role, Content: []ContentBlock{{Type: BlockText, Text: text}}}
}

// ToolDefinition describes a tool the model may call.
type ToolDefinition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"input_schema"`
}

// InputSchema is the JSON-Schema parameter specification of a tool.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Property describes one tool parameter.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// Request carries everything needed for one blocking model invocation.
type Request struct {
	System   string
	Tools    []ToolDefinition
	Messages []Message
}

// ModelTurn is a single model response: a stop reason plus content blocks.
type ModelTurn struct {
	StopReason StopReason
	Content    []ContentBlock
}

// Text concatenates all text blocks of the turn.
func (t *ModelTurn) Text() string {
	var sb strings.Builder
	for _, block := range t.Content {
		if block.Type == BlockText {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

// ToolUses returns the tool_use blocks of the turn in order.
func (t *ModelTurn) ToolUses() []ContentBlock {
	var calls []ContentBlock
	for _, block := range t.Content {
		if block.Type == BlockToolUse {
			calls = append(calls, block)
		}
	}
	return calls
}

// Client is the model inference capability consumed by the dispatcher.
// Implementations must be safe for concurrent use by independent
// conversations.
type Client interface {
	// CreateTurn sends the full conversation and returns the model's next
	// turn. A single blocking request/response exchange; no streaming.
	CreateTurn(ctx context.Context, req *Request) (*ModelTurn, error)
}
