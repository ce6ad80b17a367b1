package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/civitas-project/civitas/pkg/models"
)

// ToolCall is a single tool invocation requested by the model.
// ID correlates the call with its result within one conversation turn.
type ToolCall struct {
	ID    string
	Name  string
	Input map[string]any
}

// ToolResult is the outcome of exactly one ToolCall. Content is always
// JSON text, either the normalized payload or an error object; it is fed
// back into the conversation either way so the model can react.
type ToolResult struct {
	CallID  string
	Content string
	IsError bool
}

// ToolExecutor resolves tool calls against the external data collaborators.
// Implementations never propagate failures past their boundary: every
// failure becomes an error-shaped ToolResult.
type ToolExecutor interface {
	Execute(ctx context.Context, call ToolCall) ToolResult
}

// Directory is the data-query surface the executor depends on. Implemented
// by the services layer; each method runs in its own transaction scope so
// a failed query cannot poison later calls.
type Directory interface {
	SearchLabels(ctx context.Context, search string) ([]models.Label, error)
	SearchStaff(ctx context.Context, search string) ([]models.StaffMember, error)
	NearestCrews(ctx context.Context, lat, lng float64, crewType models.CrewType) ([]models.CrewWithDistance, error)
}

// DirectoryToolExecutor dispatches tool calls to a Directory.
// The tool set is statically enumerated; dispatch is a closed switch with
// an explicit error arm for unrecognized names.
type DirectoryToolExecutor struct {
	dir Directory
}

// NewDirectoryToolExecutor creates an executor backed by the given Directory.
func NewDirectoryToolExecutor(dir Directory) *DirectoryToolExecutor {
	return &DirectoryToolExecutor{dir: dir}
}

// Execute implements ToolExecutor.
func (e *DirectoryToolExecutor) Execute(ctx context.Context, call ToolCall) ToolResult {
	var payload any
	var err error

	switch call.Name {
	case ToolGetLabels:
		payload, err = e.getLabels(ctx, call)
	case ToolGetUsers:
		payload, err = e.getUsers(ctx, call)
	case ToolGetNearestCrews:
		payload, err = e.getNearestCrews(ctx, call)
	default:
		return errorResult(call.ID, fmt.Sprintf("Unknown tool: %s", call.Name))
	}

	if err != nil {
		return errorResult(call.ID, err.Error())
	}
	return jsonResult(call.ID, payload)
}

func (e *DirectoryToolExecutor) getLabels(ctx context.Context, call ToolCall) (any, error) {
	search, _ := call.Input["search"].(string)
	labels, err := e.dir.SearchLabels(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("label search failed: %w", err)
	}

	out := make([]map[string]any, 0, len(labels))
	for _, label := range labels {
		out = append(out, map[string]any{
			"label_id":          label.ID.String(),
			"label_name":        label.Name,
			"label_description": label.Description,
			"color_hex":         label.ColorHex,
		})
	}
	return out, nil
}

func (e *DirectoryToolExecutor) getUsers(ctx context.Context, call ToolCall) (any, error) {
	search, _ := call.Input["search"].(string)
	staff, err := e.dir.SearchStaff(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("staff search failed: %w", err)
	}

	// Only active staff are offered for assignment.
	out := make([]map[string]any, 0, len(staff))
	for _, member := range staff {
		if member.Status != models.StaffActive {
			continue
		}
		out = append(out, map[string]any{
			"user_id":      member.ID.String(),
			"firstname":    member.FirstName,
			"lastname":     member.LastName,
			"email":        member.Email,
			"phone_number": member.Phone,
			"status":       string(member.Status),
		})
	}
	return out, nil
}

func (e *DirectoryToolExecutor) getNearestCrews(ctx context.Context, call ToolCall) (any, error) {
	crewTypeStr, _ := call.Input["crew_type"].(string)
	crewType := models.CrewType(crewTypeStr)
	if !crewType.IsValid() {
		return nil, fmt.Errorf("Invalid crew_type: %s", crewTypeStr)
	}

	lat, latOK := call.Input["lat"].(float64)
	lng, lngOK := call.Input["lng"].(float64)
	if !latOK || !lngOK {
		return nil, fmt.Errorf("lat and lng must be numbers")
	}

	crews, err := e.dir.NearestCrews(ctx, lat, lng, crewType)
	if err != nil {
		return nil, fmt.Errorf("crew search failed: %w", err)
	}

	// Store ordering (ascending distance) is preserved as-is.
	out := make([]map[string]any, 0, len(crews))
	for _, crew := range crews {
		entry := map[string]any{
			"team_id":              crew.ID.String(),
			"team_name":            crew.Name,
			"crew_type":            string(crew.CrewType),
			"status":               string(crew.Status),
			"location_coordinates": crew.Location,
			"distance":             crew.Distance,
		}
		out = append(out, entry)
	}
	return out, nil
}

func jsonResult(callID string, payload any) ToolResult {
	content, err := json.Marshal(payload)
	if err != nil {
		return errorResult(callID, fmt.Sprintf("failed to serialize tool result: %v", err))
	}
	return ToolResult{CallID: callID, Content: string(content)}
}

func errorResult(callID, message string) ToolResult {
	content, _ := json.Marshal(map[string]string{"error": message})
	return ToolResult{CallID: callID, Content: string(content), IsError: true}
}
