package agent

import (
	"github.com/civitas-project/civitas/pkg/llm"
	"github.com/civitas-project/civitas/pkg/models"
)

// Names of the tools offered to the model. The set is closed; the
// executor rejects anything else with an error-shaped result.
const (
	ToolGetLabels       = "get_labels"
	ToolGetUsers        = "get_users"
	ToolGetNearestCrews = "get_nearest_crews"
)

// ToolDefinitions returns the fixed, ordered set of capabilities offered
// to the model for a dispatch session. Static configuration: no side
// effects and no error conditions.
func ToolDefinitions() []llm.ToolDefinition {
	crewTypes := models.CrewTypes()
	crewTypeEnum := make([]string, len(crewTypes))
	for i, t := range crewTypes {
		crewTypeEnum[i] = string(t)
	}

	return []llm.ToolDefinition{
		{
			Name: ToolGetLabels,
			Description: "Find categorization labels for tickets. Search matches against label_name " +
				"and label_description (case-insensitive, partial match). Query multiple times " +
				"with different search terms to find all relevant labels.",
			InputSchema: llm.InputSchema{
				Type: "object",
				Properties: map[string]llm.Property{
					"search": {
						Type: "string",
						Description: "String to search label names and descriptions. " +
							"Common NYC 311 categories: 'pothole', 'tree', 'sanitation', " +
							"'street sign', 'drainage', 'snow removal', 'hazard', " +
							"'infrastructure', 'safety', 'urgent'",
					},
				},
				Required: []string{"search"},
			},
		},
		{
			Name: ToolGetUsers,
			Description: "Find individual staff members for assignment. Search matches against user names, " +
				"emails, and phone numbers (case-insensitive, partial match). " +
				"Only returns users with status 'active'.",
			InputSchema: llm.InputSchema{
				Type: "object",
				Properties: map[string]llm.Property{
					"search": {
						Type: "string",
						Description: "String to search user names, emails, and phone numbers. " +
							"Examples: 'supervisor', 'Hugh Peterson', 'PetersonHughP@gmail.com'",
					},
				},
				Required: []string{"search"},
			},
		},
		{
			Name: ToolGetNearestCrews,
			Description: "Find work crews near the incident location. Returns up to 5 nearest crews " +
				"sorted by distance. Only assign crews with status 'active'. Prefer the closest " +
				"available crew (first result).",
			InputSchema: llm.InputSchema{
				Type: "object",
				Properties: map[string]llm.Property{
					"lat": {
						Type:        "number",
						Description: "Latitude of the incident (use from ticket location_coordinates)",
					},
					"lng": {
						Type:        "number",
						Description: "Longitude of the incident (use from ticket location_coordinates)",
					},
					"crew_type": {
						Type: "string",
						Enum: crewTypeEnum,
						Description: "Type of crew needed. Choose based on issue type: " +
							"pothole crew (road damage), drain crew (flooding/drainage), " +
							"tree crew (trees/branches), sign crew (street signs), " +
							"snow crew (snow/ice), sanitation crew (trash/litter)",
					},
				},
				Required: []string{"lat", "lng", "crew_type"},
			},
		},
	}
}
