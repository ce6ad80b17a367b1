package models

// DecisionComment is the citizen-facing reply produced by the dispatcher.
type DecisionComment struct {
	CommentBody string `json:"comment_body"`
}

// DispatchDecision is the validated output of a dispatcher agent run.
// All seven fields are required on the wire; a decision with any field
// missing is rejected as a whole. There are no partial decisions.
type DispatchDecision struct {
	Status        string          `json:"status"`
	Priority      string          `json:"priority"`
	UserAssignees []string        `json:"user_assignees"`
	CrewAssignees []string        `json:"crew_assignees"`
	Labels        []string        `json:"labels"`
	Comment       DecisionComment `json:"comment"`
	Justification string          `json:"justification"`
}
