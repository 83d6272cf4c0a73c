package models

// Workflow result status values.
const (
	ResultStatusEnded = "ended"
)

// TurnResponseType identifies the kind of host-facing turn response.
type TurnResponseType string

const (
	TurnResponseTypeResponse   TurnResponseType = "response"
	TurnResponseTypeRefinement TurnResponseType = "refinement"
	TurnResponseTypeError      TurnResponseType = "error"
)

// ResultContext records conversation and timing details of a workflow result.
type ResultContext struct {
	HadPreviousInteraction bool      `json:"had_previous_interaction"`
	ConversationHistory    []Message `json:"conversation_history"`
	Timestamp              string    `json:"timestamp,omitempty"`
	ErrorTimestamp         string    `json:"error_timestamp,omitempty"`
	ErrorType              string    `json:"error_type,omitempty"`
}

// WorkflowResult is what the session orchestrator returns for one turn.
//
// Three shapes share this type: the termination payload (Status "ended"), the error
// payload (Error set) and the regular success payload.
type WorkflowResult struct {
	Status          string         `json:"status,omitempty"`
	Message         string         `json:"message,omitempty"`
	Error           string         `json:"error,omitempty"`
	UserInputType   Intent         `json:"user_input_type"`
	CampaignData    map[string]any `json:"campaign_data,omitempty"`
	Analysis        map[string]any `json:"analysis,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
	Summary         map[string]any `json:"summary,omitempty"`
	Context         *ResultContext `json:"context,omitempty"`
}

// IsEnded reports whether the result is the termination payload.
func (r WorkflowResult) IsEnded() bool {
	return r.Status == ResultStatusEnded
}

// IsError reports whether the result is the error payload.
func (r WorkflowResult) IsError() bool {
	return r.Error != ""
}

// TurnResponse is the host-facing answer to one processed message.
type TurnResponse struct {
	Type          TurnResponseType `json:"type"`
	Content       string           `json:"content"`
	SessionID     string           `json:"session_id"`
	UserInputType Intent           `json:"user_input_type,omitempty"`
	IsDone        bool             `json:"is_done"`
}
