package flow

import (
	"time"

	"github.com/BTreeMap/CampaignPilot/internal/models"
)

// Fixed texts of the termination and error payloads.
const (
	EndedMessage            = "Conversation ended. Goodbye!"
	ErrorRecommendationText = "An error occurred while processing your request."
)

// FormatSuccess renders a terminal state. DONE yields the smaller termination payload.
func FormatSuccess(s State, at time.Time) models.WorkflowResult {
	if s.Intent() == models.IntentDone {
		return models.WorkflowResult{
			Status:        models.ResultStatusEnded,
			Message:       EndedMessage,
			UserInputType: models.IntentDone,
		}
	}

	intent := s.Intent()
	if intent == models.IntentUnset {
		intent = models.IntentRecommendation
	}
	recs := s.Recommendations()
	if recs == nil {
		recs = []string{}
	}
	tc := s.Context()
	return models.WorkflowResult{
		UserInputType:   intent,
		CampaignData:    orEmpty(s.CampaignData()),
		Analysis:        orEmpty(s.Analysis()),
		Recommendations: recs,
		Summary:         orEmpty(s.Summary()),
		Context: &models.ResultContext{
			HadPreviousInteraction: tc.HadPreviousInteraction(),
			ConversationHistory:    tc.ConversationHistory,
			Timestamp:              at.Format(time.RFC3339Nano),
		},
	}
}

// FormatError renders a fatal fault. The intent defaults to RECOMMENDATION so hosts
// can render a consistent reply.
func FormatError(err error, at time.Time) models.WorkflowResult {
	return models.WorkflowResult{
		Error:           err.Error(),
		UserInputType:   models.IntentRecommendation,
		Recommendations: []string{ErrorRecommendationText},
		Context: &models.ResultContext{
			ErrorTimestamp: at.Format(time.RFC3339Nano),
			ErrorType:      errorTypeName(err),
		},
	}
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
