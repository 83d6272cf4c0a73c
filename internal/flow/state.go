package flow

import (
	"fmt"

	"github.com/BTreeMap/CampaignPilot/internal/models"
)

// TurnContext is the read-only snapshot supplied at turn start.
type TurnContext struct {
	SessionID           string
	ConversationHistory []models.Message
}

// HadPreviousInteraction reports whether the system already answered in this conversation.
func (c TurnContext) HadPreviousInteraction() bool {
	for _, m := range c.ConversationHistory {
		if m.Type == models.MessageTypeSystemResponse || m.Type == models.MessageTypeSystemRefinement {
			return true
		}
	}
	return false
}

// State is the value threaded through one workflow run. It is never mutated in place:
// every With* method returns a modified copy and leaves the receiver untouched.
type State struct {
	userInput             string
	feedback              string
	context               TurnContext
	classification        models.Classification
	campaignData          map[string]any
	analysis              map[string]any
	recommendations       []string
	recommendationContext map[string]any
	summary               map[string]any
}

// NewState creates the initial state of a turn.
func NewState(userInput, feedback string, tc TurnContext) State {
	history := make([]models.Message, len(tc.ConversationHistory))
	copy(history, tc.ConversationHistory)
	tc.ConversationHistory = history
	return State{userInput: userInput, feedback: feedback, context: tc}
}

func (s State) UserInput() string     { return s.userInput }
func (s State) Feedback() string      { return s.feedback }
func (s State) Context() TurnContext  { return s.context }
func (s State) Intent() models.Intent { return s.classification.Type }

// Classification returns the full classifier result, zero before classification.
func (s State) Classification() models.Classification { return s.classification }

// CampaignData returns the gathered record, nil before gathering.
func (s State) CampaignData() map[string]any { return s.campaignData }

// Analysis returns the analysis results, nil before analysis.
func (s State) Analysis() map[string]any { return s.analysis }

// Recommendations returns a copy of the recommendations, nil unless generated.
func (s State) Recommendations() []string {
	if s.recommendations == nil {
		return nil
	}
	out := make([]string, len(s.recommendations))
	copy(out, s.recommendations)
	return out
}

func (s State) RecommendationContext() map[string]any { return s.recommendationContext }

// Summary returns the summary object, nil unless generated.
func (s State) Summary() map[string]any { return s.summary }

// WithClassification sets the intent. The intent may only be set once per turn.
func (s State) WithClassification(c models.Classification) (State, error) {
	if s.classification.Type != models.IntentUnset {
		return s, fmt.Errorf("intent already classified as %s", s.classification.Type)
	}
	if !models.IsValidIntent(c.Type) {
		return s, fmt.Errorf("invalid intent %q", c.Type)
	}
	s.classification = c
	return s, nil
}

func (s State) WithCampaignData(data map[string]any) State {
	s.campaignData = data
	return s
}

func (s State) WithAnalysis(analysis map[string]any) State {
	s.analysis = analysis
	return s
}

// WithRecommendations sets the recommendations and clears any summary so only one
// of the two is populated.
func (s State) WithRecommendations(recs []string, recContext map[string]any) State {
	s.recommendations = append([]string{}, recs...)
	s.recommendationContext = recContext
	s.summary = nil
	return s
}

// WithSummary sets the summary and clears any recommendations.
func (s State) WithSummary(summary map[string]any) State {
	s.summary = summary
	s.recommendations = nil
	s.recommendationContext = nil
	return s
}
