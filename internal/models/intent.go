package models

import (
	"fmt"
	"strings"
)

// Intent is the classified purpose of a user message.
type Intent string

const (
	// IntentUnset marks a state that has not been classified yet.
	IntentUnset Intent = ""
	// IntentSummary asks for a summary or analysis of the campaign.
	IntentSummary Intent = "SUMMARY"
	// IntentRecommendation asks for concrete improvements.
	IntentRecommendation Intent = "RECOMMENDATION"
	// IntentOther is anything else; routed like IntentRecommendation.
	IntentOther Intent = "OTHER"
	// IntentDone signals the user is finished.
	IntentDone Intent = "DONE"
)

// IsValidIntent checks if the given intent is one of the classified values.
func IsValidIntent(i Intent) bool {
	switch i {
	case IntentSummary, IntentRecommendation, IntentOther, IntentDone:
		return true
	default:
		return false
	}
}

// ParseIntent maps a token such as "summary" or " DONE " to an Intent.
func ParseIntent(s string) (Intent, error) {
	i := Intent(strings.ToUpper(strings.TrimSpace(s)))
	if !IsValidIntent(i) {
		return IntentUnset, fmt.Errorf("unknown intent %q", s)
	}
	return i, nil
}

// Classification is the result of classifying one user input.
type Classification struct {
	Type          Intent  `json:"type"`
	Confidence    float64 `json:"confidence"`
	Explanation   string  `json:"explanation"`
	OriginalInput string  `json:"original_input,omitempty"`
}
