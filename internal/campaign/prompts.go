package campaign

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BTreeMap/CampaignPilot/internal/models"
)

// previewRunes bounds previous system responses quoted back into prompts.
const previewRunes = 100

const analysisPromptFormat = `You are a marketing analytics expert. Analyze this campaign.

Campaign data:
%s

Calculated metrics:
%s

Detected issues:
%s

Market context:
%s

Write a concise analysis of overall performance, the most important strengths and
weaknesses, and how the market context affects the results.`

const recommendationPromptFormat = `You are a senior marketing strategist.

Conversation so far:
%s

Campaign: %s
Spend: %v
Revenue: %v

Analysis:
%s

Market trends:
%s

Latest request: %s
User feedback: %s

Give prioritized, actionable recommendations. Start every recommendation with
"Priority N:" and separate recommendations with a blank line.`

const summaryPromptFormat = `You are a marketing analyst writing for executives.

Conversation so far:
%s

Campaign data:
%s

Analysis:
%s

Latest request: %s

Write a short executive summary of the campaign's performance and the key takeaways.`

// FormatHistory renders prior messages as prompt lines. System responses are
// truncated to a short preview.
func FormatHistory(history []models.Message) string {
	if len(history) == 0 {
		return "No previous interaction."
	}
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		switch msg.Type {
		case models.MessageTypeUserInput:
			lines = append(lines, "User Prompt: "+msg.Content)
		case models.MessageTypeUserFeedback:
			lines = append(lines, "User Feedback: "+msg.Content)
		case models.MessageTypeSystemResponse, models.MessageTypeSystemRefinement:
			lines = append(lines, "Previous Response: "+preview(msg.Content)+"...")
		}
	}
	return strings.Join(lines, "\n")
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewRunes {
		return s
	}
	return string(r[:previewRunes])
}

func toJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}

// trendsOf extracts market_context.trends from a campaign record.
func trendsOf(data map[string]any) string {
	mc, _ := data["market_context"].(map[string]any)
	t, _ := mc["trends"].(string)
	return t
}
