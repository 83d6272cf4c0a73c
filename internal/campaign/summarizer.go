package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BTreeMap/CampaignPilot/internal/genai"
	"github.com/BTreeMap/CampaignPilot/internal/models"
)

// Summarizer writes executive summaries of a campaign.
type Summarizer struct {
	gen genai.Generator
}

// NewSummarizer creates a Summarizer backed by gen.
func NewSummarizer(gen genai.Generator) *Summarizer {
	return &Summarizer{gen: gen}
}

// Summarize returns the summary text for the campaign.
func (s *Summarizer) Summarize(ctx context.Context, data, analysis map[string]any, userInput string, history []models.Message) (string, error) {
	narrative, _ := analysis["analysis"].(string)
	prompt := fmt.Sprintf(summaryPromptFormat, FormatHistory(history), toJSON(data), orNone(narrative), orNone(userInput))
	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		slog.Error("Summarizer.Summarize: generation failed", "error", err)
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}
	return strings.TrimSpace(text), nil
}
